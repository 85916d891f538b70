package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Z3rio/frs-manager/internal/report"
)

const (
	UpdateTitle    = "Updating FRS..."
	UninstallTitle = "Uninstalling FRS..."
)

// RenderUpdateResult summarizes an update run.
func RenderUpdateResult(rep *report.Report) string {
	failed := rep.Failed()
	if len(failed) == 0 {
		return RenderSuccessSimple("FRS is installed and up to date")
	}
	return renderFailures("Update finished with", failed, "Run the installer again to retry the failed steps.")
}

// RenderUninstallResult summarizes an uninstall run.
func RenderUninstallResult(rep *report.Report, cancelled bool) string {
	if cancelled {
		return subtleTextStyle.Render("Uninstall cancelled, nothing was changed.")
	}
	failed := rep.Failed()
	if len(failed) == 0 {
		return RenderSuccessSimple("FRS-Manager was uninstalled")
	}
	return renderFailures("Uninstall finished with", failed, "Some files may need to be removed by hand.")
}

func renderFailures(prefix string, failed []report.Step, hint string) string {
	noun := "failure"
	if len(failed) != 1 {
		noun = "failures"
	}
	var b strings.Builder
	b.WriteString(RenderWarningSimple(fmt.Sprintf("%s %d %s:", prefix, len(failed), noun)))
	for _, s := range failed {
		b.WriteString("\n  ")
		b.WriteString(RenderStep(s))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(hint))
	return b.String()
}

// RenderUnsupported explains that nothing can be installed on goos.
func RenderUnsupported(goos string) string {
	return noticeBoxStyle.Render(fmt.Sprintf("This installer can only run on windows.\nDetected platform: %s", goos))
}

// PrintHeader writes the title line shown before plain step output.
func PrintHeader(out io.Writer, title string) {
	InitCommonStyles(out)
	fmt.Fprintln(out, titleStyle.Render(title))
}
