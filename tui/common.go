package tui

import (
	"io"

	"github.com/Z3rio/frs-manager/tui/theme"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	successStyle lipgloss.Style

	primaryStyle    lipgloss.Style
	titleStyle      lipgloss.Style
	labelStyle      lipgloss.Style
	subtleTextStyle lipgloss.Style
	noticeBoxStyle  lipgloss.Style
)

func InitCommonStyles(out io.Writer) {
	theme.Init(out)

	helpStyle = theme.Neutral().Italic(true)
	errorStyle = theme.Error()
	warningStyle = theme.Warning()
	successStyle = theme.Success()

	primaryStyle = theme.Primary()
	titleStyle = primaryStyle.Bold(true)
	labelStyle = theme.Label()
	subtleTextStyle = theme.Neutral()
	noticeBoxStyle = warningStyle.
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.WarningColor)).
		Padding(1, 2)
}

func RenderWarningSimple(message string) string {
	if message == "" {
		return ""
	}
	return warningStyle.Render("⚠ " + message)
}

func RenderWarning(message string) string {
	if message == "" {
		return ""
	}
	return warningStyle.Render("⚠ Warning: " + message)
}

func RenderSuccessSimple(message string) string {
	if message == "" {
		return ""
	}
	return successStyle.Render("✓ " + message)
}

func RenderError(err error) string {
	if err == nil {
		return ""
	}
	return errorStyle.Render("✗ Error: " + err.Error())
}

func NewPrimarySpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = primaryStyle
	return s
}

// ResetLine clears the current terminal line.
func ResetLine(out io.Writer) {
	if out == nil {
		return
	}
	_, _ = io.WriteString(out, "\r\x1b[2K")
}

func ShowCursor(out io.Writer) {
	if out == nil {
		return
	}
	_, _ = io.WriteString(out, "\x1b[?25h")
}
