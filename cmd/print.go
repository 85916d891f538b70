package cmd

import (
	"fmt"
	"io"

	"github.com/Z3rio/frs-manager/tui"
)

func PrintError(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintln(w, tui.RenderError(err))
	}
}

func PrintWarning(w io.Writer, message string) {
	if message != "" {
		fmt.Fprintln(w, tui.RenderWarning(message))
	}
}
