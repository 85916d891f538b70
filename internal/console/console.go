// Package console prepares the terminal and answers questions about it.
package console

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
