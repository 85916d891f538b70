// Package theme holds the colors shared by every rendered line.
package theme

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	PrimaryColor = "#8dc8ff"
	NeutralColor = "#888888"
	LabelColor   = "#FFFFFF"
	SuccessColor = "#00D787"
	ErrorColor   = "#FF5555"
	WarningColor = "#FFB86C"
)

var (
	once         sync.Once
	primaryStyle lipgloss.Style
	neutralStyle lipgloss.Style
	labelStyle   lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
)

// Init binds the styles to out. Only the first call has an effect, so the
// color profile is detected once for the process.
func Init(out io.Writer) {
	once.Do(func() {
		renderer := lipgloss.NewRenderer(out)
		newStyle := func(color string) lipgloss.Style {
			return renderer.NewStyle().Foreground(lipgloss.Color(color))
		}
		primaryStyle = newStyle(PrimaryColor)
		neutralStyle = newStyle(NeutralColor)
		labelStyle = newStyle(LabelColor).Bold(true)
		successStyle = newStyle(SuccessColor).Bold(true)
		errorStyle = newStyle(ErrorColor).Bold(true)
		warningStyle = newStyle(WarningColor).Bold(true)
	})
}

func Primary() lipgloss.Style { return primaryStyle }
func Neutral() lipgloss.Style { return neutralStyle }
func Label() lipgloss.Style   { return labelStyle }
func Success() lipgloss.Style { return successStyle }
func Error() lipgloss.Style   { return errorStyle }
func Warning() lipgloss.Style { return warningStyle }
