package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Z3rio/frs-manager/internal/report"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type stepMsg report.Step

type progressDoneMsg struct{}

type progressStyles struct {
	title lipgloss.Style
}

type progressModel struct {
	title   string
	spinner spinner.Model
	steps   []report.Step
	done    bool
	styles  progressStyles
}

func newProgressModel(title string) progressModel {
	return progressModel{
		title:   title,
		spinner: NewPrimarySpinner(),
		styles:  progressStyles{title: labelStyle.Bold(false)},
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.steps = append(m.steps, report.Step(msg))
	case progressDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	for _, s := range m.steps {
		b.WriteString(RenderStep(s))
		b.WriteString("\n")
	}
	if !m.done {
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.styles.title.Render(m.title))
	}
	return b.String()
}

// RunProgress runs action while a spinner shows title and every finished step
// is listed above it. The engines have no cancellation point, so the view
// ignores the keyboard and the action always runs to completion.
func RunProgress(out io.Writer, title string, action func(report.Observer) error) error {
	InitCommonStyles(out)
	p := tea.NewProgram(newProgressModel(title), tea.WithOutput(out), tea.WithInput(nil))

	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	err := action(report.ObserverFunc(func(s report.Step) {
		p.Send(stepMsg(s))
	}))
	p.Send(progressDoneMsg{})

	if runErr := <-done; runErr != nil {
		fmt.Fprintln(out, RenderWarningSimple("progress display failed: "+runErr.Error()))
	}
	ResetLine(out)
	ShowCursor(out)
	return err
}

// PlainObserver prints each step on its own line as it finishes. It is used
// when output is not a terminal or --plain is set.
func PlainObserver(out io.Writer) report.Observer {
	InitCommonStyles(out)
	return report.ObserverFunc(func(s report.Step) {
		fmt.Fprintln(out, RenderStep(s))
	})
}

// RenderStep renders one finished step with its status marker.
func RenderStep(s report.Step) string {
	switch s.Status {
	case report.Done:
		line := successStyle.Render("✓ " + s.Name)
		if s.Detail != "" {
			line += subtleTextStyle.Render(" (" + s.Detail + ")")
		}
		return line
	case report.Skipped:
		line := subtleTextStyle.Render("- " + s.Name)
		if s.Detail != "" {
			line += subtleTextStyle.Render(" (" + s.Detail + ")")
		}
		return line
	default:
		msg := "✗ " + s.Name
		if s.Err != nil {
			msg += ": " + s.Err.Error()
		}
		return errorStyle.Render(msg)
	}
}
