package cmd

import (
	"context"
	"fmt"

	"github.com/Z3rio/frs-manager/internal/install"
	"github.com/Z3rio/frs-manager/internal/pathenv"
	"github.com/Z3rio/frs-manager/internal/report"
	"github.com/Z3rio/frs-manager/internal/uninstaller"
	"github.com/Z3rio/frs-manager/tui"
	"github.com/spf13/cobra"
)

func newUninstallCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	c := &cobra.Command{
		Use:     "uninstall",
		Aliases: []string{"remove"},
		Short:   "Remove FRS, its PATH entry and this uninstaller",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return runUninstall(cmd.Context(), s, yes)
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return c
}

func runUninstall(ctx context.Context, s *session, yes bool) error {
	// The directory must resolve before the prompt.
	dir, err := s.cfg.InstallDir()
	if err != nil {
		return err
	}

	answer := true
	if !yes {
		if answer, err = tui.Confirm(s.in, s.out, tui.UninstallQuestion); err != nil {
			return err
		}
	}

	engine := &uninstaller.Engine{
		Locate:     func() (install.Dir, error) { return dir, nil },
		Path:       pathenv.NewManager(s.caps.PathStore),
		Remover:    s.caps.Remover,
		Confirm:    func() (bool, error) { return answer, nil },
		Executable: executable,
		Logger:     s.logger,
	}

	var res uninstaller.Result
	track := s.track
	if !answer {
		track = func(_ string, action func(report.Observer) error) error { return action(nil) }
	}
	err = track(tui.UninstallTitle, func(o report.Observer) error {
		engine.Observer = o
		var runErr error
		res, runErr = engine.Run(contextOrBackground(ctx))
		return runErr
	})
	if res.Report != nil {
		fmt.Fprintln(s.out, tui.RenderUninstallResult(res.Report, res.Cancelled()))
	}
	if err != nil {
		return shownError{err}
	}
	s.logger.Debug("uninstall finished", "state", res.Final, "trace", res.Trace)
	if failed := res.Report.Err(); failed != nil {
		return shownError{failed}
	}
	return nil
}
