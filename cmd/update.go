package cmd

import (
	"context"
	"fmt"

	"github.com/Z3rio/frs-manager/internal/installer"
	"github.com/Z3rio/frs-manager/internal/pathenv"
	"github.com/Z3rio/frs-manager/internal/release"
	"github.com/Z3rio/frs-manager/internal/report"
	"github.com/Z3rio/frs-manager/tui"
	"github.com/spf13/cobra"
)

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "update",
		Aliases: []string{"install"},
		Short:   "Install FRS or update it to the latest release",
		Long: "Downloads the latest FRS release into the install directory when it is newer than the\n" +
			"installed one or files are missing, and makes sure its bin directory is on PATH.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return runUpdate(cmd.Context(), s)
		},
	}
}

func runUpdate(parent context.Context, s *session) error {
	ctx, cancel := context.WithTimeout(contextOrBackground(parent), s.cfg.Release.Timeout)
	defer cancel()

	relOpts := s.cfg.ReleaseOptions()
	relOpts.Logger = s.logger
	client := release.NewClient(relOpts)

	engine := &installer.Engine{
		Resolver: client,
		Fetcher:  client,
		Locate:   s.cfg.InstallDir,
		Path:     pathenv.NewManager(s.caps.PathStore),
		Logger:   s.logger,
	}

	var rep *report.Report
	err := s.track(tui.UpdateTitle, func(o report.Observer) error {
		engine.Observer = o
		var runErr error
		rep, runErr = engine.Run(ctx)
		return runErr
	})
	if rep != nil {
		fmt.Fprintln(s.out, tui.RenderUpdateResult(rep))
	}
	if err != nil {
		return shownError{err}
	}
	if failed := rep.Err(); failed != nil {
		s.logger.Debug("update finished with failures", "kind", errorKind(failed))
		return shownError{failed}
	}
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
