package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Z3rio/frs-manager/internal/config"
	"github.com/Z3rio/frs-manager/internal/console"
	"github.com/Z3rio/frs-manager/internal/logging"
	"github.com/Z3rio/frs-manager/internal/platform"
	"github.com/Z3rio/frs-manager/internal/report"
	"github.com/Z3rio/frs-manager/tui"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// session holds what every subcommand needs once startup succeeded.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	caps   platform.Capabilities
	plain  bool

	in       io.Reader
	out      io.Writer
	closeLog func() error
}

// newSession detects the platform, loads configuration and builds the logger.
// On unsupported platforms it prints the notice and returns ErrUnsupported.
func newSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	out := cmd.OutOrStdout()
	caps := detectPlatform()
	if !caps.Supported {
		fmt.Fprintln(out, tui.RenderUnsupported(caps.Name))
		return nil, shownError{ErrUnsupported}
	}

	// Pause even when startup fails, so the error stays readable.
	opts.pause = !opts.noPause && isTerminal(cmd.InOrStdin())

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	opts.pause = opts.pause && cfg.Pause

	logger, closeLog, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Debug: opts.debug || cfg.Debug,
		File:  cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	logger.Debug("starting", "command", cmd.Name(), "version", Version, "platform", caps.Name)

	return &session{
		cfg:      cfg,
		logger:   logger,
		caps:     caps,
		plain:    opts.plain || !isTerminal(out),
		in:       cmd.InOrStdin(),
		out:      out,
		closeLog: closeLog,
	}, nil
}

func (s *session) Close() {
	if err := s.closeLog(); err != nil {
		PrintWarning(s.out, fmt.Sprintf("closing log file: %v", err))
	}
}

// track runs action with an observer that shows each finished step, either
// in the live progress view or as plain lines.
func (s *session) track(title string, action func(report.Observer) error) error {
	if s.plain {
		tui.PrintHeader(s.out, title)
		return action(tui.PlainObserver(s.out))
	}
	return tui.RunProgress(s.out, title, action)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && console.Interactive(f)
}
