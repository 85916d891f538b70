package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Z3rio/frs-manager/internal/console"
	"github.com/Z3rio/frs-manager/internal/platform"
	"github.com/Z3rio/frs-manager/tui"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// Seams replaced in tests.
var (
	detectPlatform = platform.Detect
	executable     = os.Executable
)

type rootOptions struct {
	configFile string
	noPause    bool
	plain      bool
	debug      bool

	// pause is decided once the platform and config are known.
	pause bool
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "frs-manager",
		Short:         "Install, update and remove FRS",
		Long:          "frs-manager keeps the FRS command-line tool in sync with its latest release.\nRun 'update' to install or update FRS and 'uninstall' to remove it.",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is "+filepath.Join("$XDG_CONFIG_HOME", "frs-manager", "config.yaml")+")")
	flags.BoolVar(&opts.noPause, "no-pause", false, "exit without waiting for a key press")
	flags.BoolVar(&opts.plain, "plain", false, "print one line per step instead of the live progress view")
	flags.BoolVar(&opts.debug, "debug", false, "log diagnostic detail to stderr")

	root.AddCommand(newUpdateCmd(opts), newUninstallCmd(opts))
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	console.Init()
	return run(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(argv0 string, args []string, in io.Reader, out, errOut io.Writer) int {
	tui.InitCommonStyles(out)

	opts := &rootOptions{}
	root := newRootCmd(opts)
	// A nil slice would make cobra fall back to os.Args.
	root.SetArgs(append([]string{}, dispatchArgs(argv0, args)...))
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	var shown shownError
	if err != nil && !errors.As(err, &shown) {
		PrintError(errOut, err)
	}
	if opts.pause {
		tui.WaitBeforeClose(in, out)
	}
	return exitCode(err)
}

// dispatchArgs lets one binary be shipped as installer.exe and
// uninstaller.exe: the executable name picks the subcommand unless one is
// given explicitly.
func dispatchArgs(argv0 string, args []string) []string {
	name := argv0
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")

	var sub string
	switch name {
	case "installer":
		sub = "update"
	case "uninstaller":
		sub = "uninstall"
	default:
		return args
	}
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args
	}
	return append([]string{sub}, args...)
}

// shownError wraps an error whose details were already printed.
type shownError struct {
	err error
}

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }
