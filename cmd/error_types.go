package cmd

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"os"

	"github.com/Z3rio/frs-manager/internal/config"
	"github.com/Z3rio/frs-manager/internal/install"
	"github.com/Z3rio/frs-manager/internal/pathenv"
	"github.com/Z3rio/frs-manager/internal/release"
)

var ErrUnsupported = errors.New("unsupported platform")

// Process exit codes, one per error class.
const (
	ExitOK          = 0
	ExitUnknown     = 1
	ExitConfig      = 2
	ExitNetwork     = 3
	ExitFilesystem  = 4
	ExitState       = 5
	ExitRegistry    = 6
	ExitUnsupported = 7
)

// classes are checked in order; a joined error takes the first match.
var classes = []struct {
	kind string
	code int
	is   func(error) bool
}{
	{"unsupported_platform", ExitUnsupported, isAny(ErrUnsupported)},
	{"config_error", ExitConfig, isAny(config.ErrInvalid, install.ErrNoBaseDir)},
	{"state_error", ExitState, isAny(install.ErrCorruptMarker, install.ErrMarkerMissing)},
	{"network_error", ExitNetwork, isNetwork},
	{"registry_error", ExitRegistry, isAny(pathenv.ErrRead, pathenv.ErrWrite, pathenv.ErrUnsupported)},
	{"filesystem_error", ExitFilesystem, isFilesystem},
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, c := range classes {
		if c.is(err) {
			return c.code
		}
	}
	return ExitUnknown
}

// errorKind names the class of err for logs.
func errorKind(err error) string {
	for _, c := range classes {
		if err != nil && c.is(err) {
			return c.kind
		}
	}
	return "unknown_error"
}

func isAny(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}

func isNetwork(err error) bool {
	if isAny(release.ErrRequest, release.ErrStatus, release.ErrDecode, release.ErrMissingAsset, release.ErrDownload)(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

func isFilesystem(err error) bool {
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr)
}
