// Package installer synchronizes the local FRS installation with the latest
// published release.
//
// A run is best-effort: a failing step is recorded and the remaining
// independent steps still execute. Only an unresolvable release, an
// undeterminable install directory and an unreadable version marker stop a
// run early.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Z3rio/frs-manager/internal/install"
	"github.com/Z3rio/frs-manager/internal/logging"
	"github.com/Z3rio/frs-manager/internal/release"
	"github.com/Z3rio/frs-manager/internal/report"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Step names recorded in the run report.
const (
	StepResolve     = "resolve latest release"
	StepLocate      = "locate install directory"
	StepLayout      = "prepare install directory"
	StepInitMarker  = "initialize version marker"
	StepReadMarker  = "read version marker"
	StepWriteMarker = "update version marker"
	StepPath        = "update PATH"
)

// DownloadStep names the step that syncs the artifact for role.
func DownloadStep(role release.Role) string {
	return "download " + role.AssetName()
}

// chmod is replaced in tests.
var chmod = os.Chmod

type Resolver interface {
	Resolve(ctx context.Context) (release.Artifacts, error)
}

type Fetcher interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

type PathEditor interface {
	Add(segment string) (bool, error)
}

type Engine struct {
	Resolver Resolver
	Fetcher  Fetcher
	// Locate returns the install directory; it need not exist yet.
	Locate   func() (install.Dir, error)
	Path     PathEditor
	Logger   *log.Logger
	Observer report.Observer
}

// Run performs one synchronization. The returned error is non-nil only when
// the run stopped early; failures of individual steps are in the report.
func (e *Engine) Run(ctx context.Context) (*report.Report, error) {
	logger := e.logger()
	rep := report.New(e.Observer)

	artifacts, resolveErr := e.Resolver.Resolve(ctx)
	if resolveErr != nil {
		rep.Fail(StepResolve, resolveErr)
	} else {
		rep.Done(StepResolve, fmt.Sprintf("release %d", artifacts.Version))
	}

	dir, locateErr := e.Locate()
	if locateErr != nil {
		rep.Fail(StepLocate, locateErr)
	} else {
		rep.Done(StepLocate, dir.Root)
	}

	if err := errors.Join(resolveErr, locateErr); err != nil {
		return rep, err
	}

	if removed := dir.CleanStale(); len(removed) > 0 {
		logger.Debug("removed stale files", "paths", removed)
	}

	created, err := dir.EnsureLayout()
	switch {
	case err != nil:
		rep.Fail(StepLayout, err)
	case len(created) > 0:
		rep.Done(StepLayout, "created "+strings.Join(created, ", "))
	default:
		rep.Skip(StepLayout, "already exists")
	}

	remote := artifacts.Version
	if !dir.HasMarker() {
		if err := dir.WriteVersion(remote); err != nil {
			rep.Fail(StepInitMarker, err)
		} else {
			rep.Done(StepInitMarker, fmt.Sprintf("%d", remote))
		}
	}

	local, err := dir.ReadVersion()
	if err != nil {
		rep.Fail(StepReadMarker, err)
		return rep, err
	}
	logger.Debug("comparing versions", "local", local, "remote", remote)

	changed := local != remote
	failed := 0
	for _, role := range release.Roles {
		name := DownloadStep(role)
		if !changed && dir.HasArtifact(role) {
			rep.Skip(name, "no change needed")
			continue
		}
		n, err := e.fetch(ctx, dir, role, artifacts.URL(role))
		if err != nil {
			failed++
			rep.Fail(name, err)
			continue
		}
		rep.Done(name, humanize.Bytes(uint64(n)))
	}

	switch {
	case !changed:
		rep.Skip(StepWriteMarker, fmt.Sprintf("already at %d", local))
	case failed > 0:
		// Keeping the old marker makes the next run fetch everything again.
		rep.Skip(StepWriteMarker, fmt.Sprintf("kept %d because %d download(s) failed", local, failed))
	default:
		if err := dir.WriteVersion(remote); err != nil {
			rep.Fail(StepWriteMarker, err)
		} else {
			rep.Done(StepWriteMarker, fmt.Sprintf("%d -> %d", local, remote))
		}
	}

	added, err := e.Path.Add(dir.BinDir())
	switch {
	case err != nil:
		rep.Fail(StepPath, err)
	case added:
		rep.Done(StepPath, "added "+dir.BinDir())
	default:
		rep.Skip(StepPath, "already contains "+dir.BinDir())
	}

	return rep, nil
}

// fetch downloads url next to the artifact's final location and moves it into
// place, so an interrupted download never leaves a truncated executable.
func (e *Engine) fetch(ctx context.Context, dir install.Dir, role release.Role, url string) (int64, error) {
	dst, err := dir.ArtifactPath(role)
	if err != nil {
		return 0, err
	}
	if url == "" {
		return 0, fmt.Errorf("no download location for %s", role.AssetName())
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+role.AssetName()+"-*.download")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := e.Fetcher.Download(ctx, url, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("write %s: %w", role.AssetName(), closeErr)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}

	if runtime.GOOS != "windows" {
		if err := chmod(tmpPath, 0o755); err != nil {
			_ = os.Remove(tmpPath)
			return n, fmt.Errorf("make %s executable: %w", role.AssetName(), err)
		}
	}
	if err := install.ReplaceFile(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}
	e.logger().Debug("installed artifact", "role", role, "path", dst, "size", humanize.Bytes(uint64(n)))
	return n, nil
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}
