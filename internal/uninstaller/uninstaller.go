// Package uninstaller removes an FRS installation, including the running
// uninstaller executable.
package uninstaller

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Z3rio/frs-manager/internal/install"
	"github.com/Z3rio/frs-manager/internal/logging"
	"github.com/Z3rio/frs-manager/internal/release"
	"github.com/Z3rio/frs-manager/internal/report"
	"github.com/Z3rio/frs-manager/internal/selfdelete"
	"github.com/charmbracelet/log"
)

type State int

const (
	Confirming State = iota
	RemovingPathEntry
	DeletingArtifacts
	SelfDeleting
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Confirming:
		return "confirming"
	case RemovingPathEntry:
		return "removing path entry"
	case DeletingArtifacts:
		return "deleting artifacts"
	case SelfDeleting:
		return "self-deleting"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Step names recorded in the run report.
const (
	StepLocate     = "locate install directory"
	StepPath       = "remove PATH entry"
	StepInstaller  = "delete " + release.InstallerAsset
	StepMarker     = "delete version marker"
	StepBin        = "delete bin directory"
	StepUninstall  = "delete " + release.UninstallerAsset
	StepRoot       = "remove install directory"
	StepSelfDelete = "delete running executable"
)

type PathEditor interface {
	Remove(segment string) (bool, error)
}

type Engine struct {
	Locate  func() (install.Dir, error)
	Path    PathEditor
	Remover selfdelete.Remover

	// Confirm asks the user whether to proceed. A nil Confirm proceeds.
	Confirm func() (bool, error)

	// Executable returns the path of the running binary; defaults to
	// os.Executable.
	Executable func() (string, error)

	Logger   *log.Logger
	Observer report.Observer

	// OnState is called on every state transition, including the first.
	OnState func(State)
}

// Result is the outcome of an uninstall run.
type Result struct {
	Report *report.Report
	Final  State
	Trace  []State
}

func (r Result) Cancelled() bool { return r.Final == Cancelled }

// Run executes one uninstall. The returned error is non-nil only when the
// install directory cannot be determined or the confirmation fails; every
// other failure is in the report and the run still reaches Done.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	logger := e.logger()
	res := Result{Report: report.New(e.Observer)}
	rep := res.Report

	enter := func(s State) {
		res.Final = s
		res.Trace = append(res.Trace, s)
		logger.Debug("uninstall state", "state", s)
		if e.OnState != nil {
			e.OnState(s)
		}
	}

	dir, err := e.Locate()
	if err != nil {
		rep.Fail(StepLocate, err)
		return res, err
	}
	rep.Done(StepLocate, dir.Root)

	enter(Confirming)
	if e.Confirm != nil {
		ok, err := e.Confirm()
		if err != nil {
			return res, fmt.Errorf("confirm uninstall: %w", err)
		}
		if !ok {
			enter(Cancelled)
			return res, nil
		}
	}
	if err := ctx.Err(); err != nil {
		enter(Cancelled)
		return res, err
	}

	exe := e.executable()

	enter(RemovingPathEntry)
	removed, err := e.Path.Remove(dir.BinDir())
	switch {
	case err != nil:
		rep.Fail(StepPath, err)
	case removed:
		rep.Done(StepPath, "removed "+dir.BinDir())
	default:
		rep.Skip(StepPath, "not present")
	}

	enter(DeletingArtifacts)
	if !dir.Exists() {
		logger.Debug("install directory missing, nothing to delete", "path", dir.Root)
	} else {
		e.deleteArtifacts(rep, dir, exe)
		e.removeRoot(rep, dir, exe)
	}

	enter(SelfDeleting)
	switch {
	case exe == "":
		rep.Skip(StepSelfDelete, "running executable unknown")
	case !dir.Contains(exe):
		rep.Skip(StepSelfDelete, "not part of the installation")
	case !exists(exe):
		rep.Skip(StepSelfDelete, "already removed")
	default:
		if err := e.Remover.Remove(exe, dir.Root); err != nil {
			rep.Fail(StepSelfDelete, err)
		} else {
			rep.Done(StepSelfDelete, exe)
		}
	}

	enter(Done)
	return res, nil
}

func (e *Engine) deleteArtifacts(rep *report.Report, dir install.Dir, exe string) {
	installerPath, _ := dir.ArtifactPath(release.RoleInstaller)
	uninstallerPath, _ := dir.ArtifactPath(release.RoleUninstaller)

	deleteFile(rep, StepInstaller, installerPath, exe)
	deleteFile(rep, StepMarker, dir.VersionFile(), exe)

	if err := install.RemoveTreeExcept(dir.BinDir(), exe); err != nil {
		rep.Fail(StepBin, err)
	} else {
		rep.Done(StepBin, dir.BinDir())
	}

	deleteFile(rep, StepUninstall, uninstallerPath, exe)
}

// removeRoot deletes what is left of the install directory. A root holding
// the running executable is left to the remover, which deletes it once empty.
func (e *Engine) removeRoot(rep *report.Report, dir install.Dir, exe string) {
	if stale := dir.CleanStale(); len(stale) > 0 {
		e.logger().Debug("removed stale files", "paths", stale)
	}
	if exe != "" && dir.Contains(exe) {
		rep.Skip(StepRoot, "holds the running executable, removed with it")
		return
	}
	if err := os.RemoveAll(dir.Root); err != nil {
		rep.Fail(StepRoot, err)
		return
	}
	rep.Done(StepRoot, dir.Root)
}

// deleteFile removes path unless it is the running executable, which is left
// for the self-deleting state.
func deleteFile(rep *report.Report, step, path, exe string) {
	if exe != "" && install.SamePath(path, exe) {
		rep.Skip(step, "running executable, deleted last")
		return
	}
	err := os.Remove(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		rep.Skip(step, "not present")
	case err != nil:
		rep.Fail(step, err)
	default:
		rep.Done(step, path)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (e *Engine) executable() string {
	fn := e.Executable
	if fn == nil {
		fn = os.Executable
	}
	exe, err := fn()
	if err != nil {
		e.logger().Warn("could not determine running executable", "err", err)
		return ""
	}
	return exe
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}
