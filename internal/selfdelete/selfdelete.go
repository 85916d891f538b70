// Package selfdelete removes the file backing the running executable.
//
// Windows keeps a running image locked, so the production implementation
// moves the file out of the way and defers the actual delete until the
// process has exited. Callers must finish every other piece of cleanup before
// invoking Remove: no further reliable I/O from the binary can be assumed
// afterwards.
package selfdelete

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Remover deletes the executable at exe, which may be the running process
// image. When root contains exe, the directories from exe's parent up to and
// including root are removed as well once they are empty.
type Remover interface {
	Remove(exe, root string) error
}

// Noop does nothing.
type Noop struct{}

func (Noop) Remove(string, string) error { return nil }

// Recorder records every call and returns Err.
type Recorder struct {
	mu    sync.Mutex
	Paths []string
	Roots []string
	Err   error

	// OnRemove, when set, runs before the call is recorded.
	OnRemove func(exe string)
}

func (r *Recorder) Remove(exe, root string) error {
	if r.OnRemove != nil {
		r.OnRemove(exe)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Paths = append(r.Paths, exe)
	r.Roots = append(r.Roots, root)
	return r.Err
}

// emptyDirs lists the directories from exe's parent up to and including
// root, innermost first. It is nil unless exe lies inside root.
func emptyDirs(exe, root string) []string {
	if root == "" {
		return nil
	}
	root = filepath.Clean(root)
	exe = filepath.Clean(exe)
	rel, err := filepath.Rel(root, exe)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}

	var dirs []string
	for d := filepath.Dir(exe); len(d) >= len(root); d = filepath.Dir(d) {
		dirs = append(dirs, d)
		if len(d) == len(root) {
			break
		}
	}
	return dirs
}

const pendingSuffix = ".pending-delete"

// pendingPath is where the running image is moved before deletion.
func pendingPath(exe string) string {
	return exe + pendingSuffix
}

// cleanupScript builds a PowerShell script that waits for pid to exit,
// deletes target and then removes each of dirs, in order, that is empty.
func cleanupScript(pid int, target string, dirs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wait-Process -Id %d -ErrorAction SilentlyContinue; ", pid)
	fmt.Fprintf(&b, "Remove-Item -LiteralPath %s -Force -ErrorAction SilentlyContinue; ", psQuote(target))
	for _, dir := range dirs {
		fmt.Fprintf(&b, "if ((Test-Path -LiteralPath %[1]s) -and -not (Get-ChildItem -LiteralPath %[1]s -Force)) { Remove-Item -LiteralPath %[1]s -Force -ErrorAction SilentlyContinue }; ", psQuote(dir))
	}
	return strings.TrimSuffix(strings.TrimSpace(b.String()), ";")
}

func psQuote(s string) string {
	// Single-quote and escape existing single quotes for PowerShell.
	s = strings.ReplaceAll(s, `'`, `''`)
	return "'" + s + "'"
}
