package install

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const staleSuffix = ".old"

// ReplaceFile moves src over dst. A running executable on Windows cannot be
// overwritten but can be renamed, so when the direct rename fails dst is moved
// aside to dst.old first. The old file is removed best-effort; whatever
// survives is cleaned up by CleanStale on a later run.
func ReplaceFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		return renameErr
	}

	old := dst + staleSuffix
	_ = os.Remove(old)
	if err := os.Rename(dst, old); err != nil {
		return fmt.Errorf("move %s aside: %w", filepath.Base(dst), err)
	}
	if err := os.Rename(src, dst); err != nil {
		_ = os.Rename(old, dst)
		return fmt.Errorf("replace %s: %w", filepath.Base(dst), err)
	}
	_ = os.Remove(old)
	return nil
}

// CleanStale removes *.old leftovers of earlier replacements and returns the
// paths it deleted.
func (d Dir) CleanStale() []string {
	var removed []string
	for _, dir := range []string{d.Root, d.BinDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), staleSuffix) {
				continue
			}
			p := filepath.Join(dir, e.Name())
			if err := os.Remove(p); err == nil {
				removed = append(removed, p)
			}
		}
	}
	return removed
}

// RemoveTreeExcept deletes root and everything below it except keep. When
// keep lies inside root, the directories leading to it are left in place.
func RemoveTreeExcept(root, keep string) error {
	if keep == "" || !within(root, keep) {
		return os.RemoveAll(root)
	}
	if SamePath(root, keep) {
		return nil
	}

	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var errs []error
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		if SamePath(p, keep) {
			continue
		}
		if e.IsDir() {
			if err := RemoveTreeExcept(p, keep); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := os.Remove(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SamePath reports whether a and b name the same path after cleaning. Windows
// paths compare case-insensitively, as filepath.Rel does there.
func SamePath(a, b string) bool {
	return samePath(a, b, runtime.GOOS == "windows")
}

func samePath(a, b string, fold bool) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Contains reports whether p lies strictly inside the install directory.
func (d Dir) Contains(p string) bool {
	return within(d.Root, p) && !SamePath(d.Root, p)
}
