//go:build !windows

package selfdelete

import (
	"errors"
	"os"
)

// Unlink removes the executable directly. Unix allows unlinking a running
// image; the inode lives on until the process exits.
type Unlink struct{}

func New() Remover {
	return Unlink{}
}

func (Unlink) Remove(exe, root string) error {
	if err := os.Remove(exe); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	for _, dir := range emptyDirs(exe, root) {
		// Stops at the first directory that still has entries.
		if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			break
		}
	}
	return nil
}
