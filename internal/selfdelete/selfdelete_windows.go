//go:build windows

package selfdelete

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/windows"
)

// Deferred renames the locked image and hands deletion to a detached helper
// that outlives this process. If the helper cannot be started the file is
// queued for deletion on the next reboot instead.
type Deferred struct {
	// Replaced in tests; nil means the real implementation.
	startHelper    func(target string, dirs []string) error
	scheduleReboot func(path string) error
}

func New() Remover {
	return Deferred{}
}

func (d Deferred) Remove(exe, root string) error {
	exe, err := filepath.Abs(exe)
	if err != nil {
		return err
	}

	// Windows allows renaming a running executable but not deleting it.
	staged := pendingPath(exe)
	_ = os.Remove(staged)
	if err := os.Rename(exe, staged); err != nil {
		return fmt.Errorf("move running executable aside: %w", err)
	}

	dirs := emptyDirs(exe, root)
	start, schedule := d.startHelper, d.scheduleReboot
	if start == nil {
		start = startCleanupHelper
	}
	if schedule == nil {
		schedule = scheduleDeleteOnReboot
	}

	helperErr := start(staged, dirs)
	if helperErr == nil {
		return nil
	}
	if err := schedule(staged); err != nil {
		err = fmt.Errorf("schedule delete of %s: %w", filepath.Base(exe), errors.Join(helperErr, err))
		if restoreErr := os.Rename(staged, exe); restoreErr != nil {
			return errors.Join(err, fmt.Errorf("restore %s: %w", filepath.Base(exe), restoreErr))
		}
		return err
	}
	// Directories are only deleted at boot when empty by then.
	for _, dir := range dirs {
		_ = schedule(dir)
	}
	return nil
}

func startCleanupHelper(target string, dirs []string) error {
	script := cleanupScript(os.Getpid(), target, dirs)
	cmd := exec.Command("powershell.exe",
		"-NoProfile",
		"-NonInteractive",
		"-WindowStyle", "Hidden",
		"-Command",
		script,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW | windows.CREATE_NEW_PROCESS_GROUP,
	}
	// The helper's working directory must not be the one it deletes.
	cmd.Dir = os.TempDir()
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// scheduleDeleteOnReboot needs administrative rights, which an install under
// Program Files already requires.
func scheduleDeleteOnReboot(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	return windows.MoveFileEx(p, nil, windows.MOVEFILE_DELAY_UNTIL_REBOOT)
}
