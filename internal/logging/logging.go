// Package logging builds the diagnostic logger shared by both engines.
//
// Diagnostics are logged at warn level, or debug level when debugging is
// enabled, to the console and optionally to a log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	Debug bool
	// File, when non-empty, is appended to in addition to the console.
	File string
}

// New returns a logger writing to console and, when configured, to a log
// file. The returned close function releases the file and is never nil.
func New(console io.Writer, opts Options) (*log.Logger, func() error, error) {
	level := log.WarnLevel
	if opts.Debug {
		level = log.DebugLevel
	}

	w := console
	closeFn := func() error { return nil }
	if opts.File != "" {
		f, err := openFile(opts.File)
		if err != nil {
			return nil, closeFn, err
		}
		w = io.MultiWriter(console, f)
		closeFn = f.Close
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "frs-manager",
	})
	return logger, closeFn, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
