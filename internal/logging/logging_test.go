package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWarnLevelByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(&buf, Options{})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(&buf, Options{Debug: true})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("comparing versions", "local", 5, "remote", 6)
	assert.Contains(t, buf.String(), "comparing versions")
	assert.Contains(t, buf.String(), "remote=6")
}

func TestNewWritesLogFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "state", "frs-manager.log")

	logger, closeFn, err := New(&buf, Options{File: path})
	require.NoError(t, err)
	logger.Error("download failed", "asset", "frs.exe")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "download failed")
	assert.Contains(t, buf.String(), "download failed")
}

func TestNewFileError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, closeFn, err := New(&bytes.Buffer{}, Options{File: filepath.Join(blocker, "x.log")})
	assert.Error(t, err)
	assert.NoError(t, closeFn())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}
