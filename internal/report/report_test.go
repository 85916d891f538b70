package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportForwardsStepsToObserver(t *testing.T) {
	var seen []string
	r := New(ObserverFunc(func(s Step) { seen = append(seen, s.Name) }))

	r.Done("create directory", "")
	r.Skip("download frs.exe", "no change needed")
	r.Fail("update PATH", errors.New("access denied"))

	assert.Equal(t, []string{"create directory", "download frs.exe", "update PATH"}, seen)
	require.Len(t, r.Steps, 3)
	assert.Equal(t, Skipped, r.Steps[1].Status)
}

func TestReportErrJoinsFailures(t *testing.T) {
	r := New(nil)
	assert.NoError(t, r.Err())

	sentinel := errors.New("boom")
	r.Fail("download installer.exe", sentinel)
	r.Done("write version marker", "5")
	r.Fail("update PATH", errors.New("registry"))

	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "download installer.exe: boom")
	assert.Contains(t, err.Error(), "update PATH: registry")
	assert.Len(t, r.Failed(), 2)
}

func TestReportFind(t *testing.T) {
	r := New(nil)
	r.Done("a", "first")
	r.Done("a", "second")

	s, ok := r.Find("a")
	require.True(t, ok)
	assert.Equal(t, "first", s.Detail)

	_, ok = r.Find("missing")
	assert.False(t, ok)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
