package selfdelete

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupScript(t *testing.T) {
	script := cleanupScript(4242, `C:\Program Files\FRS_Manager\bin\frs.exe.pending-delete`, []string{
		`C:\Program Files\FRS_Manager\bin`,
		`C:\Program Files\FRS_Manager`,
	})

	assert.Contains(t, script, "Wait-Process -Id 4242")
	assert.Contains(t, script, `Remove-Item -LiteralPath 'C:\Program Files\FRS_Manager\bin\frs.exe.pending-delete' -Force`)
	bin := strings.Index(script, `Get-ChildItem -LiteralPath 'C:\Program Files\FRS_Manager\bin' -Force`)
	root := strings.Index(script, `Get-ChildItem -LiteralPath 'C:\Program Files\FRS_Manager' -Force`)
	require.NotEqual(t, -1, bin)
	require.NotEqual(t, -1, root)
	assert.Less(t, bin, root, "inner directories are removed first")
	assert.False(t, strings.HasSuffix(script, ";"))
}

func TestCleanupScriptWithoutDirs(t *testing.T) {
	script := cleanupScript(1, `C:\a.exe`, nil)
	assert.NotContains(t, script, "Get-ChildItem")
	assert.Contains(t, script, `'C:\a.exe'`)
}

func TestEmptyDirs(t *testing.T) {
	root := filepath.Join("opt", "FRS_Manager")
	tests := []struct {
		name string
		exe  string
		root string
		want []string
	}{
		{"in root", filepath.Join(root, "uninstaller.exe"), root, []string{root}},
		{"in bin", filepath.Join(root, "bin", "frs.exe"), root, []string{filepath.Join(root, "bin"), root}},
		{"outside root", filepath.Join("home", "frs-manager.exe"), root, nil},
		{"root itself", root, root, nil},
		{"no root", filepath.Join(root, "uninstaller.exe"), "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, emptyDirs(tt.exe, tt.root))
		})
	}
}

func TestPSQuoteEscapesSingleQuotes(t *testing.T) {
	assert.Equal(t, `'C:\Users\O''Brien\frs.exe'`, psQuote(`C:\Users\O'Brien\frs.exe`))
	assert.Equal(t, `''`, psQuote(""))
}

func TestPendingPath(t *testing.T) {
	assert.Equal(t, `C:\x\uninstaller.exe.pending-delete`, pendingPath(`C:\x\uninstaller.exe`))
}

func TestRecorder(t *testing.T) {
	var order []string
	r := &Recorder{
		Err:      errors.New("locked"),
		OnRemove: func(exe string) { order = append(order, "remove "+exe) },
	}

	err := r.Remove("a.exe", "root")
	assert.EqualError(t, err, "locked")
	assert.Equal(t, []string{"a.exe"}, r.Paths)
	assert.Equal(t, []string{"root"}, r.Roots)
	assert.Equal(t, []string{"remove a.exe"}, order)

	assert.NoError(t, Noop{}.Remove("b.exe", ""))
}
