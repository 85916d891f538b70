package installer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Z3rio/frs-manager/internal/install"
	"github.com/Z3rio/frs-manager/internal/pathenv"
	"github.com/Z3rio/frs-manager/internal/release"
	"github.com/Z3rio/frs-manager/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// releaseServer serves a release manifest plus its assets and counts asset
// downloads.
type releaseServer struct {
	*httptest.Server

	mu        sync.Mutex
	version   int64
	omit      string
	broken    map[string]bool
	downloads map[string]int
}

func newReleaseServer(t *testing.T, version int64) *releaseServer {
	t.Helper()
	rs := &releaseServer{
		version:   version,
		broken:    map[string]bool{},
		downloads: map[string]int{},
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.handle))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *releaseServer) handle(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r.URL.Path == "/releases/latest" {
		m := release.Manifest{ID: rs.version}
		for _, name := range []string{release.FRSAsset, release.InstallerAsset, release.UninstallerAsset} {
			if name == rs.omit {
				continue
			}
			m.Assets = append(m.Assets, release.Asset{Name: name, BrowserDownloadURL: rs.URL + "/download/" + name})
		}
		_ = json.NewEncoder(w).Encode(m)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/download/")
	if rs.broken[name] {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	rs.downloads[name]++
	_, _ = w.Write([]byte(assetBody(name, rs.version)))
}

func (rs *releaseServer) setVersion(v int64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.version = v
}

func (rs *releaseServer) setBroken(name string, broken bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.broken[name] = broken
}

func (rs *releaseServer) setOmit(name string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.omit = name
}

func (rs *releaseServer) totalDownloads() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	total := 0
	for _, n := range rs.downloads {
		total += n
	}
	return total
}

func (rs *releaseServer) resetDownloads() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.downloads = map[string]int{}
}

func assetBody(name string, version int64) string {
	return fmt.Sprintf("%s@%d", name, version)
}

type fixture struct {
	server *releaseServer
	dir    install.Dir
	path   *pathenv.MemoryStore
	engine *Engine
}

func newFixture(t *testing.T, version int64) *fixture {
	t.Helper()
	srv := newReleaseServer(t, version)
	dir, err := install.Locate(t.TempDir(), "")
	require.NoError(t, err)

	client := release.NewClient(release.Options{Endpoint: srv.URL + "/releases/latest"})
	store := pathenv.NewMemoryStore(`C:\Windows`)

	return &fixture{
		server: srv,
		dir:    dir,
		path:   store,
		engine: &Engine{
			Resolver: client,
			Fetcher:  client,
			Locate:   func() (install.Dir, error) { return dir, nil },
			Path:     pathenv.NewManager(store),
		},
	}
}

func (f *fixture) run(t *testing.T) *report.Report {
	t.Helper()
	rep, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	return rep
}

func (f *fixture) readArtifact(t *testing.T, role release.Role) string {
	t.Helper()
	p, err := f.dir.ArtifactPath(role)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func status(t *testing.T, rep *report.Report, name string) report.Status {
	t.Helper()
	s, ok := rep.Find(name)
	require.True(t, ok, "step %q not recorded", name)
	return s.Status
}

func TestFreshInstall(t *testing.T) {
	f := newFixture(t, 5)
	require.False(t, f.dir.Exists())

	rep := f.run(t)
	assert.Empty(t, rep.Failed())

	assert.DirExists(t, f.dir.Root)
	assert.DirExists(t, f.dir.BinDir())

	v, err := f.dir.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	for _, role := range release.Roles {
		assert.Equal(t, assetBody(role.AssetName(), 5), f.readArtifact(t, role))
		assert.Equal(t, report.Done, status(t, rep, DownloadStep(role)))
	}
	assert.Equal(t, 3, f.server.totalDownloads())
	assert.Equal(t, report.Done, status(t, rep, StepInitMarker))
	assert.True(t, pathenv.Contains(f.path.Value(), f.dir.BinDir()))

	info, err := os.Stat(filepath.Join(f.dir.BinDir(), release.FRSAsset))
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.NotZero(t, info.Mode().Perm()&0o100, "frs.exe should be executable")
	}
}

func TestSecondRunIsNoOp(t *testing.T) {
	f := newFixture(t, 5)
	f.run(t)
	f.server.resetDownloads()

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(f.dir.VersionFile(), old, old))
	pathWrites := f.path.Writes()

	rep := f.run(t)
	assert.Empty(t, rep.Failed())
	assert.Equal(t, 0, f.server.totalDownloads())

	for _, role := range release.Roles {
		assert.Equal(t, report.Skipped, status(t, rep, DownloadStep(role)))
	}
	assert.Equal(t, report.Skipped, status(t, rep, StepWriteMarker))
	_, initialized := rep.Find(StepInitMarker)
	assert.False(t, initialized)

	info, err := os.Stat(f.dir.VersionFile())
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "version marker must not be rewritten")
	assert.Equal(t, pathWrites, f.path.Writes())
	assert.Equal(t, report.Skipped, status(t, rep, StepPath))
}

func TestExistingInstallSameVersion(t *testing.T) {
	f := newFixture(t, 5)
	_, err := f.dir.EnsureLayout()
	require.NoError(t, err)
	require.NoError(t, f.dir.WriteVersion(5))
	for _, role := range release.Roles {
		p, err := f.dir.ArtifactPath(role)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(p, []byte("local"), 0o755))
	}

	rep := f.run(t)
	assert.Empty(t, rep.Failed())
	assert.Equal(t, 0, f.server.totalDownloads())
	assert.Equal(t, "local", f.readArtifact(t, release.RoleInstaller))
}

func TestNewVersionRedownloadsEverything(t *testing.T) {
	f := newFixture(t, 5)
	f.run(t)
	f.server.resetDownloads()
	f.server.setVersion(6)

	rep := f.run(t)
	assert.Empty(t, rep.Failed())
	assert.Equal(t, 3, f.server.totalDownloads())

	for _, role := range release.Roles {
		assert.Equal(t, assetBody(role.AssetName(), 6), f.readArtifact(t, role))
	}
	v, err := f.dir.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)
	assert.Equal(t, report.Done, status(t, rep, StepWriteMarker))
}

func TestMissingArtifactIsDownloadedAlone(t *testing.T) {
	f := newFixture(t, 5)
	f.run(t)
	f.server.resetDownloads()

	p, err := f.dir.ArtifactPath(release.RoleUninstaller)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p))

	rep := f.run(t)
	assert.Equal(t, 1, f.server.totalDownloads())
	assert.Equal(t, report.Done, status(t, rep, DownloadStep(release.RoleUninstaller)))
	assert.Equal(t, report.Skipped, status(t, rep, DownloadStep(release.RoleFRS)))
	assert.Equal(t, report.Skipped, status(t, rep, DownloadStep(release.RoleInstaller)))
}

func TestFailedDownloadKeepsMarker(t *testing.T) {
	f := newFixture(t, 5)
	f.run(t)
	f.server.resetDownloads()
	f.server.setVersion(6)
	f.server.setBroken(release.InstallerAsset, true)

	rep := f.run(t)

	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, DownloadStep(release.RoleInstaller), failed[0].Name)
	assert.ErrorIs(t, failed[0].Err, release.ErrDownload)

	// The other artifacts still synced and PATH was still handled.
	assert.Equal(t, assetBody(release.FRSAsset, 6), f.readArtifact(t, release.RoleFRS))
	assert.Equal(t, assetBody(release.UninstallerAsset, 6), f.readArtifact(t, release.RoleUninstaller))
	assert.Equal(t, assetBody(release.InstallerAsset, 5), f.readArtifact(t, release.RoleInstaller))
	assert.Equal(t, report.Skipped, status(t, rep, StepPath))

	v, err := f.dir.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
	assert.Equal(t, report.Skipped, status(t, rep, StepWriteMarker))

	// Leftover temp files must not accumulate.
	entries, err := os.ReadDir(f.dir.Root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".download"), "leftover %s", e.Name())
	}

	// Once the asset is back, the next run completes the update.
	f.server.setBroken(release.InstallerAsset, false)
	f.run(t)
	v, err = f.dir.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)
	assert.Equal(t, assetBody(release.InstallerAsset, 6), f.readArtifact(t, release.RoleInstaller))
}

func TestMissingAssetStopsBeforeTouchingDisk(t *testing.T) {
	f := newFixture(t, 5)
	f.server.setOmit(release.UninstallerAsset)

	rep, err := f.engine.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, release.ErrMissingAsset)
	assert.Contains(t, err.Error(), release.UninstallerAsset)
	assert.Equal(t, report.Failed, status(t, rep, StepResolve))

	assert.NoDirExists(t, f.dir.Root)
	assert.Equal(t, 0, f.path.Writes())
	assert.Equal(t, 0, f.server.totalDownloads())
}

func TestResolveAndLocateFailuresAreBothReported(t *testing.T) {
	f := newFixture(t, 5)
	f.server.setOmit(release.FRSAsset)
	f.engine.Locate = func() (install.Dir, error) { return install.Dir{}, install.ErrNoBaseDir }

	rep, err := f.engine.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, release.ErrMissingAsset)
	assert.ErrorIs(t, err, install.ErrNoBaseDir)
	assert.Len(t, rep.Failed(), 2)
}

func TestCorruptMarkerIsFatal(t *testing.T) {
	f := newFixture(t, 5)
	_, err := f.dir.EnsureLayout()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.dir.VersionFile(), []byte("garbage"), 0o644))

	rep, err := f.engine.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, install.ErrCorruptMarker)
	assert.Equal(t, report.Failed, status(t, rep, StepReadMarker))
	assert.Equal(t, 0, f.server.totalDownloads())
	assert.Equal(t, 0, f.path.Writes())
}

func TestPathFailureDoesNotAffectDownloads(t *testing.T) {
	f := newFixture(t, 5)
	f.path.WriteErr = errors.New("registry is read-only")

	rep := f.run(t)
	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, StepPath, failed[0].Name)
	assert.ErrorIs(t, failed[0].Err, pathenv.ErrWrite)
	assert.Equal(t, 3, f.server.totalDownloads())
}

func TestObserverSeesEveryStep(t *testing.T) {
	f := newFixture(t, 5)
	var names []string
	f.engine.Observer = report.ObserverFunc(func(s report.Step) { names = append(names, s.Name) })

	rep := f.run(t)
	require.Len(t, names, len(rep.Steps))
	assert.Equal(t, StepResolve, names[0])
	assert.Equal(t, StepPath, names[len(names)-1])
}

func TestStaleFilesAreCleanedUp(t *testing.T) {
	f := newFixture(t, 5)
	f.run(t)

	stale := filepath.Join(f.dir.BinDir(), release.FRSAsset+".old")
	require.NoError(t, os.WriteFile(stale, nil, 0o644))

	f.run(t)
	assert.NoFileExists(t, stale)
}

func TestChmodFailureFailsThatDownload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not set on windows")
	}
	orig := chmod
	t.Cleanup(func() { chmod = orig })
	chmod = func(name string, mode os.FileMode) error {
		if strings.Contains(filepath.Base(name), release.InstallerAsset) {
			return errors.New("read-only filesystem")
		}
		return orig(name, mode)
	}

	f := newFixture(t, 5)
	rep := f.run(t)

	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, DownloadStep(release.RoleInstaller), failed[0].Name)
	assert.Contains(t, failed[0].Err.Error(), "read-only filesystem")
	assert.False(t, f.dir.HasArtifact(release.RoleInstaller))
	assert.True(t, f.dir.HasArtifact(release.RoleFRS))

	entries, err := os.ReadDir(f.dir.Root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".download"), "leftover %s", e.Name())
	}
}
