// Package install describes the on-disk FRS installation: its directory
// layout, the version_id marker and the installed artifacts.
package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Z3rio/frs-manager/internal/release"
)

const (
	DefaultDirName  = "FRS_Manager"
	BaseDirEnv      = "ProgramFiles"
	binDirName      = "bin"
	versionFileName = "version_id"
)

var (
	ErrNoBaseDir     = errors.New("could not determine install base directory")
	ErrMarkerMissing = errors.New("version marker not found")
	ErrCorruptMarker = errors.New("version marker is corrupt")
	ErrUnknownRole   = errors.New("unknown artifact role")
)

// DefaultBase returns the machine-wide program directory.
func DefaultBase() (string, error) {
	base := strings.TrimSpace(os.Getenv(BaseDirEnv))
	if base == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrNoBaseDir, BaseDirEnv)
	}
	return base, nil
}

// Dir is an FRS install directory. It may not exist yet.
type Dir struct {
	Root string
}

// Locate returns the install directory named name under base.
// An empty name means DefaultDirName.
func Locate(base, name string) (Dir, error) {
	if strings.TrimSpace(base) == "" {
		return Dir{}, ErrNoBaseDir
	}
	if name == "" {
		name = DefaultDirName
	}
	return Dir{Root: filepath.Join(base, name)}, nil
}

func (d Dir) BinDir() string      { return filepath.Join(d.Root, binDirName) }
func (d Dir) VersionFile() string { return filepath.Join(d.Root, versionFileName) }

// ArtifactPath returns where the artifact for role is installed.
func (d Dir) ArtifactPath(role release.Role) (string, error) {
	switch role {
	case release.RoleFRS:
		return filepath.Join(d.BinDir(), release.FRSAsset), nil
	case release.RoleInstaller:
		return filepath.Join(d.Root, release.InstallerAsset), nil
	case release.RoleUninstaller:
		return filepath.Join(d.Root, release.UninstallerAsset), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

// Exists reports whether the install directory exists. This is the only
// signal that FRS is installed.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.Root)
	return err == nil && info.IsDir()
}

func (d Dir) HasMarker() bool {
	return fileExists(d.VersionFile())
}

func (d Dir) HasArtifact(role release.Role) bool {
	p, err := d.ArtifactPath(role)
	if err != nil {
		return false
	}
	return fileExists(p)
}

// EnsureLayout creates the install directory and its bin subdirectory when
// they are absent. It returns the directories it created.
func (d Dir) EnsureLayout() ([]string, error) {
	var created []string
	for _, dir := range []string{d.Root, d.BinDir()} {
		if _, err := os.Stat(dir); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return created, err
		}
		if err := os.Mkdir(dir, 0o755); err != nil {
			return created, fmt.Errorf("create %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	return created, nil
}

// ReadVersion parses the version marker.
func (d Dir) ReadVersion() (int64, error) {
	data, err := os.ReadFile(d.VersionFile())
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w at %s", ErrMarkerMissing, d.VersionFile())
	}
	if err != nil {
		return 0, fmt.Errorf("read version marker: %w", err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrCorruptMarker, strings.TrimSpace(string(data)))
	}
	return v, nil
}

// WriteVersion creates or truncates the version marker and writes v.
func (d Dir) WriteVersion(v int64) error {
	if err := os.WriteFile(d.VersionFile(), []byte(strconv.FormatInt(v, 10)), 0o644); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
