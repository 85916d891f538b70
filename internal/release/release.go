package release

import (
	"errors"
	"fmt"
)

// Asset names published with every release.
const (
	FRSAsset         = "frs.exe"
	InstallerAsset   = "installer.exe"
	UninstallerAsset = "uninstaller.exe"
)

var (
	ErrRequest      = errors.New("release request failed")
	ErrStatus       = errors.New("unexpected release api status")
	ErrDecode       = errors.New("malformed release response")
	ErrMissingAsset = errors.New("required asset missing from release")
	ErrDownload     = errors.New("asset download failed")
)

// Manifest is the subset of the GitHub release payload we rely on.
// ID increases with every published release and is used as the version.
type Manifest struct {
	ID     int64   `json:"id"`
	URL    string  `json:"url"`
	Assets []Asset `json:"assets"`
}

type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Role identifies what an artifact is used for once installed.
type Role string

const (
	RoleFRS         Role = "frs"
	RoleInstaller   Role = "installer"
	RoleUninstaller Role = "uninstaller"
)

// Roles lists every artifact role in sync order.
var Roles = []Role{RoleFRS, RoleInstaller, RoleUninstaller}

// AssetName returns the release asset that backs r.
func (r Role) AssetName() string {
	switch r {
	case RoleFRS:
		return FRSAsset
	case RoleInstaller:
		return InstallerAsset
	case RoleUninstaller:
		return UninstallerAsset
	default:
		return ""
	}
}

// Artifacts holds the download location of each role for one release.
type Artifacts struct {
	Version     int64
	FRS         string
	Installer   string
	Uninstaller string
}

// URL returns the download location for r.
func (a Artifacts) URL(r Role) string {
	switch r {
	case RoleFRS:
		return a.FRS
	case RoleInstaller:
		return a.Installer
	case RoleUninstaller:
		return a.Uninstaller
	default:
		return ""
	}
}

// MissingAssetError reports a required asset absent from a release.
type MissingAssetError struct {
	Name string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("could not find %s in assets list", e.Name)
}

func (e *MissingAssetError) Is(target error) bool {
	return target == ErrMissingAsset
}

// Select extracts the three required assets from m by exact name.
func Select(m Manifest) (Artifacts, error) {
	out := Artifacts{Version: m.ID}
	for _, role := range Roles {
		name := role.AssetName()
		url, ok := find(m.Assets, name)
		if !ok {
			return Artifacts{}, &MissingAssetError{Name: name}
		}
		switch role {
		case RoleFRS:
			out.FRS = url
		case RoleInstaller:
			out.Installer = url
		case RoleUninstaller:
			out.Uninstaller = url
		}
	}
	return out, nil
}

func find(assets []Asset, name string) (string, bool) {
	for _, a := range assets {
		if a.Name == name {
			return a.BrowserDownloadURL, true
		}
	}
	return "", false
}
