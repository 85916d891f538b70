// Package platform selects the OS-specific capabilities the install and
// uninstall flows depend on.
package platform

import (
	"github.com/Z3rio/frs-manager/internal/pathenv"
	"github.com/Z3rio/frs-manager/internal/selfdelete"
)

// Capabilities bundles the platform-specific pieces chosen at startup.
type Capabilities struct {
	// Supported is false where FRS cannot be installed; callers report the
	// operation as unsupported instead of running it.
	Supported bool
	Name      string
	PathStore pathenv.Store
	Remover   selfdelete.Remover
}
