//go:build windows

package platform

import (
	"github.com/Z3rio/frs-manager/internal/pathenv"
	"github.com/Z3rio/frs-manager/internal/selfdelete"
)

func Detect() Capabilities {
	return Capabilities{
		Supported: true,
		Name:      "windows",
		PathStore: pathenv.NewRegistryStore(),
		Remover:   selfdelete.New(),
	}
}
