//go:build !windows

package platform

import (
	"runtime"

	"github.com/Z3rio/frs-manager/internal/pathenv"
	"github.com/Z3rio/frs-manager/internal/selfdelete"
)

func Detect() Capabilities {
	return Capabilities{
		Supported: false,
		Name:      runtime.GOOS,
		PathStore: pathenv.Unsupported{},
		Remover:   selfdelete.New(),
	}
}
