//go:build windows

package console

import (
	"os"

	"golang.org/x/sys/windows"
)

const utf8CodePage = 65001

// Init switches the console to UTF-8 and turns on ANSI escape processing so
// styled output and the spinner render in cmd.exe.
func Init() {
	_ = windows.SetConsoleOutputCP(utf8CodePage)
	_ = windows.SetConsoleCP(utf8CodePage)

	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		enableVirtualTerminal(windows.Handle(f.Fd()))
	}
}

func enableVirtualTerminal(h windows.Handle) {
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return
	}
	_ = windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
