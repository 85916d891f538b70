//go:build !windows

package console

// Init is a no-op; terminals outside Windows already speak UTF-8 and ANSI.
func Init() {}
