//go:build windows

package privilege

import "golang.org/x/sys/windows"

// tokenElevated returns true if the process token is elevated, i.e. the
// process runs as an administrator past UAC.
func tokenElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
