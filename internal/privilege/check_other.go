//go:build !windows

package privilege

import "os"

// tokenElevated returns true if the process runs with UID 0 (root).
func tokenElevated() bool {
	return os.Geteuid() == 0
}
