// Package procinfo looks up details of the process backing a service.
package procinfo

import (
	"github.com/shirou/gopsutil/v3/process"
)

// Name returns the executable name of pid, or "" if pid is 0 or the process
// cannot be inspected (gone, or access denied for protected services).
func Name(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}
