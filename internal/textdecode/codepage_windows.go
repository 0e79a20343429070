//go:build windows

package textdecode

import "golang.org/x/sys/windows"

var procGetOEMCP = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetOEMCP")

// HostCodePage returns the OEM code page console utilities write in.
func HostCodePage() CodePage {
	if err := procGetOEMCP.Find(); err != nil {
		return DefaultCodePage
	}
	r, _, _ := procGetOEMCP.Call()
	cp := CodePage(uint32(r))
	if !cp.Supported() {
		return DefaultCodePage
	}
	return cp
}
