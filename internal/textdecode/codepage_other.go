//go:build !windows

package textdecode

// HostCodePage returns DefaultCodePage; there is no OEM code page off Windows.
func HostCodePage() CodePage {
	return DefaultCodePage
}
