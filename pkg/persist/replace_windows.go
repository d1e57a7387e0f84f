//go:build windows

package persist

import "golang.org/x/sys/windows"

// MOVEFILE_WRITE_THROUGH makes the swap durable before the call returns,
// which os.Rename does not guarantee.
func replaceFile(tmpPath, finalPath string) error {
	from, err := windows.UTF16PtrFromString(tmpPath)
	if err != nil {
		return err
	}
	to, err := windows.UTF16PtrFromString(finalPath)
	if err != nil {
		return err
	}
	return windows.MoveFileEx(from, to, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH)
}
