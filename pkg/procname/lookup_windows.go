//go:build windows

package procname

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// systemLookup reads the full image path of a process. Limited query rights
// are enough for QueryFullProcessImageName and work across integrity levels.
func systemLookup(pid int32) (string, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", fmt.Errorf("open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(handle)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(handle, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("query image name for pid %d: %w", pid, err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}
