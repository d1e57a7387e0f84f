//go:build !windows

package procname

import (
	"fmt"
	"os"
	"strings"
)

// systemLookup reads the command name from procfs. On platforms without
// procfs it simply fails, which the resolver treats as an empty name.
func systemLookup(pid int32) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", fmt.Errorf("read process name for pid %d: %w", pid, err)
	}
	return strings.TrimSpace(string(data)), nil
}
