//go:build windows

package app

import (
	"github.com/offlinefirst/uiatrace/internal/win32"
	"github.com/offlinefirst/uiatrace/pkg/poll"
	"github.com/offlinefirst/uiatrace/pkg/procname"
)

// systemProbes bind the process filter and the pollers to user32.
func systemProbes(names *procname.Resolver) probes {
	return probes{
		foreground: win32.ForegroundProcessID,
		pointer: func() (poll.PointerSample, error) {
			x, y, err := win32.CursorPos()
			if err != nil {
				return poll.PointerSample{}, err
			}
			left, right := win32.MouseButtons()
			return poll.PointerSample{X: x, Y: y, LeftHeld: left, RightHeld: right}, nil
		},
		browser: func() (poll.BrowserWindow, error) {
			title, pid, err := win32.ChromeWindow()
			if err != nil {
				return poll.BrowserWindow{}, err
			}
			return poll.BrowserWindow{Title: title, ProcessName: names.Name(pid)}, nil
		},
	}
}
