//go:build !windows

package app

import (
	"errors"

	"github.com/offlinefirst/uiatrace/pkg/poll"
	"github.com/offlinefirst/uiatrace/pkg/procname"
)

var errNoPlatformProbe = errors.New("platform probe requires windows")

// systemProbes stand in for the user32 bindings. Every probe fails, which
// the filter and the pollers already absorb, so synthetic runs work on any
// platform.
func systemProbes(_ *procname.Resolver) probes {
	return probes{
		foreground: func() (int32, error) { return 0, errNoPlatformProbe },
		pointer:    func() (poll.PointerSample, error) { return poll.PointerSample{}, errNoPlatformProbe },
		browser:    func() (poll.BrowserWindow, error) { return poll.BrowserWindow{}, errNoPlatformProbe },
	}
}
