// Package filter gates accessibility events on the foreground process.
package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Options configure the process filter.
type Options struct {
	// Foreground resolves the process id owning the current foreground
	// window. Required.
	Foreground func() (int32, error)
	Logger     *slog.Logger
}

// Filter passes every event while Unfiltered and only events from one pinned
// process id while Foreground-Only. The pid is a single atomic value: the
// control goroutine stores it, callback goroutines load it, and a load that
// races a toggle misclassifies at most one event.
type Filter struct {
	foreground func() (int32, error)
	logger     *slog.Logger
	pid        atomic.Int32 // 0 = Unfiltered
}

// State is a point-in-time view of the filter for logs and tests.
type State struct {
	Enabled bool
	PID     int32
}

// New validates options and constructs a filter in the Unfiltered state.
func New(opts Options) (*Filter, error) {
	if opts.Foreground == nil {
		return nil, errors.New("foreground resolver must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{foreground: opts.Foreground, logger: logger}, nil
}

// Toggle flips between Unfiltered and Foreground-Only and returns the
// resulting state. Entering Foreground-Only resolves the foreground pid
// once; resolution failure keeps the filter Unfiltered.
func (f *Filter) Toggle() State {
	if f.pid.Load() != 0 {
		f.pid.Store(0)
		f.logger.Info("process filter disabled")
		return State{}
	}

	pid, err := f.foreground()
	if err == nil && pid <= 0 {
		err = fmt.Errorf("resolved pid %d out of range", pid)
	}
	if err != nil {
		f.logger.Warn("foreground process resolution failed, staying unfiltered", "error", err)
		return State{}
	}

	f.pid.Store(pid)
	f.logger.Info("process filter enabled", "pid", pid)
	return State{Enabled: true, PID: pid}
}

// Allows reports whether an event attributed to pid passes the filter.
// While Foreground-Only, unresolved pids (-1) never match and are rejected.
func (f *Filter) Allows(pid int32) bool {
	target := f.pid.Load()
	return target == 0 || pid == target
}

// State reports the current filter state.
func (f *Filter) State() State {
	pid := f.pid.Load()
	return State{Enabled: pid != 0, PID: pid}
}
