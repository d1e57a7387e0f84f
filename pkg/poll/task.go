// Package poll runs the periodic samplers that stand in for input hooks the
// platform does not offer. Each sampler is a Task: an interval plus a tick
// function. Tests call the tick function directly and never wait on timers.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Default sampling cadences.
const (
	DefaultPointerInterval = 50 * time.Millisecond
	DefaultBrowserInterval = time.Second
)

// TickFunc performs one sample. A tick error is logged and the tick skipped;
// it never stops the task.
type TickFunc func(ctx context.Context) error

// Options configure a periodic task.
type Options struct {
	Name     string
	Interval time.Duration
	Tick     TickFunc
	Clock    func() time.Time
	Sleeper  func(context.Context, time.Duration) error
	Logger   *slog.Logger
}

// Task invokes a tick function on a fixed-rate schedule until its context
// ends.
type Task struct {
	name     string
	interval time.Duration
	tick     TickFunc
	clock    func() time.Time
	sleeper  func(context.Context, time.Duration) error
	logger   *slog.Logger
}

// NewTask validates options and returns a task.
func NewTask(opts Options) (*Task, error) {
	if opts.Name == "" {
		return nil, errors.New("task name must not be empty")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if opts.Tick == nil {
		return nil, errors.New("tick function must not be nil")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = defaultSleeper
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Task{
		name:     opts.Name,
		interval: opts.Interval,
		tick:     opts.Tick,
		clock:    clock,
		sleeper:  sleeper,
		logger:   logger,
	}, nil
}

// Name reports the task name used in logs.
func (t *Task) Name() string {
	return t.name
}

// Tick runs one sample immediately, bypassing the schedule.
func (t *Task) Tick(ctx context.Context) error {
	return t.tick(ctx)
}

// Run loops tick-then-wait until ctx ends and returns the context's error.
// Tick failures are logged at debug level and the schedule continues.
func (t *Task) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	next := t.clock()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.waitForNext(ctx, next); err != nil {
			return err
		}
		if err := t.tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Debug("tick skipped", "task", t.name, "error", err)
		}
		next = next.Add(t.interval)
	}
}

func (t *Task) waitForNext(ctx context.Context, scheduled time.Time) error {
	now := t.clock()
	if !now.Before(scheduled) {
		return nil
	}
	return t.sleeper(ctx, scheduled.Sub(now))
}

func defaultSleeper(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
