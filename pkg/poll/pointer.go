package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/offlinefirst/uiatrace/pkg/buffer"
	"github.com/offlinefirst/uiatrace/pkg/record"
)

// PointerSample is one reading of cursor position and held buttons.
type PointerSample struct {
	X         int
	Y         int
	LeftHeld  bool
	RightHeld bool
}

// PointerOptions configure the pointer-state poller.
type PointerOptions struct {
	// Sample reads current cursor position and button state. Required.
	Sample func() (PointerSample, error)
	// Sink receives one PointerClick per held button per tick. Required.
	Sink     *buffer.Aggregator
	Interval time.Duration
	Clock    func() time.Time
	Sleeper  func(context.Context, time.Duration) error
	Logger   *slog.Logger
}

// NewPointerTask builds the periodic task that samples pointer state.
// Sampling is level-triggered: a button held across several ticks produces
// several records. A failed sample skips the tick.
func NewPointerTask(opts PointerOptions) (*Task, error) {
	if opts.Sample == nil {
		return nil, errors.New("pointer sample func must not be nil")
	}
	if opts.Sink == nil {
		return nil, errors.New("sink must not be nil")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPointerInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	sample := opts.Sample
	sink := opts.Sink
	tick := func(context.Context) error {
		reading, err := sample()
		if err != nil {
			return fmt.Errorf("sample pointer: %w", err)
		}
		now := clock().UTC()
		if reading.LeftHeld {
			sink.AppendClick(record.PointerClick{Timestamp: now, X: reading.X, Y: reading.Y, Button: record.ButtonLeft})
		}
		if reading.RightHeld {
			sink.AppendClick(record.PointerClick{Timestamp: now, X: reading.X, Y: reading.Y, Button: record.ButtonRight})
		}
		return nil
	}

	return NewTask(Options{
		Name:     "pointer",
		Interval: interval,
		Tick:     tick,
		Clock:    clock,
		Sleeper:  opts.Sleeper,
		Logger:   opts.Logger,
	})
}
