package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/offlinefirst/uiatrace/pkg/buffer"
	"github.com/offlinefirst/uiatrace/pkg/record"
)

// DefaultTitleSuffix is the marker the watched browser appends to its window
// titles.
const DefaultTitleSuffix = " - Google Chrome"

// BrowserWindow is one reading of the watched browser's top-level window.
type BrowserWindow struct {
	Title       string
	ProcessName string
}

// BrowserOptions configure the browser-tab poller.
type BrowserOptions struct {
	// Window locates the browser window and reads its title. Required.
	Window func() (BrowserWindow, error)
	// Sink deduplicates and stores accepted navigations. Required.
	Sink     *buffer.Aggregator
	Interval time.Duration
	Clock    func() time.Time
	Sleeper  func(context.Context, time.Duration) error
	Logger   *slog.Logger
	// TitleSuffix overrides DefaultTitleSuffix.
	TitleSuffix string
}

// NewBrowserTask builds the periodic task that watches browser navigation.
// Each tick reads the browser window title, strips the browser marker, and
// appends a BrowserURL when the remainder is an http or https url that
// differs from the previously recorded one. A failed window read skips the
// tick.
func NewBrowserTask(opts BrowserOptions) (*Task, error) {
	if opts.Window == nil {
		return nil, errors.New("browser window func must not be nil")
	}
	if opts.Sink == nil {
		return nil, errors.New("sink must not be nil")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultBrowserInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	suffix := opts.TitleSuffix
	if suffix == "" {
		suffix = DefaultTitleSuffix
	}

	window := opts.Window
	sink := opts.Sink
	tick := func(context.Context) error {
		win, err := window()
		if err != nil {
			return fmt.Errorf("locate browser window: %w", err)
		}
		url, ok := urlFromTitle(win.Title, suffix)
		if !ok {
			return nil
		}
		sink.AppendURL(record.BrowserURL{
			Timestamp:   clock().UTC(),
			ProcessName: win.ProcessName,
			URL:         url,
		})
		return nil
	}

	return NewTask(Options{
		Name:     "browser",
		Interval: interval,
		Tick:     tick,
		Clock:    clock,
		Sleeper:  opts.Sleeper,
		Logger:   opts.Logger,
	})
}

// urlFromTitle strips the browser marker and accepts only titles whose
// remainder carries an http or https scheme.
func urlFromTitle(title, suffix string) (string, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(title, suffix))
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return "", false
	}
	return trimmed, true
}
