// Package app assembles the capture pipeline and owns its lifecycle:
// configuration, logging, signal handling, the interactive control loop, and
// the shutdown flush.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/offlinefirst/uiatrace/internal/buildinfo"
	"github.com/offlinefirst/uiatrace/pkg/buffer"
	"github.com/offlinefirst/uiatrace/pkg/config"
	"github.com/offlinefirst/uiatrace/pkg/filter"
	"github.com/offlinefirst/uiatrace/pkg/logging"
	"github.com/offlinefirst/uiatrace/pkg/persist"
	"github.com/offlinefirst/uiatrace/pkg/poll"
	"github.com/offlinefirst/uiatrace/pkg/procname"
	"github.com/offlinefirst/uiatrace/pkg/recorder"
	"github.com/offlinefirst/uiatrace/pkg/session"
	"github.com/offlinefirst/uiatrace/pkg/uia"
)

// Options assemble a capture run. Config and Logger are required; every
// other field defaults to the process environment or the platform bindings
// and exists so tests can drive the full pipeline in-process.
type Options struct {
	Config config.Config
	Logger *slog.Logger

	// Control is the interactive input. Any line toggles the process
	// filter; EOF ends the run. Defaults to os.Stdin.
	Control io.Reader
	// Preview receives one marker line per recorded accessibility event.
	// Defaults to os.Stdout.
	Preview io.Writer

	// Source overrides event source selection.
	Source uia.EventSource
	// Foreground overrides the foreground process probe.
	Foreground func() (int32, error)
	// Pointer overrides the pointer state probe.
	Pointer func() (poll.PointerSample, error)
	// Browser overrides the browser window probe.
	Browser func() (poll.BrowserWindow, error)

	Clock func() time.Time
}

// probes are the operating system read paths behind the process filter and
// the two pollers.
type probes struct {
	foreground func() (int32, error)
	pointer    func() (poll.PointerSample, error)
	browser    func() (poll.BrowserWindow, error)
}

// Main is the process entry point behind cmd/uiatrace. It resolves
// configuration from the environment, installs signal handling, and maps the
// outcome to an exit code: zero on both orderly shutdown paths, one when the
// event pipeline could not be established.
func Main() int {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiatrace: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiatrace: %v\n", err)
		return 1
	}

	logger.Info("uiatrace starting",
		"version", buildinfo.Version(),
		"commit", buildinfo.Commit(),
		"os", runtime.GOOS,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, Options{Config: cfg, Logger: logger}); err != nil {
		logger.Error("capture run failed", "error", err)
		return 1
	}
	return 0
}

// Run executes one capture session until ctx is cancelled or the control
// input reaches EOF. Both shutdown paths return nil even when the final
// flush failed; the flush failure is reported through the log and the
// session registry. A pipeline that could not be established is the only
// error outcome.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		return errors.New("logger must be provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	control := opts.Control
	if control == nil {
		control = os.Stdin
	}
	preview := opts.Preview
	if preview == nil {
		preview = os.Stdout
	}
	cfg := opts.Config

	dir := cfg.Output.Dir
	if dir == "" {
		dir = persist.DefaultDir()
	}
	layout := persist.BuildLayout(dir)
	if err := persist.EnsureFilesystem(layout); err != nil {
		return fmt.Errorf("prepare artifact directory: %w", err)
	}

	names, err := procname.New(procname.Options{CacheSize: cfg.Capture.ProcCacheSize, Logger: logger})
	if err != nil {
		return fmt.Errorf("initialise process name resolver: %w", err)
	}

	reads := systemProbes(names)
	if opts.Foreground != nil {
		reads.foreground = opts.Foreground
	}
	if opts.Pointer != nil {
		reads.pointer = opts.Pointer
	}
	if opts.Browser != nil {
		reads.browser = opts.Browser
	}

	gate, err := filter.New(filter.Options{Foreground: reads.foreground, Logger: logger})
	if err != nil {
		return fmt.Errorf("initialise process filter: %w", err)
	}

	source, sourceName := opts.Source, "injected"
	if source == nil {
		source, sourceName, err = selectSource(cfg, logger)
		if err != nil {
			return fmt.Errorf("select event source: %w", err)
		}
	}

	buffers := buffer.NewAggregator()
	writer, err := persist.NewWriter(persist.Options{
		Layout: layout,
		Merge:  cfg.Output.Append,
		Clock:  clock,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("initialise persistence writer: %w", err)
	}

	rec, err := recorder.New(recorder.Options{
		Source:  source,
		Buffers: buffers,
		Filter:  gate,
		Writer:  writer,
		Names:   names,
		Echo:    preview,
		Clock:   clock,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("initialise recorder: %w", err)
	}

	pointer, err := poll.NewPointerTask(poll.PointerOptions{
		Sample:   reads.pointer,
		Sink:     buffers,
		Interval: cfg.Capture.PointerInterval,
		Clock:    clock,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("initialise pointer poller: %w", err)
	}

	browser, err := poll.NewBrowserTask(poll.BrowserOptions{
		Window:   reads.browser,
		Sink:     buffers,
		Interval: cfg.Capture.BrowserInterval,
		Clock:    clock,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("initialise browser poller: %w", err)
	}

	store, runID := openRegistry(ctx, cfg, layout, clock, logger)
	if store != nil {
		defer store.Close()
	}

	mode := "overwrite"
	if cfg.Output.Append {
		mode = "merge"
	}
	startedAt := clock()
	logger.Info("capture session starting",
		"run_id", runID,
		"source", sourceName,
		"artifact_dir", layout.Dir,
		"mode", mode,
		"pointer_interval", cfg.Capture.PointerInterval.String(),
		"browser_interval", cfg.Capture.BrowserInterval.String(),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The exit hook of the flush; the happy path below flushes explicitly
	// and this second trigger is absorbed by the recorder's once guard.
	defer func() { _ = rec.Flush() }()

	var pollers sync.WaitGroup
	pollers.Add(2)
	go func() {
		defer pollers.Done()
		_ = pointer.Run(runCtx)
	}()
	go func() {
		defer pollers.Done()
		_ = browser.Run(runCtx)
	}()

	go controlLoop(runCtx, control, gate, cancel, logger)

	streamErr := rec.Run(runCtx)
	cancel()
	pollers.Wait()

	flushErr := rec.Flush()
	uiEvents, clicks, urls := rec.Counts()

	closeRegistry(store, runID, session.Totals{UIEvents: uiEvents, Clicks: clicks, URLs: urls}, flushErr, logger)

	logger.Info("capture session finished",
		"run_id", runID,
		"duration", clock().Sub(startedAt).Round(time.Millisecond).String(),
		"ui_events", uiEvents,
		"clicks", clicks,
		"urls", urls,
		"log_path", layout.UIALogPath,
		"mode", mode,
		"flushed", flushErr == nil,
	)

	if streamErr != nil {
		return fmt.Errorf("capture pipeline failed: %w", streamErr)
	}
	return nil
}

// selectSource picks the configured event source: the operating system
// binding by default, the in-process synthetic one when requested.
func selectSource(cfg config.Config, logger *slog.Logger) (uia.EventSource, string, error) {
	if cfg.Capture.Synthetic {
		return uia.NewSyntheticSource(), "synthetic", nil
	}
	source, err := uia.NewSystemSource(uia.SystemOptions{Logger: logger})
	if err != nil {
		return nil, "", err
	}
	return source, "system", nil
}

// openRegistry starts a session row. The registry is best-effort
// bookkeeping: any failure logs a warning and capture continues without it.
func openRegistry(ctx context.Context, cfg config.Config, layout persist.Layout, clock func() time.Time, logger *slog.Logger) (*session.Store, string) {
	if cfg.Session.Disabled() {
		logger.Info("session registry disabled")
		return nil, ""
	}

	path := cfg.Session.DBPath
	if path == "" {
		path = layout.SessionDB
	}
	store, err := session.Open(session.Options{Path: path, Clock: clock})
	if err != nil {
		logger.Warn("session registry unavailable", "path", path, "error", err)
		return nil, ""
	}

	runID, err := store.Start(ctx)
	if err != nil {
		logger.Warn("recording session start failed", "error", err)
		store.Close()
		return nil, ""
	}
	return store, runID
}

// closeRegistry finalises the session row with the run totals. The run
// context is already cancelled at this point, so the update runs under its
// own deadline.
func closeRegistry(store *session.Store, runID string, totals session.Totals, flushErr error, logger *slog.Logger) {
	if store == nil || runID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Finish(ctx, runID, totals, flushErr); err != nil {
		logger.Warn("closing session record failed", "run_id", runID, "error", err)
	}
}

// controlLoop turns interactive input into filter toggles; EOF or a read
// failure ends the run. A blocked read cannot be interrupted, so shutdown
// abandons the goroutine rather than waiting for it.
func controlLoop(ctx context.Context, control io.Reader, gate *filter.Filter, end func(), logger *slog.Logger) {
	scanner := bufio.NewScanner(control)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		gate.Toggle()
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("control input failed", "error", err)
	}
	logger.Info("control input closed, ending run")
	end()
}
