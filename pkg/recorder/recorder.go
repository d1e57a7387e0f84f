// Package recorder turns raw accessibility callbacks into persisted session
// records. It owns the enrichment pipeline: every event passes the process
// filter, is decorated with its ancestor path and process name, and lands in
// the session buffers until the final flush writes the JSON artifacts.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/offlinefirst/uiatrace/pkg/buffer"
	"github.com/offlinefirst/uiatrace/pkg/filter"
	"github.com/offlinefirst/uiatrace/pkg/persist"
	"github.com/offlinefirst/uiatrace/pkg/procname"
	"github.com/offlinefirst/uiatrace/pkg/record"
	"github.com/offlinefirst/uiatrace/pkg/uia"
)

// Options wire the recorder to its collaborators.
type Options struct {
	Source  uia.EventSource
	Buffers *buffer.Aggregator
	Filter  *filter.Filter
	Writer  *persist.Writer

	// Names resolves process ids to names. Optional; without it events carry
	// an empty process_name.
	Names *procname.Resolver
	// Echo receives one human-readable marker line per recorded event.
	// Optional; nil disables the live preview.
	Echo io.Writer

	Clock  func() time.Time
	Logger *slog.Logger
}

// Recorder consumes an event source and fills the session buffers.
type Recorder struct {
	source  uia.EventSource
	buffers *buffer.Aggregator
	filter  *filter.Filter
	writer  *persist.Writer
	names   *procname.Resolver
	clock   func() time.Time
	logger  *slog.Logger

	echoMu sync.Mutex
	echo   io.Writer

	// Flush runs once even though both the shutdown path and the exit hook
	// trigger it.
	flushOnce sync.Once
	flushErr  error
}

// New validates the wiring and returns a recorder.
func New(opts Options) (*Recorder, error) {
	if opts.Source == nil {
		return nil, errors.New("recorder requires an event source")
	}
	if opts.Buffers == nil {
		return nil, errors.New("recorder requires session buffers")
	}
	if opts.Filter == nil {
		return nil, errors.New("recorder requires a process filter")
	}
	if opts.Writer == nil {
		return nil, errors.New("recorder requires a persistence writer")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		source:  opts.Source,
		buffers: opts.Buffers,
		filter:  opts.Filter,
		writer:  opts.Writer,
		names:   opts.Names,
		clock:   clock,
		logger:  logger,
		echo:    opts.Echo,
	}, nil
}

// Run streams events until ctx ends. A source that stops on its own, with or
// without an error, is a capture failure and is reported as one.
func (r *Recorder) Run(ctx context.Context) error {
	err := r.source.Stream(ctx, r.handle)
	if ctx.Err() != nil {
		return nil
	}
	if err == nil {
		return errors.New("event source stopped before shutdown was requested")
	}
	return fmt.Errorf("event source failed: %w", err)
}

// handle is invoked from the source's callback threads. It must never block
// on anything slower than the buffer mutex.
func (r *Recorder) handle(raw uia.RawEvent) error {
	if raw.Element == nil {
		r.logger.Debug("event without element dropped", "event_type", string(raw.Type))
		return nil
	}

	pid := uia.PIDOr(raw.Element.ProcessID())
	if !r.filter.Allows(pid) {
		return nil
	}

	event := r.compose(raw, pid)
	r.buffers.AppendUI(event)
	r.preview(event)
	return nil
}

// compose reads the element properties, substituting defaults for anything
// the tree no longer answers for.
func (r *Recorder) compose(raw uia.RawEvent, pid int32) record.UIEvent {
	el := raw.Element
	event := record.UIEvent{
		EventType:    raw.Type,
		Timestamp:    r.clock().UTC(),
		Name:         uia.StringOr(el.Name()),
		ControlType:  uia.TypeOr(el.ControlType()),
		ClassName:    uia.StringOr(el.ClassName()),
		ProcessID:    pid,
		AncestorPath: uia.AncestorPath(el),
	}
	if r.names != nil {
		event.ProcessName = r.names.Name(pid)
	}
	if bounds, err := el.Bounds(); err == nil {
		event.BoundingBox = &bounds
	}

	switch raw.Type {
	case record.EventPropertyChanged:
		event.PropertyName = raw.Property
		event.NewValue = record.Scalar(raw.Value)
	case record.EventStructureChanged:
		event.StructureChangeKind = raw.Kind
	}
	return event
}

func (r *Recorder) preview(event record.UIEvent) {
	if r.echo == nil {
		return
	}
	r.echoMu.Lock()
	defer r.echoMu.Unlock()
	// Preview output is best-effort; a broken pipe must not stop capture.
	fmt.Fprintln(r.echo, marker(event))
}

// marker renders the single-line preview form consumed by the desktop shell.
// The bracketed tags are part of that contract.
func marker(event record.UIEvent) string {
	switch event.EventType {
	case record.EventInvoke:
		return fmt.Sprintf("[Invoke] %s (%s)", event.Name, event.ControlType)
	case record.EventStructureChanged:
		return fmt.Sprintf("[Structure] %s %s (%s)", event.StructureChangeKind, event.Name, event.ControlType)
	case record.EventPropertyChanged:
		var value any
		if event.NewValue != nil {
			value = *event.NewValue
		}
		return fmt.Sprintf("[PropertyChanged] %s=%v (%s)", event.PropertyName, value, event.ControlType)
	default:
		return fmt.Sprintf("[Focus] %s (%s)", event.Name, event.ControlType)
	}
}

// Flush writes the buffered session to disk. Safe to call more than once;
// only the first call writes, and later calls observe its result.
func (r *Recorder) Flush() error {
	r.flushOnce.Do(func() {
		r.flushErr = r.writer.Write(
			r.buffers.SnapshotUI(),
			r.buffers.SnapshotClicks(),
			r.buffers.SnapshotURLs(),
		)
	})
	return r.flushErr
}

// Counts reports the current buffer sizes.
func (r *Recorder) Counts() (uiEvents, clicks, urls int) {
	return r.buffers.Counts()
}
