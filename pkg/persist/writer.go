package persist

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

// Options configure the persistence writer.
type Options struct {
	Layout Layout
	// Merge appends this session's accessibility events to an existing
	// uia_log.json instead of replacing it. The pointer and browser
	// artifacts are always replaced.
	Merge  bool
	Clock  func() time.Time
	Logger *slog.Logger
}

// Writer serializes buffer snapshots into the artifact files. It keeps no
// cached view of prior file contents: merge re-reads the target on every
// call, so a repeated invocation cannot corrupt the artifact.
type Writer struct {
	layout     Layout
	merge      bool
	clock      func() time.Time
	logger     *slog.Logger
	backupOnce sync.Once
}

// NewWriter validates options and returns a writer.
func NewWriter(opts Options) (*Writer, error) {
	if strings.TrimSpace(opts.Layout.Dir) == "" {
		return nil, errors.New("layout directory must not be empty")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		layout: opts.Layout,
		merge:  opts.Merge,
		clock:  clock,
		logger: logger,
	}, nil
}

// Layout reports the artifact locations this writer targets.
func (w *Writer) Layout() Layout {
	return w.layout
}

// Write persists the three snapshots. Each artifact is attempted
// independently so one failure does not abandon the others; the first error
// is returned. A failed accessibility-events write means this session's
// events are lost, which is logged at error level.
func (w *Writer) Write(events []record.UIEvent, clicks []record.PointerClick, urls []record.BrowserURL) error {
	if err := EnsureFilesystem(w.layout); err != nil {
		return err
	}

	// A nil snapshot must still serialize as an empty JSON list.
	if events == nil {
		events = []record.UIEvent{}
	}
	if clicks == nil {
		clicks = []record.PointerClick{}
	}
	if urls == nil {
		urls = []record.BrowserURL{}
	}

	var firstErr error
	if err := w.writeUIA(events); err != nil {
		w.logger.Error("persisting accessibility events failed, session events lost", "path", w.layout.UIALogPath, "error", err)
		firstErr = err
	}
	if err := writeJSONAtomic(w.layout.ClicksPath, clicks); err != nil {
		w.logger.Error("persisting pointer clicks failed", "path", w.layout.ClicksPath, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := writeJSONAtomic(w.layout.URLsPath, urls); err != nil {
		w.logger.Error("persisting browser urls failed", "path", w.layout.URLsPath, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *Writer) writeUIA(events []record.UIEvent) error {
	if w.merge {
		existing := w.readExisting()
		combined := make([]record.UIEvent, 0, len(existing)+len(events))
		combined = append(combined, existing...)
		combined = append(combined, events...)
		return writeJSONAtomic(w.layout.UIALogPath, combined)
	}

	if err := w.backupExisting(); err != nil {
		// A failed backup must not block persisting the session.
		w.logger.Warn("backup of existing log failed", "path", w.layout.UIALogPath, "error", err)
	}
	return writeJSONAtomic(w.layout.UIALogPath, events)
}

// readExisting parses the current uia_log.json. A missing file reads as
// empty; a malformed one is logged and reads as empty, losing nothing from
// this session but abandoning the unparseable prior content.
func (w *Writer) readExisting() []record.UIEvent {
	data, err := os.ReadFile(w.layout.UIALogPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("reading existing log failed, treating as empty", "path", w.layout.UIALogPath, "error", err)
		}
		return nil
	}

	var existing []record.UIEvent
	if err := json.Unmarshal(data, &existing); err != nil {
		w.logger.Warn("existing log is not a valid event list, treating as empty", "path", w.layout.UIALogPath, "error", err)
		return nil
	}
	return existing
}
