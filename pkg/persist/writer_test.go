package persist

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvents(names ...string) []record.UIEvent {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	events := make([]record.UIEvent, 0, len(names))
	for i, name := range names {
		events = append(events, record.UIEvent{
			EventType:    record.EventFocus,
			Timestamp:    ts.Add(time.Duration(i) * time.Second),
			ControlType:  "Button",
			Name:         name,
			ProcessID:    int32(100 + i),
			AncestorPath: []string{"Desktop"},
		})
	}
	return events
}

func readEvents(t *testing.T, path string) []record.UIEvent {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var events []record.UIEvent
	require.NoError(t, json.Unmarshal(data, &events))
	return events
}

func TestOverwriteWritesExactSnapshot(t *testing.T) {
	layout := BuildLayout(t.TempDir())
	writer, err := NewWriter(Options{Layout: layout, Logger: quietLogger()})
	require.NoError(t, err)

	events := testEvents("A", "B", "C")
	clicks := []record.PointerClick{{Timestamp: events[0].Timestamp, X: 1, Y: 2, Button: record.ButtonLeft}}
	urls := []record.BrowserURL{{Timestamp: events[0].Timestamp, ProcessName: "chrome", URL: "https://example.com"}}

	require.NoError(t, writer.Write(events, clicks, urls))

	assert.Equal(t, events, readEvents(t, layout.UIALogPath))

	var gotClicks []record.PointerClick
	data, err := os.ReadFile(layout.ClicksPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &gotClicks))
	assert.Equal(t, clicks, gotClicks)

	var gotURLs []record.BrowserURL
	data, err = os.ReadFile(layout.URLsPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &gotURLs))
	assert.Equal(t, urls, gotURLs)
}

func TestEmptySessionWritesEmptyLists(t *testing.T) {
	layout := BuildLayout(t.TempDir())
	writer, err := NewWriter(Options{Layout: layout, Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, writer.Write(nil, nil, nil))

	for _, path := range []string{layout.UIALogPath, layout.ClicksPath, layout.URLsPath} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	}
}

func TestOverwriteIsIdempotent(t *testing.T) {
	layout := BuildLayout(t.TempDir())
	writer, err := NewWriter(Options{Layout: layout, Logger: quietLogger()})
	require.NoError(t, err)

	events := testEvents("A", "B")
	require.NoError(t, writer.Write(events, nil, nil))
	require.NoError(t, writer.Write(events, nil, nil))

	assert.Equal(t, events, readEvents(t, layout.UIALogPath))
}

func TestMergeAppendsToExistingLog(t *testing.T) {
	layout := BuildLayout(t.TempDir())

	// Prior run left one record behind.
	first, err := NewWriter(Options{Layout: layout, Logger: quietLogger()})
	require.NoError(t, err)
	prior := testEvents("existing")
	require.NoError(t, first.Write(prior, nil, nil))

	second, err := NewWriter(Options{Layout: layout, Merge: true, Logger: quietLogger()})
	require.NoError(t, err)
	session := testEvents("new-1", "new-2")
	require.NoError(t, second.Write(session, nil, nil))

	got := readEvents(t, layout.UIALogPath)
	require.Len(t, got, 3)
	assert.Equal(t, prior[0], got[0], "pre-existing record must survive unchanged")
	assert.Equal(t, session[0], got[1])
	assert.Equal(t, session[1], got[2])
}

func TestMergeIsAssociative(t *testing.T) {
	sessionA := testEvents("a-1", "a-2")
	sessionB := testEvents("b-1")

	// Two consecutive merge runs.
	layoutTwo := BuildLayout(t.TempDir())
	w1, err := NewWriter(Options{Layout: layoutTwo, Merge: true, Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, w1.Write(sessionA, nil, nil))
	w2, err := NewWriter(Options{Layout: layoutTwo, Merge: true, Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, w2.Write(sessionB, nil, nil))

	// One run carrying the concatenation.
	layoutOne := BuildLayout(t.TempDir())
	w3, err := NewWriter(Options{Layout: layoutOne, Merge: true, Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, w3.Write(append(append([]record.UIEvent{}, sessionA...), sessionB...), nil, nil))

	assert.Equal(t, readEvents(t, layoutOne.UIALogPath), readEvents(t, layoutTwo.UIALogPath))
}

func TestMergeTreatsMalformedFileAsEmpty(t *testing.T) {
	layout := BuildLayout(t.TempDir())
	require.NoError(t, os.WriteFile(layout.UIALogPath, []byte("{not json"), 0o644))

	writer, err := NewWriter(Options{Layout: layout, Merge: true, Logger: quietLogger()})
	require.NoError(t, err)
	session := testEvents("only")
	require.NoError(t, writer.Write(session, nil, nil))

	assert.Equal(t, session, readEvents(t, layout.UIALogPath))
}

func TestMergeWithoutExistingFile(t *testing.T) {
	layout := BuildLayout(t.TempDir())
	writer, err := NewWriter(Options{Layout: layout, Merge: true, Logger: quietLogger()})
	require.NoError(t, err)

	session := testEvents("solo")
	require.NoError(t, writer.Write(session, nil, nil))
	assert.Equal(t, session, readEvents(t, layout.UIALogPath))
}

func TestOverwriteBacksUpPriorLog(t *testing.T) {
	layout := BuildLayout(t.TempDir())

	prior := testEvents("from-last-run")
	first, err := NewWriter(Options{Layout: layout, Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, first.Write(prior, nil, nil))
	priorBytes, err := os.ReadFile(layout.UIALogPath)
	require.NoError(t, err)

	second, err := NewWriter(Options{
		Layout: layout,
		Clock:  func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) },
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	session := testEvents("fresh")
	require.NoError(t, second.Write(session, nil, nil))
	require.NoError(t, second.Write(session, nil, nil))

	backups, err := filepath.Glob(filepath.Join(layout.Dir, "uia_log_backup_*.json.gz"))
	require.NoError(t, err)
	require.Len(t, backups, 1, "backup runs at most once per writer")

	f, err := os.Open(backups[0])
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	restored, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, priorBytes, restored)

	assert.Equal(t, session, readEvents(t, layout.UIALogPath))
}

func TestNoBackupWithoutPriorLog(t *testing.T) {
	layout := BuildLayout(t.TempDir())
	writer, err := NewWriter(Options{Layout: layout, Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, writer.Write(testEvents("a"), nil, nil))

	backups, err := filepath.Glob(filepath.Join(layout.Dir, "uia_log_backup_*.json.gz"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestArtifactsAreIndented(t *testing.T) {
	layout := BuildLayout(t.TempDir())
	writer, err := NewWriter(Options{Layout: layout, Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, writer.Write(testEvents("a"), nil, nil))

	data, err := os.ReadFile(layout.UIALogPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "expected indented list output")
}

func TestNewWriterValidation(t *testing.T) {
	_, err := NewWriter(Options{})
	assert.Error(t, err)
}
