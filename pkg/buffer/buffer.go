// Package buffer holds the session's append-only event buffers.
package buffer

import (
	"sync"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

// Buffer is an append-only, mutex-guarded slice. The zero value is ready to
// use. Locks are held only for the O(1) append or the snapshot copy, never
// across I/O or tree reads.
type Buffer[T any] struct {
	mu    sync.Mutex
	items []T
}

// Append stores one item. Within a buffer, append order equals
// lock-acquisition order.
func (b *Buffer[T]) Append(item T) {
	b.mu.Lock()
	b.items = append(b.items, item)
	b.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the contents. The copy is owned
// by the caller; later appends do not alter it.
func (b *Buffer[T]) Snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Len reports the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Aggregator owns the three session buffers. Each buffer carries its own
// lock so unrelated producers never contend. There is no shrink operation;
// buffers grow for the lifetime of the session.
type Aggregator struct {
	ui     Buffer[record.UIEvent]
	clicks Buffer[record.PointerClick]

	urlMu sync.Mutex
	urls  []record.BrowserURL
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AppendUI stores one accessibility event.
func (a *Aggregator) AppendUI(event record.UIEvent) {
	a.ui.Append(event)
}

// AppendClick stores one pointer sample.
func (a *Aggregator) AppendClick(click record.PointerClick) {
	a.clicks.Append(click)
}

// AppendURL stores one browser navigation unless it repeats the most
// recently appended url. It reports whether the record was stored. The check
// and the append share one critical section, so no two consecutive stored
// records ever carry the same url.
func (a *Aggregator) AppendURL(nav record.BrowserURL) bool {
	a.urlMu.Lock()
	defer a.urlMu.Unlock()
	if n := len(a.urls); n > 0 && a.urls[n-1].URL == nav.URL {
		return false
	}
	a.urls = append(a.urls, nav)
	return true
}

// SnapshotUI copies the accessibility event buffer.
func (a *Aggregator) SnapshotUI() []record.UIEvent {
	return a.ui.Snapshot()
}

// SnapshotClicks copies the pointer sample buffer.
func (a *Aggregator) SnapshotClicks() []record.PointerClick {
	return a.clicks.Snapshot()
}

// SnapshotURLs copies the browser navigation buffer.
func (a *Aggregator) SnapshotURLs() []record.BrowserURL {
	a.urlMu.Lock()
	defer a.urlMu.Unlock()
	out := make([]record.BrowserURL, len(a.urls))
	copy(out, a.urls)
	return out
}

// Counts reports per-buffer totals for the shutdown summary.
func (a *Aggregator) Counts() (uiEvents, clicks, urls int) {
	a.urlMu.Lock()
	urls = len(a.urls)
	a.urlMu.Unlock()
	return a.ui.Len(), a.clicks.Len(), urls
}
