package uia

import (
	"context"
	"log/slog"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

// RawEvent is one undecorated accessibility callback: the category, the
// element it concerns, and the category payload. Enrichment (ancestor path,
// process metadata, timestamp) happens downstream so the callback thread
// stays cheap.
type RawEvent struct {
	Type     record.EventType
	Element  Element
	Kind     record.StructureChangeKind // StructureChanged only
	Property string                     // PropertyChanged only
	Value    any                        // PropertyChanged only, may be nil
}

// EventSource emits accessibility events that should be recorded. Stream
// registers the subscriptions, delivers every callback through emit, and
// deregisters when ctx ends. Registration failure is reported immediately;
// deregistration is idempotent.
type EventSource interface {
	Stream(ctx context.Context, emit func(RawEvent) error) error
}

// EventSourceFunc adapts a function literal to the EventSource interface.
type EventSourceFunc func(ctx context.Context, emit func(RawEvent) error) error

// Stream calls the underlying function.
func (f EventSourceFunc) Stream(ctx context.Context, emit func(RawEvent) error) error {
	return f(ctx, emit)
}

// SystemOptions configure the operating system event source.
type SystemOptions struct {
	Logger *slog.Logger
}
