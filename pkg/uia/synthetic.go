package uia

import (
	"context"
	"errors"
	"sync"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

// SyntheticSource delivers injected events through the same path the OS
// binding uses. Stream blocks until the context ends; Emit feeds the active
// stream from any goroutine.
type SyntheticSource struct {
	mu      sync.Mutex
	emit    func(RawEvent) error
	started chan struct{}
	once    sync.Once
}

// NewSyntheticSource returns a source with no active stream.
func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{started: make(chan struct{})}
}

// Started is closed once Stream has registered and Emit can deliver.
func (s *SyntheticSource) Started() <-chan struct{} {
	return s.started
}

// Stream registers the emit callback and blocks until ctx ends.
func (s *SyntheticSource) Stream(ctx context.Context, emit func(RawEvent) error) error {
	if emit == nil {
		return errors.New("emit callback must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.emit = emit
	s.mu.Unlock()
	s.once.Do(func() { close(s.started) })

	<-ctx.Done()

	s.mu.Lock()
	s.emit = nil
	s.mu.Unlock()
	return ctx.Err()
}

// Emit delivers one event to the active stream. Calls while no stream is
// active report ErrNotStreaming.
func (s *SyntheticSource) Emit(ev RawEvent) error {
	s.mu.Lock()
	emit := s.emit
	s.mu.Unlock()
	if emit == nil {
		return ErrNotStreaming
	}
	return emit(ev)
}

// ElementProps are the raw property values a SyntheticElement serves.
type ElementProps struct {
	Name        string
	ControlType string
	ClassName   string
	ProcessID   int32
	Bounds      *record.Rect
}

// SyntheticElement serves fixed property values, optionally forcing
// individual reads to fail with a typed reason. Up links toward the root;
// nil marks the root itself.
type SyntheticElement struct {
	Props ElementProps
	Up    Element
	Fail  map[string]FailureReason
}

// Name returns the configured element name.
func (e *SyntheticElement) Name() (string, error) {
	if err := e.forced("name"); err != nil {
		return "", err
	}
	return e.Props.Name, nil
}

// ControlType returns the configured control type.
func (e *SyntheticElement) ControlType() (string, error) {
	if err := e.forced("control_type"); err != nil {
		return "", err
	}
	return e.Props.ControlType, nil
}

// ClassName returns the configured window class.
func (e *SyntheticElement) ClassName() (string, error) {
	if err := e.forced("class_name"); err != nil {
		return "", err
	}
	return e.Props.ClassName, nil
}

// ProcessID returns the configured owning process id.
func (e *SyntheticElement) ProcessID() (int32, error) {
	if err := e.forced("process_id"); err != nil {
		return 0, err
	}
	return e.Props.ProcessID, nil
}

// Bounds returns the configured bounding box; elements configured without
// one read as unavailable.
func (e *SyntheticElement) Bounds() (record.Rect, error) {
	if err := e.forced("bounds"); err != nil {
		return record.Rect{}, err
	}
	if e.Props.Bounds == nil {
		return record.Rect{}, &PropError{Reason: PropertyUnavailable, Prop: "bounds"}
	}
	return *e.Props.Bounds, nil
}

// Parent returns the configured parent element.
func (e *SyntheticElement) Parent() (Element, error) {
	if err := e.forced("parent"); err != nil {
		return nil, err
	}
	return e.Up, nil
}

func (e *SyntheticElement) forced(prop string) error {
	if reason, ok := e.Fail[prop]; ok {
		return &PropError{Reason: reason, Prop: prop}
	}
	return nil
}
