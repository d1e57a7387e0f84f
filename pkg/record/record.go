// Package record defines the persisted event shapes shared with the
// downstream schema-inference and playback tooling. The snake_case field
// names are part of that contract and must not change.
package record

import "time"

// EventType identifies the accessibility event category.
type EventType string

// Accessibility event categories captured by the recorder.
const (
	EventFocus            EventType = "Focus"
	EventInvoke           EventType = "Invoke"
	EventStructureChanged EventType = "StructureChanged"
	EventPropertyChanged  EventType = "PropertyChanged"
)

// Button names a pointer button in a PointerClick record.
type Button string

// Pointer buttons sampled by the pointer poller.
const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// StructureChangeKind describes how the accessibility tree mutated.
type StructureChangeKind string

// Structure change kinds reported by the accessibility runtime.
const (
	ChildAdded          StructureChangeKind = "ChildAdded"
	ChildRemoved        StructureChangeKind = "ChildRemoved"
	ChildrenInvalidated StructureChangeKind = "ChildrenInvalidated"
	ChildrenBulkAdded   StructureChangeKind = "ChildrenBulkAdded"
	ChildrenBulkRemoved StructureChangeKind = "ChildrenBulkRemoved"
	ChildrenReordered   StructureChangeKind = "ChildrenReordered"
)

// Rect is an element bounding box in screen coordinates.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// UIEvent is one captured accessibility event. Optional fields are encoded
// only when the event type carries them: bounding_box and point whenever the
// element exposed them, property_name and new_value for PropertyChanged,
// structure_change_kind for StructureChanged.
type UIEvent struct {
	EventType           EventType           `json:"event_type"`
	Timestamp           time.Time           `json:"timestamp"`
	ControlType         string              `json:"control_type"`
	Name                string              `json:"name"`
	ClassName           string              `json:"class_name"`
	ProcessID           int32               `json:"process_id"`
	ProcessName         string              `json:"process_name"`
	AncestorPath        []string            `json:"ancestor_path"`
	BoundingBox         *Rect               `json:"bounding_box,omitempty"`
	Point               *Point              `json:"point,omitempty"`
	PropertyName        string              `json:"property_name,omitempty"`
	NewValue            *any                `json:"new_value,omitempty"`
	StructureChangeKind StructureChangeKind `json:"structure_change_kind,omitempty"`
}

// Scalar wraps a property value for the new_value field. Passing nil yields
// an explicit JSON null, which downstream consumers treat as "value cleared".
func Scalar(v any) *any {
	return &v
}

// PointerClick is one pointer sample taken while a button read as held.
// Sampling is level-triggered: a button held across several poll ticks
// produces several records.
type PointerClick struct {
	Timestamp time.Time `json:"timestamp"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Button    Button    `json:"button"`
}

// BrowserURL is one observed browser navigation. Consecutive duplicates are
// suppressed at append time, so adjacent records always differ in url.
type BrowserURL struct {
	Timestamp   time.Time `json:"timestamp"`
	ProcessName string    `json:"process_name"`
	URL         string    `json:"url"`
}
