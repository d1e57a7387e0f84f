package uia

import (
	"fmt"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

// Element is one node of the accessibility tree. Implementations read live
// UI state, so every accessor can fail at any time: elements disappear
// between the callback and the read. Failures are always *PropError values.
type Element interface {
	Name() (string, error)
	ControlType() (string, error)
	ClassName() (string, error)
	ProcessID() (int32, error)
	Bounds() (record.Rect, error)

	// Parent resolves the parent through the raw tree view. A nil element
	// with a nil error marks the root.
	Parent() (Element, error)
}

// FailureReason classifies why an element property read failed.
type FailureReason int

// Property read failure reasons.
const (
	PropertyUnavailable FailureReason = iota
	StaleElement
	AccessDenied
)

// String returns the reason in log-friendly form.
func (r FailureReason) String() string {
	switch r {
	case PropertyUnavailable:
		return "property unavailable"
	case StaleElement:
		return "stale element"
	case AccessDenied:
		return "access denied"
	default:
		return fmt.Sprintf("failure reason %d", int(r))
	}
}

// PropError describes a failed element property read. Call sites substitute
// a default value and may branch on Reason.
type PropError struct {
	Reason FailureReason
	Prop   string
	Err    error
}

// Error formats the failed property and reason.
func (e *PropError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read %s: %s: %v", e.Prop, e.Reason, e.Err)
	}
	return fmt.Sprintf("read %s: %s", e.Prop, e.Reason)
}

// Unwrap exposes the underlying runtime error, when one exists.
func (e *PropError) Unwrap() error {
	return e.Err
}

// StringOr returns value, or the empty string when the read failed.
func StringOr(value string, err error) string {
	if err != nil {
		return ""
	}
	return value
}

// TypeOr returns value, or "Unknown" when the read failed.
func TypeOr(value string, err error) string {
	if err != nil {
		return "Unknown"
	}
	return value
}

// PIDOr returns pid, or -1 when the read failed.
func PIDOr(pid int32, err error) int32 {
	if err != nil {
		return -1
	}
	return pid
}
