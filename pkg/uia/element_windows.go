//go:build windows

package uia

import (
	"errors"
	"fmt"

	ole "github.com/go-ole/go-ole"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

// systemElement adapts a native automation element to the Element interface.
// The raw pointer is only valid while the owning callback or ancestor walk is
// running; nothing retains a systemElement beyond that.
type systemElement struct {
	raw    *automationElement
	walker *automationTreeWalker
}

func wrapElement(el *automationElement, walker *automationTreeWalker) Element {
	if el == nil || walker == nil {
		return nil
	}
	return &systemElement{raw: el, walker: walker}
}

func (e *systemElement) Name() (string, error) {
	name, err := e.raw.CurrentName()
	if err != nil {
		return "", wrapPropErr("name", err)
	}
	return name, nil
}

func (e *systemElement) ControlType() (string, error) {
	id, err := e.raw.CurrentControlType()
	if err != nil {
		return "", wrapPropErr("control_type", err)
	}
	return controlTypeName(id), nil
}

func (e *systemElement) ClassName() (string, error) {
	class, err := e.raw.CurrentClassName()
	if err != nil {
		return "", wrapPropErr("class_name", err)
	}
	return class, nil
}

func (e *systemElement) ProcessID() (int32, error) {
	pid, err := e.raw.CurrentProcessID()
	if err != nil {
		return 0, wrapPropErr("process_id", err)
	}
	return pid, nil
}

func (e *systemElement) Bounds() (record.Rect, error) {
	r, err := e.raw.CurrentBoundingRectangle()
	if err != nil {
		return record.Rect{}, wrapPropErr("bounds", err)
	}
	return record.Rect{
		Left:   int(r.left),
		Top:    int(r.top),
		Right:  int(r.right),
		Bottom: int(r.bottom),
	}, nil
}

func (e *systemElement) Parent() (Element, error) {
	parent, err := e.walker.ParentElement(e.raw)
	if err != nil {
		return nil, wrapPropErr("parent", err)
	}
	if parent == nil {
		return nil, nil
	}
	return &systemElement{raw: parent, walker: e.walker}, nil
}

// Release frees the native reference. The ancestor walk releases the
// elements it creates; event senders stay owned by the automation runtime.
func (e *systemElement) Release() {
	e.raw.Release()
}

// wrapPropErr classifies a COM failure into a property read error.
func wrapPropErr(prop string, err error) error {
	reason := PropertyUnavailable
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		switch uint32(oleErr.Code()) {
		case hrElementNotAvailable:
			reason = StaleElement
		case hrAccessDenied:
			reason = AccessDenied
		}
	}
	return &PropError{Reason: reason, Prop: prop, Err: err}
}

// StructureChangeType values from UIAutomationCore.h.
const (
	structureChildAdded int32 = iota
	structureChildRemoved
	structureChildrenInvalidated
	structureChildrenBulkAdded
	structureChildrenBulkRemoved
	structureChildrenReordered
)

func structureKind(changeType int32) record.StructureChangeKind {
	switch changeType {
	case structureChildAdded:
		return record.ChildAdded
	case structureChildRemoved:
		return record.ChildRemoved
	case structureChildrenInvalidated:
		return record.ChildrenInvalidated
	case structureChildrenBulkAdded:
		return record.ChildrenBulkAdded
	case structureChildrenBulkRemoved:
		return record.ChildrenBulkRemoved
	case structureChildrenReordered:
		return record.ChildrenReordered
	default:
		return record.ChildrenInvalidated
	}
}

func propertyName(id int32) string {
	switch id {
	case namePropertyID:
		return "Name"
	case isOffscreenPropertyID:
		return "IsOffscreen"
	default:
		return fmt.Sprintf("Property%d", id)
	}
}

// Control type ids from UIAutomationClient.h, in declaration order.
var controlTypeNames = map[int32]string{
	50000: "Button",
	50001: "Calendar",
	50002: "CheckBox",
	50003: "ComboBox",
	50004: "Edit",
	50005: "Hyperlink",
	50006: "Image",
	50007: "ListItem",
	50008: "List",
	50009: "Menu",
	50010: "MenuBar",
	50011: "MenuItem",
	50012: "ProgressBar",
	50013: "RadioButton",
	50014: "ScrollBar",
	50015: "Slider",
	50016: "Spinner",
	50017: "StatusBar",
	50018: "Tab",
	50019: "TabItem",
	50020: "Text",
	50021: "ToolBar",
	50022: "ToolTip",
	50023: "Tree",
	50024: "TreeItem",
	50025: "Custom",
	50026: "Group",
	50027: "Thumb",
	50028: "DataGrid",
	50029: "DataItem",
	50030: "Document",
	50031: "SplitButton",
	50032: "Window",
	50033: "Pane",
	50034: "Header",
	50035: "HeaderItem",
	50036: "Table",
	50037: "TitleBar",
	50038: "Separator",
	50039: "SemanticZoom",
	50040: "AppBar",
}

func controlTypeName(id int32) string {
	if name, ok := controlTypeNames[id]; ok {
		return name
	}
	return "Unknown"
}
