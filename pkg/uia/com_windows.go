//go:build windows

package uia

import (
	"errors"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
)

// UI Automation client identifiers from UIAutomationClient.h.
var (
	clsidCUIAutomation = ole.NewGUID("{ff48dba4-60ef-4201-aa87-54103eef594e}")
	iidIUIAutomation   = ole.NewGUID("{30cbe57d-d9d0-452a-ab13-7ac5ac4825ee}")

	iidFocusChangedHandler     = ole.NewGUID("{c270f6b5-5c69-4290-9745-58ce1cd490f0}")
	iidAutomationEventHandler  = ole.NewGUID("{146c3c17-f12e-4e22-8c27-f894b9b79c69}")
	iidStructureChangedHandler = ole.NewGUID("{e81d1b4e-11c5-42f8-9754-e7036c79f054}")
	iidPropertyChangedHandler  = ole.NewGUID("{40cd37d4-c756-4b0c-8c6f-bddfeeb13b50}")
)

const (
	hrSOK          uintptr = 0
	hrSFalse       uintptr = 1
	hrENoInterface uintptr = 0x80004002
	hrEPointer     uintptr = 0x80004003

	hrElementNotAvailable uint32 = 0x80040201
	hrAccessDenied        uint32 = 0x80070005
)

const (
	invokedEventID uint32 = 20009

	namePropertyID        int32 = 30005
	isOffscreenPropertyID int32 = 30022

	// TreeScope_Subtree: the element itself plus every descendant.
	treeScopeSubtree uintptr = 7
)

// comError converts an HRESULT into an error for failed calls.
func comError(hr uintptr) error {
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

func oleCode(err error, code uintptr) bool {
	var oleErr *ole.OleError
	return errors.As(err, &oleErr) && oleErr.Code() == code
}

// bstrToStringFree copies a COM-owned BSTR into a Go string and frees it.
func bstrToStringFree(b *uint16) string {
	if b == nil {
		return ""
	}
	s := ole.BstrToString(b)
	ole.SysFreeString((*int16)(unsafe.Pointer(b)))
	return s
}

type uiaRect struct {
	left, top, right, bottom int32
}

// automationClient binds IUIAutomation. The vtable lists every slot in
// declaration order; only a handful are called but the offsets of those
// depend on all of them.
type automationClient struct {
	ole.IUnknown
}

type automationClientVtbl struct {
	ole.IUnknownVtbl
	CompareElements                           uintptr
	CompareRuntimeIds                         uintptr
	GetRootElement                            uintptr
	ElementFromHandle                         uintptr
	ElementFromPoint                          uintptr
	GetFocusedElement                         uintptr
	GetRootElementBuildCache                  uintptr
	ElementFromHandleBuildCache               uintptr
	ElementFromPointBuildCache                uintptr
	GetFocusedElementBuildCache               uintptr
	CreateTreeWalker                          uintptr
	GetControlViewWalker                      uintptr
	GetContentViewWalker                      uintptr
	GetRawViewWalker                          uintptr
	GetRawViewCondition                       uintptr
	GetControlViewCondition                   uintptr
	GetContentViewCondition                   uintptr
	CreateCacheRequest                        uintptr
	CreateTrueCondition                       uintptr
	CreateFalseCondition                      uintptr
	CreatePropertyCondition                   uintptr
	CreatePropertyConditionEx                 uintptr
	CreateAndCondition                        uintptr
	CreateAndConditionFromArray               uintptr
	CreateAndConditionFromNativeArray         uintptr
	CreateOrCondition                         uintptr
	CreateOrConditionFromArray                uintptr
	CreateOrConditionFromNativeArray          uintptr
	CreateNotCondition                        uintptr
	AddAutomationEventHandler                 uintptr
	RemoveAutomationEventHandler              uintptr
	AddPropertyChangedEventHandlerNativeArray uintptr
	AddPropertyChangedEventHandler            uintptr
	RemovePropertyChangedEventHandler         uintptr
	AddStructureChangedEventHandler           uintptr
	RemoveStructureChangedEventHandler        uintptr
	AddFocusChangedEventHandler               uintptr
	RemoveFocusChangedEventHandler            uintptr
	RemoveAllEventHandlers                    uintptr
	ElementFromIAccessible                    uintptr
	ElementFromIAccessibleBuildCache          uintptr
}

func (c *automationClient) vtable() *automationClientVtbl {
	return (*automationClientVtbl)(unsafe.Pointer(c.RawVTable))
}

func (c *automationClient) RootElement() (*automationElement, error) {
	var root *automationElement
	hr, _, _ := syscall.SyscallN(c.vtable().GetRootElement,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(&root)))
	if err := comError(hr); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New("desktop root element unavailable")
	}
	return root, nil
}

func (c *automationClient) RawViewWalker() (*automationTreeWalker, error) {
	var walker *automationTreeWalker
	hr, _, _ := syscall.SyscallN(c.vtable().GetRawViewWalker,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(&walker)))
	if err := comError(hr); err != nil {
		return nil, err
	}
	if walker == nil {
		return nil, errors.New("raw view walker unavailable")
	}
	return walker, nil
}

func (c *automationClient) AddFocusChangedEventHandler(handler *comHandler) error {
	hr, _, _ := syscall.SyscallN(c.vtable().AddFocusChangedEventHandler,
		uintptr(unsafe.Pointer(c)),
		0, // no cache request
		uintptr(unsafe.Pointer(handler)))
	return comError(hr)
}

func (c *automationClient) AddAutomationEventHandler(eventID uint32, el *automationElement, handler *comHandler) error {
	hr, _, _ := syscall.SyscallN(c.vtable().AddAutomationEventHandler,
		uintptr(unsafe.Pointer(c)),
		uintptr(eventID),
		uintptr(unsafe.Pointer(el)),
		treeScopeSubtree,
		0,
		uintptr(unsafe.Pointer(handler)))
	return comError(hr)
}

func (c *automationClient) AddStructureChangedEventHandler(el *automationElement, handler *comHandler) error {
	hr, _, _ := syscall.SyscallN(c.vtable().AddStructureChangedEventHandler,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(el)),
		treeScopeSubtree,
		0,
		uintptr(unsafe.Pointer(handler)))
	return comError(hr)
}

func (c *automationClient) AddPropertyChangedEventHandlerNativeArray(el *automationElement, handler *comHandler, props []int32) error {
	if len(props) == 0 {
		return errors.New("property subscription requires at least one property id")
	}
	hr, _, _ := syscall.SyscallN(c.vtable().AddPropertyChangedEventHandlerNativeArray,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(el)),
		treeScopeSubtree,
		0,
		uintptr(unsafe.Pointer(handler)),
		uintptr(unsafe.Pointer(&props[0])),
		uintptr(len(props)))
	return comError(hr)
}

func (c *automationClient) RemoveAllEventHandlers() error {
	hr, _, _ := syscall.SyscallN(c.vtable().RemoveAllEventHandlers,
		uintptr(unsafe.Pointer(c)))
	return comError(hr)
}

// automationElement binds IUIAutomationElement.
type automationElement struct {
	ole.IUnknown
}

type automationElementVtbl struct {
	ole.IUnknownVtbl
	SetFocus                        uintptr
	GetRuntimeId                    uintptr
	FindFirst                       uintptr
	FindAll                         uintptr
	FindFirstBuildCache             uintptr
	FindAllBuildCache               uintptr
	BuildUpdatedCache               uintptr
	GetCurrentPropertyValue         uintptr
	GetCurrentPropertyValueEx       uintptr
	GetCachedPropertyValue          uintptr
	GetCachedPropertyValueEx        uintptr
	GetCurrentPatternAs             uintptr
	GetCachedPatternAs              uintptr
	GetCurrentPattern               uintptr
	GetCachedPattern                uintptr
	GetCachedParent                 uintptr
	GetCachedChildren               uintptr
	GetCurrentProcessId             uintptr
	GetCurrentControlType           uintptr
	GetCurrentLocalizedControlType  uintptr
	GetCurrentName                  uintptr
	GetCurrentAcceleratorKey        uintptr
	GetCurrentAccessKey             uintptr
	GetCurrentHasKeyboardFocus      uintptr
	GetCurrentIsKeyboardFocusable   uintptr
	GetCurrentIsEnabled             uintptr
	GetCurrentAutomationId          uintptr
	GetCurrentClassName             uintptr
	GetCurrentHelpText              uintptr
	GetCurrentCulture               uintptr
	GetCurrentIsControlElement      uintptr
	GetCurrentIsContentElement      uintptr
	GetCurrentIsPassword            uintptr
	GetCurrentNativeWindowHandle    uintptr
	GetCurrentItemType              uintptr
	GetCurrentIsOffscreen           uintptr
	GetCurrentOrientation           uintptr
	GetCurrentFrameworkId           uintptr
	GetCurrentIsRequiredForForm     uintptr
	GetCurrentItemStatus            uintptr
	GetCurrentBoundingRectangle     uintptr
	GetCurrentLabeledBy             uintptr
	GetCurrentAriaRole              uintptr
	GetCurrentAriaProperties        uintptr
	GetCurrentIsDataValidForForm    uintptr
	GetCurrentControllerFor         uintptr
	GetCurrentDescribedBy           uintptr
	GetCurrentFlowsTo               uintptr
	GetCurrentProviderDescription   uintptr
	GetCachedProcessId              uintptr
	GetCachedControlType            uintptr
	GetCachedLocalizedControlType   uintptr
	GetCachedName                   uintptr
	GetCachedAcceleratorKey         uintptr
	GetCachedAccessKey              uintptr
	GetCachedHasKeyboardFocus       uintptr
	GetCachedIsKeyboardFocusable    uintptr
	GetCachedIsEnabled              uintptr
	GetCachedAutomationId           uintptr
	GetCachedClassName              uintptr
	GetCachedHelpText               uintptr
	GetCachedCulture                uintptr
	GetCachedIsControlElement       uintptr
	GetCachedIsContentElement       uintptr
	GetCachedIsPassword             uintptr
	GetCachedNativeWindowHandle     uintptr
	GetCachedItemType               uintptr
	GetCachedIsOffscreen            uintptr
	GetCachedOrientation            uintptr
	GetCachedFrameworkId            uintptr
	GetCachedIsRequiredForForm      uintptr
	GetCachedItemStatus             uintptr
	GetCachedBoundingRectangle      uintptr
	GetCachedLabeledBy              uintptr
	GetCachedAriaRole               uintptr
	GetCachedAriaProperties         uintptr
	GetCachedIsDataValidForForm     uintptr
	GetCachedControllerFor          uintptr
	GetCachedDescribedBy            uintptr
	GetCachedFlowsTo                uintptr
	GetCachedProviderDescription    uintptr
	GetClickablePoint               uintptr
}

func (e *automationElement) vtable() *automationElementVtbl {
	return (*automationElementVtbl)(unsafe.Pointer(e.RawVTable))
}

func (e *automationElement) CurrentName() (string, error) {
	var out *uint16
	hr, _, _ := syscall.SyscallN(e.vtable().GetCurrentName,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&out)))
	if err := comError(hr); err != nil {
		return "", err
	}
	return bstrToStringFree(out), nil
}

func (e *automationElement) CurrentClassName() (string, error) {
	var out *uint16
	hr, _, _ := syscall.SyscallN(e.vtable().GetCurrentClassName,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&out)))
	if err := comError(hr); err != nil {
		return "", err
	}
	return bstrToStringFree(out), nil
}

func (e *automationElement) CurrentControlType() (int32, error) {
	var id int32
	hr, _, _ := syscall.SyscallN(e.vtable().GetCurrentControlType,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&id)))
	if err := comError(hr); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *automationElement) CurrentProcessID() (int32, error) {
	var pid int32
	hr, _, _ := syscall.SyscallN(e.vtable().GetCurrentProcessId,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&pid)))
	if err := comError(hr); err != nil {
		return 0, err
	}
	return pid, nil
}

func (e *automationElement) CurrentBoundingRectangle() (uiaRect, error) {
	var r uiaRect
	hr, _, _ := syscall.SyscallN(e.vtable().GetCurrentBoundingRectangle,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&r)))
	if err := comError(hr); err != nil {
		return uiaRect{}, err
	}
	return r, nil
}

// automationTreeWalker binds IUIAutomationTreeWalker.
type automationTreeWalker struct {
	ole.IUnknown
}

type automationTreeWalkerVtbl struct {
	ole.IUnknownVtbl
	GetParentElement                    uintptr
	GetFirstChildElement                uintptr
	GetLastChildElement                 uintptr
	GetNextSiblingElement               uintptr
	GetPreviousSiblingElement           uintptr
	NormalizeElement                    uintptr
	GetParentElementBuildCache          uintptr
	GetFirstChildElementBuildCache      uintptr
	GetLastChildElementBuildCache       uintptr
	GetNextSiblingElementBuildCache     uintptr
	GetPreviousSiblingElementBuildCache uintptr
	NormalizeElementBuildCache          uintptr
	GetCondition                        uintptr
}

func (w *automationTreeWalker) vtable() *automationTreeWalkerVtbl {
	return (*automationTreeWalkerVtbl)(unsafe.Pointer(w.RawVTable))
}

// ParentElement resolves the parent in the raw view. A nil result with a nil
// error marks the desktop root.
func (w *automationTreeWalker) ParentElement(el *automationElement) (*automationElement, error) {
	var parent *automationElement
	hr, _, _ := syscall.SyscallN(w.vtable().GetParentElement,
		uintptr(unsafe.Pointer(w)),
		uintptr(unsafe.Pointer(el)),
		uintptr(unsafe.Pointer(&parent)))
	if err := comError(hr); err != nil {
		return nil, err
	}
	return parent, nil
}
