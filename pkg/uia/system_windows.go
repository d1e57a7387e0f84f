//go:build windows

package uia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"

	"github.com/offlinefirst/uiatrace/pkg/record"
)

// SystemSource subscribes to the operating system accessibility stream:
// focus changes, invoked controls, structure changes, and name/offscreen
// property changes across the whole desktop tree.
type SystemSource struct {
	logger *slog.Logger

	mu       sync.Mutex
	emit     func(RawEvent) error
	walker   *automationTreeWalker
	handlers []*comHandler
}

// NewSystemSource prepares an inactive source. All COM work happens inside
// Stream so it lands on the locked streaming thread.
func NewSystemSource(opts SystemOptions) (*SystemSource, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemSource{logger: logger}, nil
}

// Stream registers the four subscriptions and delivers callbacks through
// emit until ctx ends. Any registration failure is returned immediately;
// it is the one error the capture session cannot survive.
func (s *SystemSource) Stream(ctx context.Context, emit func(RawEvent) error) error {
	if emit == nil {
		return errors.New("emit callback must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Registration and removal must happen on the same thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil && !oleCode(err, hrSFalse) {
		return fmt.Errorf("initialise COM: %w", err)
	}
	defer ole.CoUninitialize()

	unknown, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		return fmt.Errorf("create UI Automation client: %w", err)
	}
	client := (*automationClient)(unsafe.Pointer(unknown))
	defer client.Release()

	walker, err := client.RawViewWalker()
	if err != nil {
		return fmt.Errorf("resolve raw view walker: %w", err)
	}
	defer walker.Release()

	root, err := client.RootElement()
	if err != nil {
		return fmt.Errorf("resolve desktop root: %w", err)
	}
	defer root.Release()

	s.mu.Lock()
	s.emit = emit
	s.walker = walker
	s.mu.Unlock()

	if err := s.register(client, root); err != nil {
		client.RemoveAllEventHandlers()
		s.detach()
		return err
	}
	s.logger.Info("accessibility subscriptions registered")

	<-ctx.Done()

	if err := client.RemoveAllEventHandlers(); err != nil {
		s.logger.Warn("removing event handlers failed", "error", err)
	}
	s.detach()
	return ctx.Err()
}

func (s *SystemSource) register(client *automationClient, root *automationElement) error {
	focus := newComHandler(iidFocusChangedHandler, focusVtbl, s)
	invoke := newComHandler(iidAutomationEventHandler, automationEventVtbl, s)
	structure := newComHandler(iidStructureChangedHandler, structureVtbl, s)
	property := newComHandler(iidPropertyChangedHandler, propertyVtbl, s)

	// Hold Go references for as long as native code holds the pointers.
	s.mu.Lock()
	s.handlers = []*comHandler{focus, invoke, structure, property}
	s.mu.Unlock()

	if err := client.AddFocusChangedEventHandler(focus); err != nil {
		return fmt.Errorf("subscribe focus events: %w", err)
	}
	if err := client.AddAutomationEventHandler(invokedEventID, root, invoke); err != nil {
		return fmt.Errorf("subscribe invoke events: %w", err)
	}
	if err := client.AddStructureChangedEventHandler(root, structure); err != nil {
		return fmt.Errorf("subscribe structure events: %w", err)
	}
	props := []int32{namePropertyID, isOffscreenPropertyID}
	if err := client.AddPropertyChangedEventHandlerNativeArray(root, property, props); err != nil {
		return fmt.Errorf("subscribe property events: %w", err)
	}
	return nil
}

func (s *SystemSource) detach() {
	s.mu.Lock()
	s.emit = nil
	s.walker = nil
	s.handlers = nil
	s.mu.Unlock()
}

func (s *SystemSource) active() (func(RawEvent) error, *automationTreeWalker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emit, s.walker
}

func (s *SystemSource) send(emit func(RawEvent) error, ev RawEvent) {
	if err := emit(ev); err != nil {
		s.logger.Debug("event delivery failed", "error", err)
	}
}

func (s *SystemSource) onFocusChanged(sender *automationElement) {
	emit, walker := s.active()
	if emit == nil {
		return
	}
	s.send(emit, RawEvent{Type: record.EventFocus, Element: wrapElement(sender, walker)})
}

func (s *SystemSource) onAutomationEvent(sender *automationElement, eventID int32) {
	if uint32(eventID) != invokedEventID {
		return
	}
	emit, walker := s.active()
	if emit == nil {
		return
	}
	s.send(emit, RawEvent{Type: record.EventInvoke, Element: wrapElement(sender, walker)})
}

func (s *SystemSource) onStructureChanged(sender *automationElement, changeType int32) {
	emit, walker := s.active()
	if emit == nil {
		return
	}
	s.send(emit, RawEvent{
		Type:    record.EventStructureChanged,
		Element: wrapElement(sender, walker),
		Kind:    structureKind(changeType),
	})
}

func (s *SystemSource) onPropertyChanged(sender *automationElement, propertyID int32, value *ole.VARIANT) {
	emit, walker := s.active()
	if emit == nil {
		return
	}
	var v any
	if value != nil {
		v = value.Value()
	}
	s.send(emit, RawEvent{
		Type:     record.EventPropertyChanged,
		Element:  wrapElement(sender, walker),
		Property: propertyName(propertyID),
		Value:    v,
	})
}

// comHandler is a minimal COM object serving one of the UI Automation
// handler interfaces. Each of those interfaces adds a single method on top
// of IUnknown, so one layout with interchangeable vtables covers all four.
type comHandler struct {
	vtbl *comHandlerVtbl
	iid  *ole.GUID
	ref  int32
	src  *SystemSource
}

type comHandlerVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	handle         uintptr
}

func newComHandler(iid *ole.GUID, vtbl *comHandlerVtbl, src *SystemSource) *comHandler {
	return &comHandler{vtbl: vtbl, iid: iid, ref: 1, src: src}
}

var (
	focusVtbl           *comHandlerVtbl
	automationEventVtbl *comHandlerVtbl
	structureVtbl       *comHandlerVtbl
	propertyVtbl        *comHandlerVtbl
)

func init() {
	qi := syscall.NewCallback(handlerQueryInterface)
	addRef := syscall.NewCallback(handlerAddRef)
	release := syscall.NewCallback(handlerRelease)

	focusVtbl = &comHandlerVtbl{qi, addRef, release, syscall.NewCallback(handleFocusChanged)}
	automationEventVtbl = &comHandlerVtbl{qi, addRef, release, syscall.NewCallback(handleAutomationEvent)}
	structureVtbl = &comHandlerVtbl{qi, addRef, release, syscall.NewCallback(handleStructureChanged)}
	propertyVtbl = &comHandlerVtbl{qi, addRef, release, syscall.NewCallback(handlePropertyChanged)}
}

func handlerQueryInterface(this *comHandler, riid *ole.GUID, ppv *unsafe.Pointer) uintptr {
	if ppv == nil {
		return hrEPointer
	}
	if riid != nil && (ole.IsEqualGUID(riid, ole.IID_IUnknown) || ole.IsEqualGUID(riid, this.iid)) {
		atomic.AddInt32(&this.ref, 1)
		*ppv = unsafe.Pointer(this)
		return hrSOK
	}
	*ppv = nil
	return hrENoInterface
}

func handlerAddRef(this *comHandler) uintptr {
	return uintptr(atomic.AddInt32(&this.ref, 1))
}

// handlerRelease only tracks the count; the garbage collector reclaims the
// object once the source drops its reference after deregistration.
func handlerRelease(this *comHandler) uintptr {
	n := atomic.AddInt32(&this.ref, -1)
	if n < 0 {
		n = 0
	}
	return uintptr(n)
}

func handleFocusChanged(this *comHandler, sender *automationElement) uintptr {
	this.src.onFocusChanged(sender)
	return hrSOK
}

func handleAutomationEvent(this *comHandler, sender *automationElement, eventID int32) uintptr {
	this.src.onAutomationEvent(sender, eventID)
	return hrSOK
}

// The runtime id safearray is unused but its slot is part of the call.
func handleStructureChanged(this *comHandler, sender *automationElement, changeType int32, runtimeID uintptr) uintptr {
	this.src.onStructureChanged(sender, changeType)
	return hrSOK
}

// VARIANT arguments arrive by reference under the x64 convention.
func handlePropertyChanged(this *comHandler, sender *automationElement, propertyID int32, value *ole.VARIANT) uintptr {
	this.src.onPropertyChanged(sender, propertyID, value)
	return hrSOK
}
