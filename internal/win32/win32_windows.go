//go:build windows

package win32

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procGetCursorPos             = user32.NewProc("GetCursorPos")
	procGetAsyncKeyState         = user32.NewProc("GetAsyncKeyState")
	procFindWindowW              = user32.NewProc("FindWindowW")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
)

// chromeWindowClass is the top-level window class Chrome has used since
// Chromium 28.
const chromeWindowClass = "Chrome_WidgetWin_1"

const (
	vkLButton = 0x01
	vkRButton = 0x02

	// High bit of GetAsyncKeyState: the key is down at call time.
	keyDownMask = 0x8000
)

// ForegroundProcessID reports the pid owning the foreground window.
func ForegroundProcessID() (int32, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, errors.New("no foreground window")
	}
	var pid uint32
	procGetWindowThreadProcessID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return 0, errors.New("foreground window has no owning process")
	}
	return int32(pid), nil
}

type point struct {
	x, y int32
}

// CursorPos reports the pointer position in screen coordinates.
func CursorPos() (x, y int, err error) {
	var pt point
	ret, _, callErr := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return 0, 0, fmt.Errorf("read cursor position: %w", callErr)
	}
	return int(pt.x), int(pt.y), nil
}

// MouseButtons reports which pointer buttons are held at call time.
func MouseButtons() (left, right bool) {
	l, _, _ := procGetAsyncKeyState.Call(vkLButton)
	r, _, _ := procGetAsyncKeyState.Call(vkRButton)
	return uint16(l)&keyDownMask != 0, uint16(r)&keyDownMask != 0
}

// ChromeWindow locates the top-level Chrome window and returns its current
// title and owning pid.
func ChromeWindow() (title string, pid int32, err error) {
	class, err := windows.UTF16PtrFromString(chromeWindowClass)
	if err != nil {
		return "", 0, err
	}
	hwnd, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(class)), 0)
	if hwnd == 0 {
		return "", 0, errors.New("no chrome window")
	}

	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "", 0, errors.New("chrome window has no title")
	}

	var owner uint32
	procGetWindowThreadProcessID.Call(hwnd, uintptr(unsafe.Pointer(&owner)))
	return windows.UTF16ToString(buf[:n]), int32(owner), nil
}
