//go:build windows

package display

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
)

// monitorInfoExW is MONITORINFOEXW; win.MONITORINFO lacks the device name.
type monitorInfoExW struct {
	Size    uint32
	Monitor win.RECT
	Work    win.RECT
	Flags   uint32
	Device  [win.CCHDEVICENAME]uint16
}

// The runtime never frees NewCallback allocations and caps them per process,
// so the callback is created once and the result slice travels via lparam.
var enumMonitorsCallback = syscall.NewCallback(func(hMonitor, hdc uintptr, rect *win.RECT, lparam uintptr) uintptr {
	monitors := (*[]Monitor)(unsafe.Pointer(lparam))

	var mi monitorInfoExW
	mi.Size = uint32(unsafe.Sizeof(mi))

	ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&mi)))
	if ret != 0 {
		*monitors = append(*monitors, Monitor{
			ID:      syscall.UTF16ToString(mi.Device[:]),
			X:       mi.Monitor.Left,
			Y:       mi.Monitor.Top,
			Width:   mi.Monitor.Right - mi.Monitor.Left,
			Height:  mi.Monitor.Bottom - mi.Monitor.Top,
			Primary: mi.Flags&win.MONITORINFOF_PRIMARY != 0,
		})
	}
	return 1 // continue enumeration
})

// Enumerate returns every active display with its virtual-desktop rectangle,
// primary flag and device name.
func Enumerate() ([]Monitor, error) {
	var monitors []Monitor

	ret, _, err := procEnumDisplayMonitors.Call(0, 0, enumMonitorsCallback, uintptr(unsafe.Pointer(&monitors)))
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed: %w", err)
	}
	return monitors, nil
}
