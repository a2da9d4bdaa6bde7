//go:build windows

package desktop

import (
	"syscall"
	"unsafe"
)

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procFindWindowExW       = user32.NewProc("FindWindowExW")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
	procGetClassNameW       = user32.NewProc("GetClassNameW")
)

const (
	// Undocumented Progman message that makes the shell spawn the WorkerW
	// sibling that hosts the wallpaper. Lazy on Win8+, so it must be sent
	// before enumerating.
	msgSpawnWorkerW = 0x052C

	smtoNormal = 0x0000
)

func utf16Ptr(s string) *uint16 {
	p, _ := syscall.UTF16PtrFromString(s)
	return p
}

func className(hwnd uintptr) string {
	var buf [256]uint16
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}

func findWindowEx(parent, after uintptr, class string) uintptr {
	ret, _, _ := procFindWindowExW.Call(
		parent,
		after,
		uintptr(unsafe.Pointer(utf16Ptr(class))),
		0,
	)
	return ret
}

// The runtime never frees NewCallback allocations and caps them per process,
// so the callback is created once; the found handle travels via lparam.
var workerWCallback = syscall.NewCallback(func(hwnd, lparam uintptr) uintptr {
	out := (*uintptr)(unsafe.Pointer(lparam))
	if className(hwnd) != "WorkerW" {
		return 1
	}
	if findWindowEx(hwnd, 0, "SHELLDLL_DefView") == 0 {
		return 1
	}
	// Render target is the WorkerW right after this one in z-order.
	if sibling := findWindowEx(0, hwnd, "WorkerW"); sibling != 0 {
		*out = sibling
	} else {
		*out = hwnd
	}
	return 0 // stop enumeration
})

// FindWorkerW returns the window the shell uses to paint the desktop
// background. The hunt: poke Progman so the WorkerW pair exists, then walk
// the top-level windows for the WorkerW holding the SHELLDLL_DefView icon
// view. The actual render target is usually the next WorkerW sibling, but on
// shell versions without the split the icon-view holder itself is the one,
// so both are checked.
func FindWorkerW() (uintptr, error) {
	progman, _, _ := procFindWindowW.Call(
		uintptr(unsafe.Pointer(utf16Ptr("Progman"))),
		0,
	)
	if progman == 0 {
		return 0, ErrDesktopNotFound
	}

	var result uintptr
	procSendMessageTimeoutW.Call(progman, msgSpawnWorkerW, 0, 0,
		smtoNormal, 1000, uintptr(unsafe.Pointer(&result)))

	var workerw uintptr
	procEnumWindows.Call(workerWCallback, uintptr(unsafe.Pointer(&workerw)))

	if workerw == 0 {
		// Win11 22H2+ parents the icon view directly under Progman.
		if findWindowEx(progman, 0, "SHELLDLL_DefView") != 0 {
			return progman, nil
		}
		return 0, ErrDesktopNotFound
	}
	return workerw, nil
}
