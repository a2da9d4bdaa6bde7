//go:build windows

package compose

import (
	"errors"
	"fmt"
	"image/color"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/bnema/wallmon/internal/video"
)

var (
	gdi32             = syscall.NewLazyDLL("gdi32.dll")
	user32            = syscall.NewLazyDLL("user32.dll")
	procStretchDIBits = gdi32.NewProc("StretchDIBits")
	procFillRect      = user32.NewProc("FillRect")
)

// ErrPresent implies the composite copy to the desktop failed. Transient;
// the playback loop logs it and carries on.
var ErrPresent = errors.New("present to desktop window failed")

// gdiSurface backs the composition with a GDI memory DC and a bitmap sized
// to the virtual-desktop bounding box. Handles are acquired in dependency
// order (window DC, memory DC, bitmap) and released strictly in reverse.
type gdiSurface struct {
	hwnd      win.HWND
	windowDC  win.HDC
	memDC     win.HDC
	bitmap    win.HBITMAP
	oldBitmap win.HGDIOBJ
	width     int32
	height    int32
	released  bool
}

// NewGDI creates a composition surface compatible with the target window's
// device context. It is the Factory used on Windows.
func NewGDI(target uintptr, width, height int32) (Surface, error) {
	hwnd := win.HWND(target)

	windowDC := win.GetDC(hwnd)
	if windowDC == 0 {
		return nil, errors.New("GetDC on desktop window failed")
	}

	memDC := win.CreateCompatibleDC(windowDC)
	if memDC == 0 {
		win.ReleaseDC(hwnd, windowDC)
		return nil, errors.New("CreateCompatibleDC failed")
	}

	bitmap := win.CreateCompatibleBitmap(windowDC, width, height)
	if bitmap == 0 {
		win.DeleteDC(memDC)
		win.ReleaseDC(hwnd, windowDC)
		return nil, fmt.Errorf("CreateCompatibleBitmap %dx%d failed", width, height)
	}

	old := win.SelectObject(memDC, win.HGDIOBJ(bitmap))

	return &gdiSurface{
		hwnd:      hwnd,
		windowDC:  windowDC,
		memDC:     memDC,
		bitmap:    bitmap,
		oldBitmap: old,
		width:     width,
		height:    height,
	}, nil
}

func (s *gdiSurface) Clear(c color.RGBA) {
	if s.released {
		return
	}
	brush := win.CreateSolidBrush(win.RGB(c.R, c.G, c.B))
	rect := win.RECT{Left: 0, Top: 0, Right: s.width, Bottom: s.height}
	procFillRect.Call(uintptr(s.memDC), uintptr(unsafe.Pointer(&rect)), uintptr(brush))
	win.DeleteObject(win.HGDIOBJ(brush))
}

func (s *gdiSurface) Blit(frame video.Frame, dst Rect) error {
	if s.released {
		return ErrReleased
	}

	pix, err := ToBGRA(frame)
	if err != nil {
		return err
	}

	bmi := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(frame.Width),
			BiHeight:      -int32(frame.Height), // negative: top-down rows
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
			BiSizeImage:   uint32(frame.Width * frame.Height * 4),
		},
	}

	ret, _, _ := procStretchDIBits.Call(
		uintptr(s.memDC),
		uintptr(dst.X), uintptr(dst.Y),
		uintptr(dst.Width), uintptr(dst.Height),
		0, 0,
		uintptr(int32(frame.Width)), uintptr(int32(frame.Height)),
		uintptr(unsafe.Pointer(&pix[0])),
		uintptr(unsafe.Pointer(&bmi)),
		win.DIB_RGB_COLORS,
		win.SRCCOPY,
	)
	// Zero scan lines or GDI_ERROR (-1) both signal failure.
	if ret == 0 || int32(ret) == -1 {
		return fmt.Errorf("StretchDIBits into %dx%d at %d,%d failed", dst.Width, dst.Height, dst.X, dst.Y)
	}
	return nil
}

func (s *gdiSurface) Present() error {
	if s.released {
		return ErrReleased
	}
	if !win.BitBlt(s.windowDC, 0, 0, s.width, s.height, s.memDC, 0, 0, win.SRCCOPY) {
		return ErrPresent
	}
	return nil
}

func (s *gdiSurface) Release() {
	if s.released {
		return
	}
	s.released = true

	win.SelectObject(s.memDC, s.oldBitmap)
	win.DeleteObject(win.HGDIOBJ(s.bitmap))
	win.DeleteDC(s.memDC)
	win.ReleaseDC(s.hwnd, s.windowDC)
}
