// Package compose builds the off-screen image of the whole virtual desktop
// and presents it to the desktop background in one blit.
package compose

import (
	"errors"
	"image/color"

	"github.com/bnema/wallmon/internal/video"
)

// ErrReleased implies the surface was used after Release.
var ErrReleased = errors.New("composition surface already released")

// Rect is a destination rectangle in surface-local coordinates.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// Surface is one generation of the composition buffer. It is owned by a
// single playback session: created at start, released at stop, never shared.
type Surface interface {
	// Clear fills the whole surface with a solid color. Runs once per tick
	// so frames smaller than their monitor don't leave stale pixels behind.
	Clear(c color.RGBA)

	// Blit stretches a decoded frame into dst, converting to the surface's
	// 32-bit layout as needed. Pixels outside dst are untouched.
	Blit(frame video.Frame, dst Rect) error

	// Present copies the full surface onto the target window in one
	// operation. The desktop never sees a partially drawn composite.
	Present() error

	// Release frees every OS resource behind the surface. Must be called
	// exactly once per created surface; calls after the first are no-ops.
	Release()
}

// Factory creates a surface bound to a target window handle. The playback
// loop takes one of these so tests can substitute a counting in-memory
// implementation.
type Factory func(target uintptr, width, height int32) (Surface, error)
