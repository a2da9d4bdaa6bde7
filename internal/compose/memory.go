package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"

	"github.com/nfnt/resize"

	"github.com/bnema/wallmon/internal/video"
)

// liveMemorySurfaces counts created-but-not-released in-memory surfaces.
var liveMemorySurfaces int64

// LiveMemorySurfaces reports how many in-memory surfaces are currently held.
// Leak tests assert this returns to zero after repeated start/stop cycles.
func LiveMemorySurfaces() int64 {
	return atomic.LoadInt64(&liveMemorySurfaces)
}

// MemorySurface is a pure-Go composition surface. It backs tests everywhere
// and is the only surface available off Windows. Presenting is a no-op
// beyond bookkeeping since there is no desktop to draw on.
type MemorySurface struct {
	img      *image.RGBA
	released bool
	presents int
}

// NewMemory creates an in-memory surface. The target handle is ignored.
// Matches the Factory signature.
func NewMemory(_ uintptr, width, height int32) (Surface, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	atomic.AddInt64(&liveMemorySurfaces, 1)
	return &MemorySurface{
		img: image.NewRGBA(image.Rect(0, 0, int(width), int(height))),
	}, nil
}

func (s *MemorySurface) Clear(c color.RGBA) {
	if s.released {
		return
	}
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (s *MemorySurface) Blit(frame video.Frame, dst Rect) error {
	if s.released {
		return ErrReleased
	}

	src, err := frameToRGBA(frame)
	if err != nil {
		return err
	}

	scaled := resize.Resize(uint(dst.Width), uint(dst.Height), src, resize.Bilinear)
	target := image.Rect(int(dst.X), int(dst.Y), int(dst.X+dst.Width), int(dst.Y+dst.Height))
	draw.Draw(s.img, target, scaled, image.Point{}, draw.Src)
	return nil
}

func (s *MemorySurface) Present() error {
	if s.released {
		return ErrReleased
	}
	s.presents++
	return nil
}

func (s *MemorySurface) Release() {
	if s.released {
		return
	}
	s.released = true
	atomic.AddInt64(&liveMemorySurfaces, -1)
}

// At exposes a composed pixel for test assertions.
func (s *MemorySurface) At(x, y int) color.RGBA {
	return s.img.RGBAAt(x, y)
}

// Presents reports how many composites were presented.
func (s *MemorySurface) Presents() int {
	return s.presents
}

// frameToRGBA reinterprets a decoded frame as an image.RGBA. The BGRA byte
// order is swapped so test assertions can use plain color literals.
func frameToRGBA(frame video.Frame) (*image.RGBA, error) {
	bgra, err := ToBGRA(frame)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for i := 0; i < frame.Width*frame.Height; i++ {
		img.Pix[i*4] = bgra[i*4+2]
		img.Pix[i*4+1] = bgra[i*4+1]
		img.Pix[i*4+2] = bgra[i*4]
		img.Pix[i*4+3] = bgra[i*4+3]
	}
	return img, nil
}
