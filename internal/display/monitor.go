// Package display handles monitor detection and virtual-desktop geometry
package display

import (
	"errors"
	"strings"

	"github.com/bnema/wallmon/internal/logger"
)

// ErrUnsupported is returned by Enumerate on platforms without a display backend.
var ErrUnsupported = errors.New("display enumeration not supported on this platform")

// Monitor represents a physical display
type Monitor struct {
	ID      string // Device name, e.g. `\\.\DISPLAY1`
	X       int32  // Position in virtual-desktop coordinate space
	Y       int32
	Width   int32
	Height  int32
	Primary bool
}

// Bounds returns the monitor's boundaries
func (m *Monitor) Bounds() (x1, y1, x2, y2 int32) {
	return m.X, m.Y, m.X + m.Width, m.Y + m.Height
}

// Contains checks if a point is within this monitor
func (m *Monitor) Contains(x, y int32) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// Point is a position in virtual-desktop coordinates.
type Point struct {
	X int32
	Y int32
}

// VirtualBounds returns the origin and size of the smallest rectangle
// covering all monitors. The origin translates monitor coordinates into
// composition-surface coordinates (which start at 0,0). An empty monitor
// set yields a degenerate zero-size box.
func VirtualBounds(monitors []Monitor) (origin Point, width, height int32) {
	if len(monitors) == 0 {
		return Point{}, 0, 0
	}

	minX, minY := monitors[0].X, monitors[0].Y
	maxX, maxY := monitors[0].X+monitors[0].Width, monitors[0].Y+monitors[0].Height
	for _, m := range monitors[1:] {
		if m.X < minX {
			minX = m.X
		}
		if m.Y < minY {
			minY = m.Y
		}
		if m.X+m.Width > maxX {
			maxX = m.X + m.Width
		}
		if m.Y+m.Height > maxY {
			maxY = m.Y + m.Height
		}
	}

	return Point{X: minX, Y: minY}, maxX - minX, maxY - minY
}

// Display manages the monitor set enumerated for one session
type Display struct {
	monitors []Monitor
}

// New enumerates the active monitors once. The set is immutable for the
// lifetime of the Display; callers re-create it to pick up topology changes.
func New() (*Display, error) {
	monitors, err := Enumerate()
	if err != nil {
		return nil, err
	}

	for i, m := range monitors {
		logger.Debugf("display: monitor %d: %s (%dx%d at %d,%d) primary=%v",
			i+1, m.ID, m.Width, m.Height, m.X, m.Y, m.Primary)
	}

	return &Display{monitors: monitors}, nil
}

// GetMonitors returns all detected monitors
func (d *Display) GetMonitors() []Monitor {
	return d.monitors
}

// GetPrimaryMonitor returns the primary monitor
func (d *Display) GetPrimaryMonitor() *Monitor {
	for i := range d.monitors {
		if d.monitors[i].Primary {
			return &d.monitors[i]
		}
	}
	// Fallback to first monitor
	if len(d.monitors) > 0 {
		return &d.monitors[0]
	}
	return nil
}

// ByID returns the monitor with the given device name. The match is
// case-insensitive because persisted assignment keys lose their case on
// the way through the config layer.
func (d *Display) ByID(id string) *Monitor {
	for i := range d.monitors {
		if strings.EqualFold(d.monitors[i].ID, id) {
			return &d.monitors[i]
		}
	}
	return nil
}
