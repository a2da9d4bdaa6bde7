// Package player drives the playback session: one rendering goroutine that
// composes every assigned video onto the desktop background once per tick.
package player

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/bnema/wallmon/internal/compose"
	"github.com/bnema/wallmon/internal/desktop"
	"github.com/bnema/wallmon/internal/display"
	"github.com/bnema/wallmon/internal/logger"
	"github.com/bnema/wallmon/internal/video"
)

var (
	// ErrAlreadyRunning implies Start was called on a running session.
	ErrAlreadyRunning = errors.New("playback session already running")

	// ErrNoPlayableAssignments implies no configured video could be opened
	// for any connected monitor. The session stays stopped.
	ErrNoPlayableAssignments = errors.New("no playable monitor assignments")
)

// DefaultRate is the tick rate used when an assignment carries none.
const DefaultRate = 30

// Assignment maps one monitor to a video file and a target frame rate. The
// slice handed to Start is a snapshot; edits made while running take effect
// on the next stop/start cycle.
type Assignment struct {
	MonitorID string
	VideoPath string
	FPS       int
}

// boundSource is an open source tied to its monitor's surface rectangle.
type boundSource struct {
	src *video.Source
	dst compose.Rect
	fps int
}

// Player owns the playback state machine. Two states: stopped and running.
// All rendering happens on a single dedicated goroutine; the collaborator
// talks to it only through Start, Stop and the report channels.
type Player struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	errs  chan string
	rates chan float64

	// Collaborators, swappable in tests.
	enumerate  func() ([]display.Monitor, error)
	locate     func() (uintptr, error)
	newSurface compose.Factory
	open       video.OpenFunc
}

// New creates a stopped player wired to the platform backends.
func New() *Player {
	return &Player{
		errs:       make(chan string, 16),
		rates:      make(chan float64, 16),
		enumerate:  display.Enumerate,
		locate:     desktop.FindWorkerW,
		newSurface: compose.NewDefault,
		open:       video.Open,
	}
}

// Errors delivers non-fatal failure reports (per-source open errors,
// present failures). Messages are dropped when nobody drains the channel.
func (p *Player) Errors() <-chan string {
	return p.errs
}

// Rates delivers frame-rate observations: each source's native rate at open
// time, then the live tick rate roughly once per second.
func (p *Player) Rates() <-chan float64 {
	return p.rates
}

// IsRunning reports whether a session is active.
func (p *Player) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start opens every playable assignment, locates the desktop render target,
// builds the composition surface and launches the rendering goroutine.
// Assignments for unknown monitors or unopenable files are reported and
// skipped; only a desktop lookup failure or an empty playable set is fatal.
func (p *Player) Start(assignments []Assignment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	monitors, err := p.enumerate()
	if err != nil {
		return fmt.Errorf("enumerate monitors: %w", err)
	}
	origin, width, height := display.VirtualBounds(monitors)

	byID := func(id string) *display.Monitor {
		for i := range monitors {
			if strings.EqualFold(monitors[i].ID, id) {
				return &monitors[i]
			}
		}
		return nil
	}

	var sources []*boundSource
	closeAll := func() {
		for _, s := range sources {
			if cerr := s.src.Close(); cerr != nil {
				logger.Warnf("player: closing source: %v", cerr)
			}
		}
	}

	for _, a := range assignments {
		if a.VideoPath == "" {
			continue
		}

		mon := byID(a.MonitorID)
		if mon == nil {
			p.report(fmt.Sprintf("monitor %s is not connected, skipping its wallpaper", a.MonitorID))
			continue
		}

		dec, err := p.open(a.VideoPath)
		if err != nil {
			p.report(fmt.Sprintf("could not open video %s: %v", a.VideoPath, err))
			continue
		}

		src := video.NewSource(dec)
		p.emitRate(src.FPS())

		fps := a.FPS
		if fps <= 0 {
			fps = DefaultRate
		}

		sources = append(sources, &boundSource{
			src: src,
			dst: compose.Rect{
				X:      mon.X - origin.X,
				Y:      mon.Y - origin.Y,
				Width:  mon.Width,
				Height: mon.Height,
			},
			fps: fps,
		})
	}

	if len(sources) == 0 {
		p.report(ErrNoPlayableAssignments.Error())
		return ErrNoPlayableAssignments
	}

	target, err := p.locate()
	if err != nil {
		closeAll()
		p.report(fmt.Sprintf("locating desktop background window: %v", err))
		return fmt.Errorf("locate desktop background window: %w", err)
	}

	surface, err := p.newSurface(target, width, height)
	if err != nil {
		closeAll()
		p.report(fmt.Sprintf("creating composition surface: %v", err))
		return fmt.Errorf("create %dx%d composition surface: %w", width, height, err)
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.running = true

	logger.Infof("player: session started with %d source(s) on a %dx%d desktop", len(sources), width, height)
	go p.run(surface, sources, p.stop, p.done)
	return nil
}

// Stop requests the rendering goroutine to finish its current tick and
// blocks until every owned resource is released. No-op when stopped.
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	<-done
	logger.Info("player: session stopped")
}

// run is the rendering goroutine: clear, draw every source at its monitor
// offset, present, pace. Owns the surface and sources until it exits.
func (p *Player) run(surface compose.Surface, sources []*boundSource, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		for _, s := range sources {
			if err := s.src.Close(); err != nil {
				logger.Warnf("player: closing source: %v", err)
			}
		}
		surface.Release()
	}()

	black := color.RGBA{A: 0xff}
	// One shared pacing rate, overwritten by each source as it is processed;
	// the last monitor in the iteration wins the tick.
	rate := sources[len(sources)-1].fps
	lastReport := time.Now()

	for {
		select {
		case <-stop:
			return
		default:
		}

		surface.Clear(black)

		for _, s := range sources {
			frame, err := s.src.NextFrame()
			if err != nil {
				// Skip this tick only; the source stays open and is
				// retried on the next one.
				logger.Debugf("player: frame read failed: %v", err)
				continue
			}
			if err := surface.Blit(frame, s.dst); err != nil {
				p.report(fmt.Sprintf("drawing frame: %v", err))
				continue
			}
			rate = s.fps
		}

		if err := surface.Present(); err != nil {
			p.report(fmt.Sprintf("presenting composite: %v", err))
		}

		if time.Since(lastReport) >= time.Second {
			p.emitRate(float64(rate))
			lastReport = time.Now()
		}

		select {
		case <-stop:
			return
		case <-time.After(time.Second / time.Duration(rate)):
		}
	}
}

func (p *Player) report(msg string) {
	logger.Warn("player: " + msg)
	select {
	case p.errs <- msg:
	default:
	}
}

func (p *Player) emitRate(rate float64) {
	select {
	case p.rates <- rate:
	default:
	}
}
