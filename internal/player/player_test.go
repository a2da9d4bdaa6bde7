package player

import (
	"errors"
	"fmt"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wallmon/internal/compose"
	"github.com/bnema/wallmon/internal/display"
	"github.com/bnema/wallmon/internal/video"
)

// harness wires a Player to counting fakes.
type harness struct {
	player   *Player
	monitors []display.Monitor

	mu         sync.Mutex
	created    int
	released   int
	presents   int
	blits      []compose.Rect
	opens      int
	closes     int
	surfaces   []*fakeSurface
	openFails  map[string]bool
	presentErr error
}

type fakeSurface struct {
	h        *harness
	released bool
}

func (s *fakeSurface) Clear(color.RGBA) {}

func (s *fakeSurface) Blit(_ video.Frame, dst compose.Rect) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	s.h.blits = append(s.h.blits, dst)
	return nil
}

func (s *fakeSurface) Present() error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	s.h.presents++
	return s.h.presentErr
}

func (s *fakeSurface) Release() {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	if !s.released {
		s.released = true
		s.h.released++
	}
}

type endlessDecoder struct {
	h   *harness
	fps float64
}

func (d *endlessDecoder) ReadFrame() (video.Frame, error) {
	return video.Frame{Pix: []byte{1, 2, 3}, Width: 1, Height: 1, Channels: 3}, nil
}

func (d *endlessDecoder) Rewind() error { return nil }

func (d *endlessDecoder) FPS() float64 { return d.fps }

func (d *endlessDecoder) Close() error {
	d.h.mu.Lock()
	defer d.h.mu.Unlock()
	d.h.closes++
	return nil
}

func newHarness() *harness {
	h := &harness{
		monitors: []display.Monitor{
			{ID: `\\.\DISPLAY1`, X: 0, Y: 0, Width: 1920, Height: 1080, Primary: true},
			{ID: `\\.\DISPLAY2`, X: -2560, Y: -360, Width: 2560, Height: 1440},
		},
		openFails: map[string]bool{},
	}

	p := New()
	p.enumerate = func() ([]display.Monitor, error) { return h.monitors, nil }
	p.locate = func() (uintptr, error) { return 0xBEEF, nil }
	p.newSurface = func(_ uintptr, w, hgt int32) (compose.Surface, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.created++
		s := &fakeSurface{h: h}
		h.surfaces = append(h.surfaces, s)
		return s, nil
	}
	p.open = func(path string) (video.Decoder, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.openFails[path] {
			return nil, errors.New("no such codec")
		}
		h.opens++
		return &endlessDecoder{h: h, fps: 23.976}, nil
	}

	h.player = p
	return h
}

func (h *harness) presentCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presents
}

func drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestStartWithoutPlayableAssignmentsFails(t *testing.T) {
	h := newHarness()

	tests := []struct {
		name        string
		assignments []Assignment
	}{
		{name: "nil"},
		{name: "empty paths only", assignments: []Assignment{
			{MonitorID: `\\.\DISPLAY1`, VideoPath: "", FPS: 30},
		}},
		{name: "only stale monitors", assignments: []Assignment{
			{MonitorID: `\\.\DISPLAY7`, VideoPath: "loop.mp4", FPS: 30},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.player.Start(tt.assignments)
			require.ErrorIs(t, err, ErrNoPlayableAssignments)
			assert.False(t, h.player.IsRunning())
			assert.Zero(t, h.created, "no surface may be created for a failed start")
			assert.Zero(t, h.presentCount(), "no tick may run")
			assert.NotEmpty(t, drain(h.player.Errors()), "failure must be reported, not silent")
		})
	}
}

func TestSourceOpenFailureDoesNotBlockOthers(t *testing.T) {
	h := newHarness()
	h.openFails["broken.avi"] = true

	err := h.player.Start([]Assignment{
		{MonitorID: `\\.\DISPLAY1`, VideoPath: "broken.avi", FPS: 30},
		{MonitorID: `\\.\DISPLAY2`, VideoPath: "ocean.mp4", FPS: 60},
	})
	require.NoError(t, err)
	defer h.player.Stop()

	assert.Eventually(t, func() bool { return h.presentCount() > 0 },
		time.Second, 5*time.Millisecond, "the surviving source must render")

	reports := drain(h.player.Errors())
	require.NotEmpty(t, reports)
	assert.Contains(t, reports[0], "broken.avi")
}

func TestBlitUsesBoundingBoxTranslatedRect(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.player.Start([]Assignment{
		{MonitorID: `\\.\DISPLAY1`, VideoPath: "a.mp4", FPS: 120},
		{MonitorID: `\\.\DISPLAY2`, VideoPath: "b.mp4", FPS: 120},
	}))

	assert.Eventually(t, func() bool { return h.presentCount() >= 2 },
		time.Second, 5*time.Millisecond)
	h.player.Stop()

	// Origin is (-2560, -360): DISPLAY1 lands at (2560, 360), DISPLAY2 at (0, 0).
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.blits)
	want := map[compose.Rect]bool{
		{X: 2560, Y: 360, Width: 1920, Height: 1080}: false,
		{X: 0, Y: 0, Width: 2560, Height: 1440}:      false,
	}
	for _, r := range h.blits {
		_, known := want[r]
		require.True(t, known, "unexpected blit rect %+v", r)
		want[r] = true
	}
	for r, seen := range want {
		assert.True(t, seen, "monitor rect %+v never drawn", r)
	}
}

func TestDesktopLookupFailureIsFatal(t *testing.T) {
	h := newHarness()
	h.player.locate = func() (uintptr, error) { return 0, errors.New("WorkerW not found") }

	err := h.player.Start([]Assignment{
		{MonitorID: `\\.\DISPLAY1`, VideoPath: "a.mp4", FPS: 30},
	})
	require.Error(t, err)
	assert.False(t, h.player.IsRunning())

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, h.opens, h.closes, "sources opened before the failure must be closed")
	assert.Zero(t, h.created)
}

func TestStartWhileRunningIsRejected(t *testing.T) {
	h := newHarness()
	a := []Assignment{{MonitorID: `\\.\DISPLAY1`, VideoPath: "a.mp4", FPS: 60}}

	require.NoError(t, h.player.Start(a))
	defer h.player.Stop()

	assert.ErrorIs(t, h.player.Start(a), ErrAlreadyRunning)
}

func TestStopBlocksUntilResourcesReleased(t *testing.T) {
	h := newHarness()
	a := []Assignment{
		{MonitorID: `\\.\DISPLAY1`, VideoPath: "a.mp4", FPS: 120},
		{MonitorID: `\\.\DISPLAY2`, VideoPath: "b.mp4", FPS: 120},
	}

	require.NoError(t, h.player.Start(a))
	assert.Eventually(t, func() bool { return h.presentCount() > 0 },
		time.Second, 5*time.Millisecond)

	h.player.Stop()

	// Immediately after Stop returns, everything from the session is gone.
	h.mu.Lock()
	assert.Equal(t, h.created, h.released)
	assert.Equal(t, h.opens, h.closes)
	h.mu.Unlock()

	// And a fresh start must succeed with a fresh surface generation.
	require.NoError(t, h.player.Start(a))
	h.player.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, 2, h.created)
	assert.Equal(t, 2, h.released)
}

func TestRepeatedStartStopDoesNotLeak(t *testing.T) {
	h := newHarness()
	a := []Assignment{
		{MonitorID: `\\.\DISPLAY1`, VideoPath: "a.mp4", FPS: 120},
		{MonitorID: `\\.\DISPLAY2`, VideoPath: "b.mp4", FPS: 120},
	}

	for i := 0; i < 100; i++ {
		require.NoError(t, h.player.Start(a), "cycle %d", i)
		h.player.Stop()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, 100, h.created)
	assert.Equal(t, h.created, h.released, "every surface create needs a matching release")
	assert.Equal(t, h.opens, h.closes, "every opened decoder needs a matching close")
	for i, s := range h.surfaces {
		assert.True(t, s.released, "surface from cycle %d still held", i)
	}
}

func TestPresentFailureKeepsSessionRunning(t *testing.T) {
	h := newHarness()
	h.presentErr = errors.New("BitBlt failed")

	require.NoError(t, h.player.Start([]Assignment{
		{MonitorID: `\\.\DISPLAY1`, VideoPath: "a.mp4", FPS: 120},
	}))
	defer h.player.Stop()

	// Every present fails, yet the loop must keep ticking.
	assert.Eventually(t, func() bool { return h.presentCount() >= 3 },
		time.Second, 5*time.Millisecond, "session must survive present failures")
	assert.True(t, h.player.IsRunning())

	reports := drain(h.player.Errors())
	require.NotEmpty(t, reports, "present failures must be reported")
	assert.Contains(t, fmt.Sprint(reports), "presenting composite")
}

func TestRateObservations(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.player.Start([]Assignment{
		{MonitorID: `\\.\DISPLAY1`, VideoPath: "a.mp4", FPS: 60},
	}))
	defer h.player.Stop()

	// The native rate is emitted at open time.
	select {
	case rate := <-h.player.Rates():
		assert.InDelta(t, 23.976, rate, 0.001)
	case <-time.After(time.Second):
		t.Fatal("no rate observation at source open")
	}
}

func TestStaleAssignmentSkippedOthersRender(t *testing.T) {
	h := newHarness()

	err := h.player.Start([]Assignment{
		{MonitorID: `\\.\DISPLAY9`, VideoPath: "gone.mp4", FPS: 30},
		{MonitorID: `\\.\display1`, VideoPath: "a.mp4", FPS: 60}, // case differs on purpose
	})
	require.NoError(t, err)
	defer h.player.Stop()

	assert.Eventually(t, func() bool { return h.presentCount() > 0 },
		time.Second, 5*time.Millisecond)

	reports := drain(h.player.Errors())
	require.NotEmpty(t, reports)
	assert.Contains(t, fmt.Sprint(reports), "DISPLAY9")
}
