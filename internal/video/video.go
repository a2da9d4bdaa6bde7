// Package video decodes looping video files into raw frames.
package video

import (
	"errors"
	"sync"
)

// ErrEndOfStream implies the decoder ran past the last frame. Sources
// recover by rewinding; callers only see it when even the rewound read fails.
var ErrEndOfStream = errors.New("end of video stream")

// Frame is one decoded picture. Pix is tightly packed, top-down, with
// Channels bytes per pixel (3 = BGR as delivered by the decoder, 4 = BGRA).
type Frame struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// Decoder abstracts frame-by-frame access to one video file.
type Decoder interface {
	// ReadFrame decodes the next frame. Returns ErrEndOfStream when the
	// file is exhausted.
	ReadFrame() (Frame, error)

	// Rewind seeks back to the first frame.
	Rewind() error

	// FPS reports the stream's intrinsic frame rate.
	FPS() float64

	// Close releases decoder resources.
	Close() error
}

// OpenFunc opens a decoder for a video file path.
type OpenFunc func(path string) (Decoder, error)

// Source wraps a Decoder with loop-on-end playback semantics.
type Source struct {
	dec       Decoder
	closeOnce sync.Once
}

// NewSource wraps an open decoder.
func NewSource(dec Decoder) *Source {
	return &Source{dec: dec}
}

// NextFrame reads one frame, looping back to the start of the stream when it
// ends. The rewound read is retried exactly once; if it fails too, the error
// is returned and the source stays open for the next attempt.
func (s *Source) NextFrame() (Frame, error) {
	frame, err := s.dec.ReadFrame()
	if err == nil {
		return frame, nil
	}
	if !errors.Is(err, ErrEndOfStream) {
		return Frame{}, err
	}

	if err := s.dec.Rewind(); err != nil {
		return Frame{}, err
	}
	return s.dec.ReadFrame()
}

// FPS reports the underlying stream's intrinsic rate.
func (s *Source) FPS() float64 {
	return s.dec.FPS()
}

// Close releases the decoder. Safe to call more than once; only the first
// call reaches the decoder.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.dec.Close()
	})
	return err
}
