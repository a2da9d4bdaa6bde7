package compose

import (
	"fmt"

	"github.com/bnema/wallmon/internal/video"
)

// ToBGRA converts a decoded frame into the top-down 32-bit BGRA layout the
// composition context expects. Decoders normally hand over 3-channel BGR;
// 4-channel input is passed through untouched.
func ToBGRA(frame video.Frame) ([]byte, error) {
	n := frame.Width * frame.Height

	switch frame.Channels {
	case 4:
		if len(frame.Pix) < n*4 {
			return nil, fmt.Errorf("short BGRA frame: have %d bytes, want %d", len(frame.Pix), n*4)
		}
		return frame.Pix, nil
	case 3:
		if len(frame.Pix) < n*3 {
			return nil, fmt.Errorf("short BGR frame: have %d bytes, want %d", len(frame.Pix), n*3)
		}
		out := make([]byte, n*4)
		for i := 0; i < n; i++ {
			out[i*4] = frame.Pix[i*3]
			out[i*4+1] = frame.Pix[i*3+1]
			out[i*4+2] = frame.Pix[i*3+2]
			out[i*4+3] = 0xff
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d", frame.Channels)
	}
}
