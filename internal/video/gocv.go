package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// gocvDecoder reads frames through OpenCV's VideoCapture.
type gocvDecoder struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// Open opens a video file for decoding. The returned decoder yields BGR
// frames at the file's native resolution.
func Open(path string) (Decoder, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("open video %s: capture not opened", path)
	}
	return &gocvDecoder{
		cap: cap,
		mat: gocv.NewMat(),
	}, nil
}

func (d *gocvDecoder) ReadFrame() (Frame, error) {
	if ok := d.cap.Read(&d.mat); !ok || d.mat.Empty() {
		return Frame{}, ErrEndOfStream
	}

	pix, err := d.mat.ToBytes()
	if err != nil {
		return Frame{}, fmt.Errorf("copy frame pixels: %w", err)
	}
	return Frame{
		Pix:      pix,
		Width:    d.mat.Cols(),
		Height:   d.mat.Rows(),
		Channels: d.mat.Channels(),
	}, nil
}

func (d *gocvDecoder) Rewind() error {
	d.cap.Set(gocv.VideoCapturePosFrames, 0)
	return nil
}

func (d *gocvDecoder) FPS() float64 {
	return d.cap.Get(gocv.VideoCaptureFPS)
}

func (d *gocvDecoder) Close() error {
	d.mat.Close()
	return d.cap.Close()
}
