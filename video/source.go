// Package video provides the frame source and the interactive operator
// window used by the annotator
package video

import (
	"fmt"
	"os"
	"strconv"

	"gocv.io/x/gocv"
)

// Source reads decoded frames from a video file or capture device
type Source struct {
	capture *gocv.VideoCapture
	name    string
}

// Open opens the video at path.  A path that is not an existing file but
// parses as an integer is opened as a camera device ID.
func Open(path string) (*Source, error) {

	var capture *gocv.VideoCapture
	var err error

	if _, statErr := os.Stat(path); statErr == nil {
		capture, err = gocv.VideoCaptureFile(path)
	} else if id, convErr := strconv.Atoi(path); convErr == nil {
		capture, err = gocv.VideoCaptureDevice(id)
	} else {
		return nil, fmt.Errorf("error opening video: %w", statErr)
	}

	if err != nil {
		return nil, fmt.Errorf("error opening video %s: %w", path, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("error opening video %s: capture not opened", path)
	}

	return &Source{capture: capture, name: path}, nil
}

// Read decodes the next frame into dst.  Returns false at the end of the
// stream or when the frame could not be decoded.
func (s *Source) Read(dst *gocv.Mat) bool {

	if ok := s.capture.Read(dst); !ok {
		return false
	}

	return !dst.Empty()
}

// Size returns the frame width and height reported by the container
func (s *Source) Size() (int, int) {
	return int(s.capture.Get(gocv.VideoCaptureFrameWidth)),
		int(s.capture.Get(gocv.VideoCaptureFrameHeight))
}

// FrameCount returns the number of frames reported by the container, zero
// for live devices
func (s *Source) FrameCount() int {
	return int(s.capture.Get(gocv.VideoCaptureFrameCount))
}

// FPS returns the frame rate reported by the container
func (s *Source) FPS() float64 {
	return s.capture.Get(gocv.VideoCaptureFPS)
}

// Name returns the path or device the source was opened from
func (s *Source) Name() string {
	return s.name
}

// Close releases the capture handle
func (s *Source) Close() error {
	return s.capture.Close()
}
