package tracker

import (
	"errors"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// ErrInitFailed is returned when a tracker could not be initialised on the
// given frame and box
var ErrInitFailed = errors.New("tracker initialisation failed")

// CVTracker adapts an OpenCV tracker to the annotrack.Tracker interface
type CVTracker struct {
	t gocv.Tracker
}

// NewMIL returns a Multiple Instance Learning tracker
func NewMIL() *CVTracker {
	return &CVTracker{t: gocv.NewTrackerMIL()}
}

// NewKCF returns a Kernelized Correlation Filter tracker
func NewKCF() *CVTracker {
	return &CVTracker{t: contrib.NewTrackerKCF()}
}

// NewCSRT returns a Discriminative Correlation Filter tracker with Channel
// and Spatial Reliability
func NewCSRT() *CVTracker {
	return &CVTracker{t: contrib.NewTrackerCSRT()}
}

// Init starts tracking box on frame
func (c *CVTracker) Init(frame gocv.Mat, box annotrack.Box) error {

	if box.Empty() {
		return ErrEmptyBox
	}

	if !c.t.Init(frame, box.Rect()) {
		return ErrInitFailed
	}

	return nil
}

// Update advances the tracker to frame
func (c *CVTracker) Update(frame gocv.Mat) (annotrack.Box, bool) {

	rect, ok := c.t.Update(frame)

	if !ok || rect.Empty() {
		return annotrack.Box{}, false
	}

	return annotrack.BoxFromRect(rect), true
}

// Close releases the OpenCV tracker
func (c *CVTracker) Close() error {
	return c.t.Close()
}
