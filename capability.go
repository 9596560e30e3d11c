package annotrack

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Tracker is a single object tracker.  It is initialised on a frame with the
// object's box and then reports the object's updated box on each following
// frame until it loses the object.
type Tracker interface {
	// Init starts tracking the object at box on the given frame
	Init(frame gocv.Mat, box Box) error
	// Update advances the tracker to the given frame and returns the new box,
	// or false if the object was lost
	Update(frame gocv.Mat) (Box, bool)
	// Close releases resources held by the tracker
	Close() error
}

// TrackerFactory constructs new trackers by algorithm kind name
type TrackerFactory interface {
	// Validate returns an error if trackers of the kind can not be created
	Validate(kind string) error
	// New creates a tracker of the given kind
	New(kind string) (Tracker, error)
}

// Detection is a single detector result in (x1, y1, x2, y2) format with its
// confidence score
type Detection struct {
	X1, Y1, X2, Y2 float64
	Score          float64
}

// Tuple returns the detection as a (x1, y1, x2, y2, score) 5-tuple
func (d Detection) Tuple() []float64 {
	return []float64{d.X1, d.Y1, d.X2, d.Y2, d.Score}
}

// Detector finds candidate object boxes in a frame.  Frames passed to Detect
// are in RGB channel order.
type Detector interface {
	Detect(frame gocv.Mat) ([]Detection, error)
}

// View is the tracking state of a frame passed to the Operator for display
type View struct {
	// FrameIndex is the absolute frame index
	FrameIndex int
	// Session is the zero based session number
	Session int
	// Boxes are the boxes recorded for this frame
	Boxes Frame
	// Identities is the number of identity slots in the session
	Identities int
	// Colors are the display colors per identity slot
	Colors []color.RGBA
	// Reseeded is true when the session was seeded on this frame
	Reseeded bool
}

// Operator is the interactive user driving the annotation
type Operator interface {
	// SelectBox blocks while the operator draws a box on the frame, an empty
	// box is returned if the selection was cancelled
	SelectBox(frame gocv.Mat) Box
	// WaitKey waits up to delay milliseconds for a key press, a delay of
	// zero waits forever.  Returns -1 if no key was pressed.
	WaitKey(delay int) int
	// Show displays the frame with the tracking state
	Show(frame gocv.Mat, view View)
}

// FrameSource provides decoded video frames in order
type FrameSource interface {
	// Read decodes the next frame into dst, returning false when the stream
	// is exhausted or the frame could not be decoded
	Read(dst *gocv.Mat) bool
}
