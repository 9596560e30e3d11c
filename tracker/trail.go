package tracker

import (
	"github.com/swdee/go-annotrack"
)

// Point represents the x,y coordinates of the center of a tracked box
type Point struct {
	X, Y int
}

// Trail keeps a history of the recent box centers of each identity slot in
// the current session for drawing motion trails
type Trail struct {
	// size is the maximum number of most recent points to keep per slot
	size int
	// history of points keyed by identity slot
	history map[int][]Point
}

// NewTrail returns a new trail history.  Size is the maximum length of the
// trail kept for each identity.
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int][]Point),
	}
}

// Reset clears all history, called when a new session is seeded as slot
// numbers then refer to different objects
func (t *Trail) Reset() {
	t.history = make(map[int][]Point)
}

// Add records the center of each present box in the frame.  Absent slots
// keep their history so the trail resumes if the object is found again.
func (t *Trail) Add(frame annotrack.Frame) {

	for slot, b := range frame {
		if b == nil {
			continue
		}

		x, y := b.Center()
		points := append(t.history[slot], Point{X: int(x), Y: int(y)})

		// drop the oldest point once the history is exceeded
		if len(points) > t.size {
			points = points[1:]
		}

		t.history[slot] = points
	}
}

// GetPoints gets the point history for an identity slot
func (t *Trail) GetPoints(slot int) []Point {
	return t.history[slot]
}
