package annotrack

import (
	"errors"

	"gocv.io/x/gocv"
)

// slot is one identity within a MultiTracker
type slot struct {
	tracker Tracker
	// active is false once the tracker failed to initialise
	active bool
}

// MultiTracker is the handle of a tracking session.  It holds one tracker
// per identity slot and advances them all on each frame.
type MultiTracker struct {
	slots []slot
}

// NewMultiTracker returns an empty MultiTracker
func NewMultiTracker() *MultiTracker {
	return &MultiTracker{
		slots: make([]slot, 0),
	}
}

// Add registers a tracker for the next identity slot and initialises it on
// the frame with box.  If initialisation fails the slot is still allocated so
// slot indices stay aligned with the seed boxes, but the identity will be
// reported absent on every later frame.
func (m *MultiTracker) Add(t Tracker, frame gocv.Mat, box Box) error {

	err := t.Init(frame, box)

	m.slots = append(m.slots, slot{
		tracker: t,
		active:  err == nil,
	})

	return err
}

// Len returns the number of identity slots
func (m *MultiTracker) Len() int {
	return len(m.slots)
}

// Update advances every tracker to the given frame.  The returned Frame has
// one entry per slot with nil for lost identities.  ok is false when no
// identity could be tracked at all.
func (m *MultiTracker) Update(frame gocv.Mat) (bool, Frame) {

	boxes := make(Frame, len(m.slots))
	ok := false

	for i := range m.slots {

		if !m.slots[i].active {
			continue
		}

		box, found := m.slots[i].tracker.Update(frame)

		if !found {
			continue
		}

		b := box
		boxes[i] = &b
		ok = true
	}

	return ok, boxes
}

// Close releases all trackers held by the session
func (m *MultiTracker) Close() error {

	var errs []error

	for _, s := range m.slots {
		if err := s.tracker.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	m.slots = nil

	return errors.Join(errs...)
}
