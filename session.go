package annotrack

import (
	"errors"
	"fmt"
)

// ErrNotContiguous is returned when a session pushed onto the Accumulator
// does not start on the frame directly after the previous session ended
var ErrNotContiguous = errors.New("session is not contiguous with previous session")

// FirstFrame is the index given to the first decoded video frame
const FirstFrame = 1

// Frame holds the boxes recorded for a single video frame, indexed by
// identity slot.  A nil entry, or a slot past the end of the slice, means the
// identity was absent on that frame.  An empty Frame records that tracking
// failed entirely.
type Frame []*Box

// At returns the box for the given identity slot and whether it exists
func (f Frame) At(slot int) (Box, bool) {

	if slot < 0 || slot >= len(f) || f[slot] == nil {
		return Box{}, false
	}

	return *f[slot], true
}

// Present returns the number of identities with a box on this frame
func (f Frame) Present() int {

	n := 0

	for _, b := range f {
		if b != nil {
			n++
		}
	}

	return n
}

// FrameOf creates a Frame with every identity present
func FrameOf(boxes []Box) Frame {

	f := make(Frame, len(boxes))

	for i := range boxes {
		b := boxes[i]
		f[i] = &b
	}

	return f
}

// Session is one continuous tracking run between seed events.  Frames[0]
// holds the seed boxes at frame Start and fixes the number of identities for
// the lifetime of the session.
type Session struct {
	// Start is the absolute video frame index of Frames[0]
	Start int `cbor:"start"`
	// Frames are the per frame boxes aligned by identity slot
	Frames []Frame `cbor:"frames"`
}

// NewSession starts a session at the given frame with the seed boxes
func NewSession(start int, seed []Box) *Session {
	return &Session{
		Start:  start,
		Frames: []Frame{FrameOf(seed)},
	}
}

// Append records the boxes for the next frame of the session
func (s *Session) Append(f Frame) {
	s.Frames = append(s.Frames, f)
}

// Len returns the number of frames recorded in the session
func (s *Session) Len() int {
	return len(s.Frames)
}

// End returns the frame index directly after the last frame of the session
func (s *Session) End() int {
	return s.Start + len(s.Frames)
}

// NumIdentities returns the number of identity slots fixed at seed time
func (s *Session) NumIdentities() int {

	if len(s.Frames) == 0 {
		return 0
	}

	return len(s.Frames[0])
}

// Accumulator stores the completed sessions of a whole video in order.
// Sessions cover contiguous, non overlapping frame ranges.
type Accumulator struct {
	sessions []Session
}

// NewAccumulator returns an empty Accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		sessions: make([]Session, 0),
	}
}

// Push appends a closed session.  The session must start on the frame
// directly after the previous session, or at FirstFrame if it is the first.
func (a *Accumulator) Push(s Session) error {

	next := a.NextFrame()

	if s.Start != next {
		return fmt.Errorf("%w: expected start frame %d, got %d",
			ErrNotContiguous, next, s.Start)
	}

	a.sessions = append(a.sessions, s)
	return nil
}

// NextFrame returns the frame index the next session must start at
func (a *Accumulator) NextFrame() int {

	if len(a.sessions) == 0 {
		return FirstFrame
	}

	return a.sessions[len(a.sessions)-1].End()
}

// Sessions returns the accumulated sessions
func (a *Accumulator) Sessions() []Session {
	return a.sessions
}

// Len returns the number of sessions accumulated
func (a *Accumulator) Len() int {
	return len(a.sessions)
}

// ValidateSessions checks that a list of sessions, such as one loaded from a
// dump, covers contiguous frame ranges starting at FirstFrame
func ValidateSessions(sessions []Session) error {

	acc := NewAccumulator()

	for i, s := range sessions {
		if err := acc.Push(s); err != nil {
			return fmt.Errorf("session %d: %w", i, err)
		}
	}

	return nil
}
