package annotrack

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"gocv.io/x/gocv"
)

// State is the state of the annotation state machine
type State int

const (
	// StateUnseeded is the state before the first frame was seeded
	StateUnseeded State = iota
	// StateTracking is the state while a session is being tracked
	StateTracking
	// StateDone is the state once the final session has been closed
	StateDone
)

// String returns the name of the state
func (s State) String() string {
	switch s {
	case StateUnseeded:
		return "unseeded"
	case StateTracking:
		return "tracking"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// keyQuit finishes the annotation run
	keyQuit = 'q'
	// keyReseed closes the current session and seeds a new one
	keyReseed = 'p'
)

// Annotator is the per frame state machine driving an annotation run.  It
// owns the current tracking session and pushes each session onto the
// Accumulator as soon as it is closed.
type Annotator struct {
	seeder   *Seeder
	operator Operator
	// waitDelay is the number of milliseconds to wait for a key on each frame
	waitDelay int
	// autoReseedAfter is the number of consecutive total tracking failures
	// after which a new session is seeded, zero disables it
	autoReseedAfter int
	acc             *Accumulator
	state           State
	// frameIdx is the absolute index of the last frame stepped
	frameIdx int
	// sessions is the number of sessions started
	sessions int
	session  *Session
	handle   *MultiTracker
	colors   []color.RGBA
	// misses counts consecutive frames where tracking failed entirely
	misses int
}

// AnnotatorOption configures optional Annotator parameters
type AnnotatorOption func(*Annotator)

// WithWaitDelay sets the number of milliseconds to wait for a key press on
// each frame
func WithWaitDelay(ms int) AnnotatorOption {
	return func(a *Annotator) {
		a.waitDelay = ms
	}
}

// WithAutoReseed reseeds the session after n consecutive frames of total
// tracking failure
func WithAutoReseed(n int) AnnotatorOption {
	return func(a *Annotator) {
		a.autoReseedAfter = n
	}
}

// NewAnnotator returns an Annotator in the unseeded state
func NewAnnotator(seeder *Seeder, operator Operator, opts ...AnnotatorOption) *Annotator {

	a := &Annotator{
		seeder:    seeder,
		operator:  operator,
		waitDelay: 1,
		acc:       NewAccumulator(),
		state:     StateUnseeded,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// State returns the current state
func (a *Annotator) State() State {
	return a.state
}

// FrameIndex returns the absolute index of the last frame stepped
func (a *Annotator) FrameIndex() int {
	return a.frameIdx
}

// Accumulator returns the sessions closed so far
func (a *Annotator) Accumulator() *Accumulator {
	return a.acc
}

// Step processes the next decoded video frame.  The first frame seeds the
// first session, later frames are tracked unless the operator quits or asks
// for a reseed.
func (a *Annotator) Step(frame gocv.Mat) error {

	switch a.state {
	case StateDone:
		return nil

	case StateUnseeded:
		a.frameIdx = FirstFrame
		return a.seed(frame)
	}

	a.frameIdx++

	reseed := false

	if a.autoReseedAfter > 0 && a.misses >= a.autoReseedAfter {
		log.Printf("Tracking lost for %d frames, reseeding at frame %d\n",
			a.misses, a.frameIdx)
		reseed = true

	} else {
		switch a.operator.WaitKey(a.waitDelay) & 0xFF {
		case keyQuit:
			// the current frame is not annotated
			a.frameIdx--
			return a.Finish()

		case keyReseed:
			reseed = true
		}
	}

	if reseed {
		if err := a.closeSession(); err != nil {
			return err
		}

		return a.seed(frame)
	}

	ok, boxes := a.handle.Update(frame)

	if ok {
		a.misses = 0
	} else {
		a.misses++
		boxes = Frame{}
	}

	a.session.Append(boxes)
	a.show(frame, boxes, false)

	return nil
}

// Run steps through every frame of the source until it is exhausted, the
// operator quits or the context is cancelled, then closes the final session.
// An error is only returned if a session could not be seeded or closed.
func (a *Annotator) Run(ctx context.Context, src FrameSource) (*Accumulator, error) {

	frame := gocv.NewMat()
	defer frame.Close()

	for a.state != StateDone {

		if err := ctx.Err(); err != nil {
			log.Printf("Stopping annotation at frame %d: %v\n", a.frameIdx, err)
			break
		}

		if ok := src.Read(&frame); !ok || frame.Empty() {
			// end of stream
			break
		}

		if err := a.Step(frame); err != nil {
			return a.acc, err
		}
	}

	if err := a.Finish(); err != nil {
		return a.acc, err
	}

	return a.acc, nil
}

// Finish closes the current session and moves to the done state
func (a *Annotator) Finish() error {

	if a.state == StateDone {
		return nil
	}

	err := a.closeSession()
	a.state = StateDone

	return err
}

// seed starts a new session on the current frame
func (a *Annotator) seed(frame gocv.Mat) error {

	seed, err := a.seeder.Seed(frame)

	if err != nil {
		a.state = StateDone
		return fmt.Errorf("error seeding session at frame %d: %w", a.frameIdx, err)
	}

	a.session = NewSession(a.frameIdx, seed.Boxes)
	a.handle = seed.Handle
	a.colors = seed.Colors
	a.misses = 0
	a.sessions++
	a.state = StateTracking

	log.Printf("Session %d started at frame %d with %d identities\n",
		a.sessions, a.frameIdx, len(seed.Boxes))

	a.show(frame, a.session.Frames[0], true)

	return nil
}

// closeSession pushes the current session onto the accumulator and releases
// its trackers
func (a *Annotator) closeSession() error {

	if a.session == nil {
		return nil
	}

	s := *a.session
	a.session = nil

	if err := a.handle.Close(); err != nil {
		log.Printf("Error closing session trackers: %v\n", err)
	}

	a.handle = nil

	if err := a.acc.Push(s); err != nil {
		return err
	}

	log.Printf("Session %d closed, frames %d to %d\n", a.sessions, s.Start, s.End()-1)

	return nil
}

// show passes the frame and its tracking state to the operator for display
func (a *Annotator) show(frame gocv.Mat, boxes Frame, reseeded bool) {
	a.operator.Show(frame, View{
		FrameIndex: a.frameIdx,
		Session:    a.sessions - 1,
		Boxes:      boxes,
		Identities: a.session.NumIdentities(),
		Colors:     a.colors,
		Reseeded:   reseeded,
	})
}
