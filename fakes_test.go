package annotrack

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var errLost = errors.New("fake tracker init failed")

// fakeTracker replays a scripted list of boxes, a nil entry reports the
// object lost on that frame
type fakeTracker struct {
	script  []*Box
	pos     int
	initBox Box
	initErr  error
	closeErr error
	closed   bool
}

func (t *fakeTracker) Init(frame gocv.Mat, box Box) error {
	t.initBox = box
	return t.initErr
}

func (t *fakeTracker) Update(frame gocv.Mat) (Box, bool) {

	if t.pos >= len(t.script) {
		return Box{}, false
	}

	b := t.script[t.pos]
	t.pos++

	if b == nil {
		return Box{}, false
	}

	return *b, true
}

func (t *fakeTracker) Close() error {
	t.closed = true
	return t.closeErr
}

// fakeFactory hands out fakeTrackers with scripts taken in order
type fakeFactory struct {
	kinds    []string
	scripts  [][]*Box
	initErrs map[int]error
	// newErrs fails the n-th tracker construction
	newErrs map[int]error
	// closeErrs makes the n-th tracker fail to close
	closeErrs map[int]error
	created   []*fakeTracker
}

func (f *fakeFactory) Validate(kind string) error {
	for _, k := range f.kinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("unsupported tracker %q, available trackers are %v", kind, f.kinds)
}

func (f *fakeFactory) New(kind string) (Tracker, error) {

	if err := f.Validate(kind); err != nil {
		return nil, err
	}

	n := len(f.created)

	if err, ok := f.newErrs[n]; ok {
		return nil, err
	}

	t := &fakeTracker{}

	if n < len(f.scripts) {
		t.script = f.scripts[n]
	}

	if err, ok := f.initErrs[n]; ok {
		t.initErr = err
	}

	if err, ok := f.closeErrs[n]; ok {
		t.closeErr = err
	}

	f.created = append(f.created, t)
	return t, nil
}

// fakeOperator replays scripted key presses and box selections
type fakeOperator struct {
	keys      []int
	selects   []Box
	shown     []View
	waitCalls []int
}

func (o *fakeOperator) SelectBox(frame gocv.Mat) Box {

	if len(o.selects) == 0 {
		return Box{}
	}

	b := o.selects[0]
	o.selects = o.selects[1:]
	return b
}

func (o *fakeOperator) WaitKey(delay int) int {

	o.waitCalls = append(o.waitCalls, delay)

	if len(o.keys) == 0 {
		return -1
	}

	k := o.keys[0]
	o.keys = o.keys[1:]
	return k
}

func (o *fakeOperator) Show(frame gocv.Mat, view View) {
	o.shown = append(o.shown, view)
}

// fakeDetector returns fixed detections
type fakeDetector struct {
	dets  []Detection
	err   error
	calls int
}

func (d *fakeDetector) Detect(frame gocv.Mat) ([]Detection, error) {
	d.calls++
	return d.dets, d.err
}

// fakeSource produces a fixed number of small frames
type fakeSource struct {
	frames int
	read   int
}

func (s *fakeSource) Read(dst *gocv.Mat) bool {

	if s.read >= s.frames {
		return false
	}

	s.read++

	img := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.CopyTo(dst)

	return true
}

// boxp returns a pointer to a new box
func boxp(x, y, w, h float64) *Box {
	b := NewBox(x, y, w, h)
	return &b
}

// newFrameMat returns a small BGR frame for tests
func newFrameMat() gocv.Mat {
	return gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
}
