package annotrack

import (
	"testing"
)

func TestMultiTrackerUpdate(t *testing.T) {

	frame := newFrameMat()
	defer frame.Close()

	trackers := []*fakeTracker{
		{script: []*Box{boxp(1, 1, 2, 2), nil, nil}},
		{script: []*Box{boxp(5, 5, 2, 2), boxp(6, 6, 2, 2), nil}},
	}

	mt := NewMultiTracker()

	for i, tr := range trackers {
		if err := mt.Add(tr, frame, NewBox(float64(i), 0, 1, 1)); err != nil {
			t.Fatalf("unexpected add error: %v", err)
		}
	}

	// both tracked
	ok, boxes := mt.Update(frame)

	if !ok || len(boxes) != 2 || boxes[0] == nil || boxes[1] == nil {
		t.Fatalf("expected both identities, got ok=%v boxes=%v", ok, boxes)
	}

	// first identity lost, its slot stays in place
	ok, boxes = mt.Update(frame)

	if !ok || len(boxes) != 2 || boxes[0] != nil || *boxes[1] != NewBox(6, 6, 2, 2) {
		t.Errorf("expected slot 0 absent and slot 1 tracked, got ok=%v boxes=%v", ok, boxes)
	}

	// all lost is a total failure
	ok, _ = mt.Update(frame)

	if ok {
		t.Errorf("expected total tracking failure")
	}

	if err := mt.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}

	for i, tr := range trackers {
		if !tr.closed {
			t.Errorf("tracker %d was not closed", i)
		}
	}
}

func TestMultiTrackerEmpty(t *testing.T) {

	frame := newFrameMat()
	defer frame.Close()

	mt := NewMultiTracker()
	ok, boxes := mt.Update(frame)

	if ok || len(boxes) != 0 {
		t.Errorf("expected failure with no identities, got ok=%v boxes=%v", ok, boxes)
	}
}
