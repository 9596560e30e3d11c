package tracker

import (
	"reflect"
	"testing"

	"github.com/swdee/go-annotrack"
)

func box(x, y, w, h float64) *annotrack.Box {
	b := annotrack.NewBox(x, y, w, h)
	return &b
}

func TestTrail(t *testing.T) {

	trail := NewTrail(2)

	trail.Add(annotrack.Frame{box(0, 0, 10, 10), box(20, 20, 4, 4)})
	trail.Add(annotrack.Frame{box(2, 0, 10, 10), nil})
	trail.Add(annotrack.Frame{box(4, 0, 10, 10), box(22, 20, 4, 4)})

	// oldest point dropped once the size is exceeded
	if got, want := trail.GetPoints(0), []Point{{7, 5}, {9, 5}}; !reflect.DeepEqual(got, want) {
		t.Errorf("slot 0: expected %v, got %v", want, got)
	}

	// absent frames leave the history untouched
	if got, want := trail.GetPoints(1), []Point{{22, 22}, {24, 22}}; !reflect.DeepEqual(got, want) {
		t.Errorf("slot 1: expected %v, got %v", want, got)
	}

	trail.Reset()

	if pts := trail.GetPoints(0); pts != nil {
		t.Errorf("expected no history after reset, got %v", pts)
	}
}
