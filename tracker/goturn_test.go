package tracker

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
)

func TestGOTURNRegion(t *testing.T) {

	tests := []struct {
		name     string
		box      annotrack.Box
		expected image.Rectangle
	}{
		{"centred", annotrack.NewBox(40, 60, 20, 10), image.Rect(30, 55, 70, 75)},
		{"at origin", annotrack.NewBox(0, 0, 8, 8), image.Rect(-4, -4, 12, 12)},
		{"tiny", annotrack.NewBox(10, 10, 0.2, 0.2), image.Rect(10, 10, 11, 11)},
	}

	for _, tc := range tests {
		if got := goturnRegion(tc.box); got != tc.expected {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestGOTURNDecode(t *testing.T) {

	region := image.Rect(30, 55, 70, 75)

	// a box centred in the search crop at half its size is the previous box
	got := goturnDecode(region, []float32{2.5, 2.5, 7.5, 7.5})
	expected := annotrack.NewBox(40, 60, 20, 10)

	if got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}

	// the full output range spans the whole crop
	got = goturnDecode(region, []float32{0, 0, 10, 10})
	expected = annotrack.NewBox(30, 55, 40, 20)

	if got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestCropPadded(t *testing.T) {

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 50, 50, gocv.MatTypeCV8UC3)
	defer img.Close()

	tests := []image.Rectangle{
		image.Rect(10, 10, 30, 30),
		image.Rect(-10, -10, 30, 30),
		image.Rect(40, 45, 60, 55),
	}

	for _, region := range tests {
		crop := cropPadded(img, region)

		if crop.Cols() != goturnInput || crop.Rows() != goturnInput {
			t.Errorf("%v: expected %dx%d crop, got %dx%d", region,
				goturnInput, goturnInput, crop.Cols(), crop.Rows())
		}

		// edge pixels are repeated into the padding
		if v := crop.GetVecbAt(0, 0); v[0] != 10 || v[1] != 20 || v[2] != 30 {
			t.Errorf("%v: expected replicated border pixel, got %v", region, v)
		}

		crop.Close()
	}
}

func TestNewGOTURNMissingModel(t *testing.T) {

	if _, err := NewGOTURN(t.TempDir()); err == nil {
		t.Errorf("expected error without GOTURN model files")
	}
}

func TestGOTURNFromRegistry(t *testing.T) {

	if err := CheckGOTURNModel("."); err != nil {
		t.Skipf("GOTURN model not available: %v", err)
	}

	tr, err := DefaultRegistry().New(string(GOTURN))

	if err != nil {
		t.Fatalf("unexpected error creating GOTURN tracker: %v", err)
	}

	defer tr.Close()

	if got := fmt.Sprintf("%T", tr); got != "*tracker.GOTURNTracker" {
		t.Errorf("expected *tracker.GOTURNTracker, got %s", got)
	}

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 90, 90, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	gocv.Rectangle(&frame, image.Rect(60, 40, 100, 80), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	if err := tr.Init(frame, annotrack.NewBox(60, 40, 40, 40)); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}

	if box, ok := tr.Update(frame); ok && box.Empty() {
		t.Errorf("tracked box has no area: %v", box)
	}
}
