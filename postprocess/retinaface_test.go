package postprocess

import (
	"math"
	"testing"

	"github.com/swdee/go-annotrack/preprocess"
)

func TestGeneratePriors(t *testing.T) {

	tests := []struct {
		width, height int
		expected      int
	}{
		{640, 640, 16800},
		{320, 320, 4200},
		{64, 64, 168},
		// partial feature map cells round up
		{100, 50, 13*7*2 + 7*4*2 + 4*2*2},
	}

	for _, tc := range tests {
		if got := len(GeneratePriors(tc.width, tc.height)); got != tc.expected {
			t.Errorf("priors for %dx%d: expected %d, got %d", tc.width, tc.height, tc.expected, got)
		}
	}

	priors := GeneratePriors(640, 640)

	// first cell of the stride 8 feature map has the 16 and 32 pixel anchors
	expected := [][4]float32{
		{4.0 / 640, 4.0 / 640, 16.0 / 640, 16.0 / 640},
		{4.0 / 640, 4.0 / 640, 32.0 / 640, 32.0 / 640},
	}

	for i, e := range expected {
		if priors[i] != e {
			t.Errorf("prior %d: expected %v, got %v", i, e, priors[i])
		}
	}
}

// anchor offsets into the outputs of a 64x64 input
const (
	// stride 8, row 2, column 3, 16 pixel anchor centred at (28, 20)
	anchorA = (2*8+3)*2 + 0
	// stride 8, row 2, column 4, 16 pixel anchor centred at (36, 20)
	anchorB = (2*8+4)*2 + 0
	// stride 16, row 3, column 3, 64 pixel anchor centred at (56, 56)
	anchorC = 8*8*2 + (3*4+3)*2 + 0
	numAnchors64 = 168
)

func testOutputs() RetinaFaceOutputs {

	out := RetinaFaceOutputs{
		Location: make([]float32, numAnchors64*4),
		Scores:   make([]float32, numAnchors64*2),
	}

	for i := 0; i < numAnchors64; i++ {
		out.Scores[i*2] = 1
	}

	setScore := func(i int, s float32) {
		out.Scores[i*2] = 1 - s
		out.Scores[i*2+1] = s
	}

	setScore(anchorA, 0.9)
	// anchor B regressed 8 pixels left onto anchor A's box
	setScore(anchorB, 0.8)
	out.Location[anchorB*4] = -5
	setScore(anchorC, 0.7)
	setScore(0, 0.3)

	return out
}

func boxNear(a, b BoxRect) bool {
	const eps = 1e-3
	return math.Abs(float64(a.Left-b.Left)) < eps &&
		math.Abs(float64(a.Top-b.Top)) < eps &&
		math.Abs(float64(a.Right-b.Right)) < eps &&
		math.Abs(float64(a.Bottom-b.Bottom)) < eps
}

func TestRetinaFaceDetectFaces(t *testing.T) {

	resizer := preprocess.NewScaleResizer(64, 64, 1.0, MaxStride)
	defer resizer.Close()

	rf := NewRetinaFace(WiderFaceParams())

	dets, err := rf.DetectFaces(testOutputs(), resizer)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// anchor B is suppressed by NMS and the low score anchor filtered
	if len(dets) != 2 {
		t.Fatalf("expected 2 faces, got %d: %+v", len(dets), dets)
	}

	expected := []struct {
		box  BoxRect
		prob float32
	}{
		{BoxRect{Left: 20, Top: 12, Right: 36, Bottom: 28}, 0.9},
		// clamped to the image
		{BoxRect{Left: 24, Top: 24, Right: 64, Bottom: 64}, 0.7},
	}

	for i, e := range expected {
		if !boxNear(dets[i].Box, e.box) {
			t.Errorf("face %d: expected box %+v, got %+v", i, e.box, dets[i].Box)
		}

		if dets[i].Probability != e.prob {
			t.Errorf("face %d: expected probability %v, got %v", i, e.prob, dets[i].Probability)
		}

		if dets[i].KeyPoints != nil {
			t.Errorf("face %d: expected no keypoints without a landmark output", i)
		}
	}

	if dets[0].ID == dets[1].ID {
		t.Errorf("expected unique detection IDs")
	}
}

func TestRetinaFaceLandmarks(t *testing.T) {

	resizer := preprocess.NewScaleResizer(64, 64, 1.0, MaxStride)
	defer resizer.Close()

	out := testOutputs()
	out.Landmarks = make([]float32, numAnchors64*10)

	dets, err := NewRetinaFace(WiderFaceParams()).DetectFaces(out, resizer)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// zero landmark regression places every point on the anchor centre
	for _, kp := range dets[0].KeyPoints {
		if math.Abs(float64(kp.X-28)) > 1e-3 || math.Abs(float64(kp.Y-20)) > 1e-3 {
			t.Errorf("expected keypoint at (28, 20), got %+v", kp)
		}
	}

	if len(dets[0].KeyPoints) != 5 {
		t.Errorf("expected 5 keypoints, got %d", len(dets[0].KeyPoints))
	}
}

func TestRetinaFaceMaxObjects(t *testing.T) {

	resizer := preprocess.NewScaleResizer(64, 64, 1.0, MaxStride)
	defer resizer.Close()

	params := WiderFaceParams()
	params.MaxObjectNumber = 1

	dets, err := NewRetinaFace(params).DetectFaces(testOutputs(), resizer)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dets) != 1 || dets[0].Probability != 0.9 {
		t.Errorf("expected only the best face, got %+v", dets)
	}
}

func TestRetinaFaceOutputMismatch(t *testing.T) {

	resizer := preprocess.NewScaleResizer(128, 128, 1.0, MaxStride)
	defer resizer.Close()

	if _, err := NewRetinaFace(WiderFaceParams()).DetectFaces(testOutputs(), resizer); err == nil {
		t.Errorf("expected error for outputs of a different input size")
	}
}

func TestCalculateOverlap(t *testing.T) {

	tests := []struct {
		a, b     [4]float32
		expected float32
	}{
		{[4]float32{0, 0, 9, 9}, [4]float32{0, 0, 9, 9}, 1},
		{[4]float32{0, 0, 9, 9}, [4]float32{20, 20, 29, 29}, 0},
		// 5x10 overlap of two 10x10 boxes
		{[4]float32{0, 0, 9, 9}, [4]float32{5, 0, 14, 9}, 50.0 / 150},
	}

	for _, tc := range tests {
		got := calculateOverlap(tc.a[0], tc.a[1], tc.a[2], tc.a[3],
			tc.b[0], tc.b[1], tc.b[2], tc.b[3])

		if math.Abs(float64(got-tc.expected)) > 1e-6 {
			t.Errorf("overlap of %v and %v: expected %v, got %v", tc.a, tc.b, tc.expected, got)
		}
	}
}
