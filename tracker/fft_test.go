package tracker

import (
	"math/cmplx"
	"math/rand"
	"testing"
)

func TestFFT2RoundTrip(t *testing.T) {

	const w, h = 12, 8

	rng := rand.New(rand.NewSource(3))
	data := make([]complex128, w*h)

	for i := range data {
		data[i] = complex(rng.Float64(), rng.Float64())
	}

	orig := make([]complex128, len(data))
	copy(orig, data)

	f := newFFT2(w, h)
	f.forward(data)
	f.inverse(data)

	for i := range data {
		if cmplx.Abs(data[i]-orig[i]) > 1e-9 {
			t.Fatalf("element %d: expected %v, got %v", i, orig[i], data[i])
		}
	}
}

func TestFFT2Impulse(t *testing.T) {

	const w, h = 4, 4

	data := make([]complex128, w*h)
	data[0] = 1

	newFFT2(w, h).forward(data)

	// the transform of an impulse at the origin is flat
	for i, v := range data {
		if cmplx.Abs(v-1) > 1e-12 {
			t.Errorf("coefficient %d: expected 1, got %v", i, v)
		}
	}
}

func TestHannWindow(t *testing.T) {

	win := hann(5, 3)

	if win[0] != 0 {
		t.Errorf("expected zero weight at corner, got %v", win[0])
	}

	// center of a 5x3 window
	if c := win[1*5+2]; c < 0.999 {
		t.Errorf("expected full weight at center, got %v", c)
	}
}
