package tracker

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2 performs two dimensional discrete Fourier transforms on row major
// w by h complex data by transforming each row then each column
type fft2 struct {
	w, h int
	rows *fourier.CmplxFFT
	cols *fourier.CmplxFFT
	col  []complex128
}

// newFFT2 returns a 2D transform for data of size w by h
func newFFT2(w, h int) *fft2 {
	return &fft2{
		w:    w,
		h:    h,
		rows: fourier.NewCmplxFFT(w),
		cols: fourier.NewCmplxFFT(h),
		col:  make([]complex128, h),
	}
}

// forward transforms data in place into its frequency domain coefficients
func (f *fft2) forward(data []complex128) {
	f.apply(data, f.rows.Coefficients, f.cols.Coefficients)
}

// inverse transforms coefficients in place back into the spatial domain.
// The gonum transforms are unnormalized so the result is scaled by 1/(w*h).
func (f *fft2) inverse(data []complex128) {

	f.apply(data, f.rows.Sequence, f.cols.Sequence)

	scale := complex(1/float64(f.w*f.h), 0)

	for i := range data {
		data[i] *= scale
	}
}

func (f *fft2) apply(data []complex128, rowFn, colFn func(dst, src []complex128) []complex128) {

	for y := 0; y < f.h; y++ {
		row := data[y*f.w : (y+1)*f.w]
		rowFn(row, row)
	}

	for x := 0; x < f.w; x++ {
		for y := 0; y < f.h; y++ {
			f.col[y] = data[y*f.w+x]
		}

		colFn(f.col, f.col)

		for y := 0; y < f.h; y++ {
			data[y*f.w+x] = f.col[y]
		}
	}
}

// toComplex converts real values into complex values
func toComplex(in []float64) []complex128 {

	out := make([]complex128, len(in))

	for i, v := range in {
		out[i] = complex(v, 0)
	}

	return out
}

// hann returns the 2D Hann (cosine) window of size w by h
func hann(w, h int) []float64 {

	win := make([]float64, w*h)

	for y := 0; y < h; y++ {
		wy := hann1(y, h)

		for x := 0; x < w; x++ {
			win[y*w+x] = wy * hann1(x, w)
		}
	}

	return win
}

func hann1(i, n int) float64 {
	if n < 2 {
		return 1
	}
	return 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
}

// gaussianPeak returns a w by h plane with a 2D gaussian of the given sigma
// centered at cx, cy
func gaussianPeak(w, h int, cx, cy, sigma float64) []float64 {

	out := make([]float64, w*h)
	den := 2 * sigma * sigma

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			out[y*w+x] = math.Exp(-(dx*dx + dy*dy) / den)
		}
	}

	return out
}

// conjMul returns a * conj(b) element wise
func conjMul(a, b []complex128) []complex128 {

	out := make([]complex128, len(a))

	for i := range a {
		out[i] = a[i] * cmplx.Conj(b[i])
	}

	return out
}
