package tracker

import (
	"math"
	"math/cmplx"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

const (
	// mosseRate is the filter learning rate on each tracked frame
	mosseRate = 0.125
	// mossePSR is the peak to sidelobe ratio below which the target is
	// considered lost
	mossePSR = 5.7
	// mosseSigma is the standard deviation of the desired gaussian output
	mosseSigma = 2.0
	// mosseEps regularizes the filter denominator
	mosseEps = 1e-5
	// mosseSidelobe is the half width of the window around the peak
	// excluded from the sidelobe statistics
	mosseSidelobe = 5
	// minPatch is the smallest box width or height a native tracker accepts
	minPatch = 4
)

// Mosse is a Minimum Output Sum of Squared Error correlation filter tracker
type Mosse struct {
	box    annotrack.Box
	w, h   int
	fft    *fft2
	window []float64
	// target is the frequency domain desired gaussian response
	target []complex128
	// num and den are the running filter numerator and denominator
	num, den []complex128
}

// NewMOSSE returns an uninitialised MOSSE tracker
func NewMOSSE() *Mosse {
	return &Mosse{}
}

// Init learns the initial filter from the box on frame
func (m *Mosse) Init(frame gocv.Mat, box annotrack.Box) error {

	p, err := planeFromMat(frame)

	if err != nil {
		return err
	}

	return m.init(p, box)
}

// Update locates the target on frame
func (m *Mosse) Update(frame gocv.Mat) (annotrack.Box, bool) {

	p, err := planeFromMat(frame)

	if err != nil {
		return annotrack.Box{}, false
	}

	return m.update(p)
}

// Close is a no-op as the tracker holds no native resources
func (m *Mosse) Close() error {
	return nil
}

func (m *Mosse) init(p *plane, box annotrack.Box) error {

	if box.Empty() {
		return ErrEmptyBox
	}

	m.w = int(math.Round(box.W))
	m.h = int(math.Round(box.H))

	if m.w < minPatch || m.h < minPatch {
		return ErrBoxTooSmall
	}

	m.box = box
	m.fft = newFFT2(m.w, m.h)
	m.window = hann(m.w, m.h)

	m.target = toComplex(gaussianPeak(m.w, m.h, float64(m.w/2), float64(m.h/2), mosseSigma))
	m.fft.forward(m.target)

	f := m.features(p, box)
	m.num = conjMul(m.target, f)
	m.den = conjMul(f, f)

	return nil
}

func (m *Mosse) update(p *plane) (annotrack.Box, bool) {

	if m.fft == nil {
		return annotrack.Box{}, false
	}

	f := m.features(p, m.box)

	resp := make([]complex128, len(f))

	for i := range f {
		resp[i] = f[i] * m.num[i] / (m.den[i] + mosseEps)
	}

	m.fft.inverse(resp)

	px, py, psr := peakToSidelobe(resp, m.w, m.h)

	if psr < mossePSR {
		return annotrack.Box{}, false
	}

	box := m.box.Translate(float64(px-m.w/2), float64(py-m.h/2))

	if !p.overlaps(box) {
		return annotrack.Box{}, false
	}

	// adapt the filter to the new appearance
	f = m.features(p, box)

	for i := range f {
		m.num[i] = mosseRate*m.target[i]*cmplx.Conj(f[i]) + (1-mosseRate)*m.num[i]
		m.den[i] = mosseRate*f[i]*cmplx.Conj(f[i]) + (1-mosseRate)*m.den[i]
	}

	m.box = box

	return box, true
}

// features returns the frequency domain of the preprocessed patch under
// box.  Pixels are log transformed, normalized to zero mean and unit
// variance then weighted by the cosine window.
func (m *Mosse) features(p *plane, box annotrack.Box) []complex128 {

	patch := p.crop(box.X, box.Y, m.w, m.h)

	for i, v := range patch {
		patch[i] = math.Log(v + 1)
	}

	mean, std := stat.MeanStdDev(patch, nil)

	if std < 1e-6 {
		std = 1e-6
	}

	for i, v := range patch {
		patch[i] = (v - mean) / std * m.window[i]
	}

	f := toComplex(patch)
	m.fft.forward(f)

	return f
}

// peakToSidelobe finds the maximum of the real response and returns its
// location with the peak to sidelobe ratio
func peakToSidelobe(resp []complex128, w, h int) (int, int, float64) {

	best := math.Inf(-1)
	px, py := 0, 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := real(resp[y*w+x]); v > best {
				best = v
				px, py = x, y
			}
		}
	}

	side := make([]float64, 0, len(resp))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if abs(x-px) <= mosseSidelobe && abs(y-py) <= mosseSidelobe {
				continue
			}
			side = append(side, real(resp[y*w+x]))
		}
	}

	if len(side) < 2 {
		// patch too small to have a sidelobe, trust the peak
		return px, py, math.Inf(1)
	}

	mean, std := stat.MeanStdDev(side, nil)

	if std < 1e-12 {
		if best-mean > 1e-9 {
			return px, py, math.Inf(1)
		}
		return px, py, 0
	}

	return px, py, (best - mean) / std
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
