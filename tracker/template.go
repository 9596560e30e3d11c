package tracker

import (
	"math"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
)

const (
	// templateMaxSide is the longest template side in pixels, larger boxes
	// are matched on a downsampled pyramid level
	templateMaxSide = 32
	// templateMinScore is the normalized cross correlation below which the
	// target is considered lost
	templateMinScore = 0.5
	// templateRate is the appearance learning rate on each tracked frame
	templateRate = 0.1
	// templateSearch is the search radius as a multiple of the template's
	// longest side
	templateSearch = 1.0
)

// Template is an online appearance tracker.  It keeps a running average
// template of the target and exhaustively searches a window around the last
// location for the best normalized cross correlation match.
type Template struct {
	box      annotrack.Box
	level    int
	tw, th   int
	tmpl     []float64
	search   float64
	minScore float64
}

// NewTemplate returns an uninitialised template tracker
func NewTemplate() *Template {
	return &Template{
		search:   templateSearch,
		minScore: templateMinScore,
	}
}

// Init learns the target appearance from box on frame
func (t *Template) Init(frame gocv.Mat, box annotrack.Box) error {

	p, err := planeFromMat(frame)

	if err != nil {
		return err
	}

	return t.init(p, box)
}

// Update searches frame for the target
func (t *Template) Update(frame gocv.Mat) (annotrack.Box, bool) {

	p, err := planeFromMat(frame)

	if err != nil {
		return annotrack.Box{}, false
	}

	return t.update(p)
}

// Close is a no-op as the tracker holds no native resources
func (t *Template) Close() error {
	return nil
}

func (t *Template) init(p *plane, box annotrack.Box) error {

	if box.Empty() {
		return ErrEmptyBox
	}

	if box.W < minPatch || box.H < minPatch {
		return ErrBoxTooSmall
	}

	t.level = 0

	for math.Max(box.W, box.H)/math.Ldexp(1, t.level) > templateMaxSide {
		t.level++
	}

	lp, s := t.levelPlane(p)
	t.tw = maxInt(int(math.Round(box.W*s)), 2)
	t.th = maxInt(int(math.Round(box.H*s)), 2)
	t.tmpl = zeroMeanUnit(lp.crop(box.X*s, box.Y*s, t.tw, t.th))
	t.box = box

	return nil
}

func (t *Template) update(p *plane) (annotrack.Box, bool) {

	if t.tmpl == nil {
		return annotrack.Box{}, false
	}

	lp, s := t.levelPlane(p)
	box, score := t.searchAround(lp, s, t.box, t.search)

	if score < t.minScore {
		return annotrack.Box{}, false
	}

	t.learn(lp, s, box)

	return box, true
}

// levelPlane returns the pyramid level the template is matched on and the
// scale factor from full resolution to that level
func (t *Template) levelPlane(p *plane) (*plane, float64) {

	pyr := pyramid(p, t.level)

	if len(pyr)-1 < t.level {
		t.level = len(pyr) - 1
	}

	return pyr[t.level], math.Ldexp(1, -t.level)
}

// searchAround finds the best match for the template within radius times
// the template size of box and returns the matched box with its score
func (t *Template) searchAround(lp *plane, s float64, box annotrack.Box,
	radius float64) (annotrack.Box, float64) {

	x0 := int(math.Round(box.X * s))
	y0 := int(math.Round(box.Y * s))
	r := int(math.Ceil(float64(maxInt(t.tw, t.th)) * radius))

	best := math.Inf(-1)
	bx, by := x0, y0

	for y := y0 - r; y <= y0+r; y++ {
		for x := x0 - r; x <= x0+r; x++ {
			if x+t.tw <= 0 || y+t.th <= 0 || x >= lp.w || y >= lp.h {
				continue
			}

			if score := t.nccAt(lp, x, y); score > best {
				best = score
				bx, by = x, y
			}
		}
	}

	moved := annotrack.NewBox(float64(bx)/s, float64(by)/s, box.W, box.H)

	return moved, best
}

// scoreAt returns the match score of the template at box on the level
// plane lp with scale s
func (t *Template) scoreAt(lp *plane, s float64, box annotrack.Box) float64 {

	patch := zeroMeanUnit(lp.crop(box.X*s, box.Y*s, t.tw, t.th))

	var dot float64

	for i, v := range patch {
		dot += v * t.tmpl[i]
	}

	return dot
}

// learn blends the appearance under box into the template
func (t *Template) learn(lp *plane, s float64, box annotrack.Box) {

	patch := zeroMeanUnit(lp.crop(box.X*s, box.Y*s, t.tw, t.th))

	for i := range t.tmpl {
		t.tmpl[i] = (1-templateRate)*t.tmpl[i] + templateRate*patch[i]
	}

	t.tmpl = zeroMeanUnit(t.tmpl)
	t.box = box
}

// nccAt returns the normalized cross correlation of the template with the
// plane region whose top left corner is at x, y
func (t *Template) nccAt(lp *plane, x, y int) float64 {

	n := float64(t.tw * t.th)

	var sum float64

	for j := 0; j < t.th; j++ {
		for i := 0; i < t.tw; i++ {
			sum += lp.at(x+i, y+j)
		}
	}

	mean := sum / n

	var dot, ss float64
	k := 0

	for j := 0; j < t.th; j++ {
		for i := 0; i < t.tw; i++ {
			d := lp.at(x+i, y+j) - mean
			dot += d * t.tmpl[k]
			ss += d * d
			k++
		}
	}

	if ss < 1e-9 {
		return 0
	}

	return dot / math.Sqrt(ss)
}

// zeroMeanUnit returns v shifted to zero mean and scaled to unit length.
// A constant input returns all zeros.
func zeroMeanUnit(v []float64) []float64 {

	out := make([]float64, len(v))

	if len(v) == 0 {
		return out
	}

	var sum float64

	for _, x := range v {
		sum += x
	}

	mean := sum / float64(len(v))

	var ss float64

	for i, x := range v {
		out[i] = x - mean
		ss += out[i] * out[i]
	}

	if ss < 1e-12 {
		for i := range out {
			out[i] = 0
		}
		return out
	}

	norm := math.Sqrt(ss)

	for i := range out {
		out[i] /= norm
	}

	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
