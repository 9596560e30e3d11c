package tracker

import (
	"sort"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

const (
	// flowGrid is the number of points per row and column sampled in the box
	flowGrid = 10
	// flowLevels is the number of pyramid levels above the full resolution
	flowLevels = 3
	// flowMaxFB is the median forward-backward error in pixels above which
	// the flow is considered unreliable
	flowMaxFB = 10.0
	// flowMinPoints is the fewest points needed to estimate the motion
	flowMinPoints = 4
)

// MedianFlowTracker tracks a grid of points inside the box with
// forward-backward checked Lucas-Kanade optical flow and moves the box by the
// median point displacement and scale change
type MedianFlowTracker struct {
	box    annotrack.Box
	prev   []*plane
	params lkParams
}

// NewMedianFlow returns an uninitialised MedianFlow tracker
func NewMedianFlow() *MedianFlowTracker {
	return &MedianFlowTracker{params: defaultLK}
}

// Init starts tracking box on frame
func (m *MedianFlowTracker) Init(frame gocv.Mat, box annotrack.Box) error {

	p, err := planeFromMat(frame)

	if err != nil {
		return err
	}

	return m.init(p, box)
}

// Update follows the box onto frame
func (m *MedianFlowTracker) Update(frame gocv.Mat) (annotrack.Box, bool) {

	p, err := planeFromMat(frame)

	if err != nil {
		return annotrack.Box{}, false
	}

	return m.update(p)
}

// Close is a no-op as the tracker holds no native resources
func (m *MedianFlowTracker) Close() error {
	return nil
}

func (m *MedianFlowTracker) init(p *plane, box annotrack.Box) error {

	if box.Empty() {
		return ErrEmptyBox
	}

	if box.W < minPatch || box.H < minPatch {
		return ErrBoxTooSmall
	}

	m.reset(p, box)

	return nil
}

// reset restarts tracking from box on p
func (m *MedianFlowTracker) reset(p *plane, box annotrack.Box) {
	m.box = box
	m.prev = pyramid(p, flowLevels)
}

func (m *MedianFlowTracker) update(p *plane) (annotrack.Box, bool) {

	if m.prev == nil {
		return annotrack.Box{}, false
	}

	next := pyramid(p, flowLevels)
	box, ok := estimateFlow(m.prev, next, m.box, m.params)

	// always advance so the next frame is compared with this one
	m.prev = next

	if !ok || !p.overlaps(box) {
		return annotrack.Box{}, false
	}

	m.box = box

	return box, true
}

// gridPoints returns n by n points evenly spaced inside box
func gridPoints(box annotrack.Box, n int) []point {

	pts := make([]point, 0, n*n)

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			pts = append(pts, point{
				X: box.X + (float64(i)+0.5)*box.W/float64(n),
				Y: box.Y + (float64(j)+0.5)*box.H/float64(n),
			})
		}
	}

	return pts
}

// estimateFlow tracks the grid points of box from prev to next and back
// again, keeps the points with a forward-backward error at or below the
// median and returns the box moved by their median displacement and
// scaled by the median change in pairwise distance
func estimateFlow(prev, next []*plane, box annotrack.Box, params lkParams) (annotrack.Box, bool) {

	pts := gridPoints(box, flowGrid)

	fwd, fwdOK := trackPoints(prev, next, pts, params)
	back, backOK := trackPoints(next, prev, fwd, params)

	idx := make([]int, 0, len(pts))
	fb := make([]float64, 0, len(pts))

	for i := range pts {
		if fwdOK[i] && backOK[i] {
			idx = append(idx, i)
			fb = append(fb, pts[i].dist(back[i]))
		}
	}

	if len(idx) < flowMinPoints {
		return annotrack.Box{}, false
	}

	medFB := median(fb)

	if medFB > flowMaxFB {
		return annotrack.Box{}, false
	}

	keep := make([]int, 0, len(idx))

	for k, i := range idx {
		if fb[k] <= medFB {
			keep = append(keep, i)
		}
	}

	dxs := make([]float64, len(keep))
	dys := make([]float64, len(keep))

	for k, i := range keep {
		dxs[k] = fwd[i].X - pts[i].X
		dys[k] = fwd[i].Y - pts[i].Y
	}

	ratios := make([]float64, 0, len(keep)*(len(keep)-1)/2)

	for a := 0; a < len(keep); a++ {
		for b := a + 1; b < len(keep); b++ {
			i, j := keep[a], keep[b]

			if d0 := pts[i].dist(pts[j]); d0 > 0 {
				ratios = append(ratios, fwd[i].dist(fwd[j])/d0)
			}
		}
	}

	scale := 1.0

	if len(ratios) > 0 {
		scale = median(ratios)
	}

	if scale <= 0 {
		return annotrack.Box{}, false
	}

	cx, cy := box.Center()
	cx += median(dxs)
	cy += median(dys)
	w := box.W * scale
	h := box.H * scale

	return annotrack.NewBox(cx-w/2, cy-h/2, w, h), true
}

// median returns the median of x without modifying it
func median(x []float64) float64 {

	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
