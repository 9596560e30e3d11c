package tracker

import (
	"errors"
	"fmt"
	"math"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
)

var (
	// ErrEmptyBox is returned when a tracker is initialised with a box that
	// has no area
	ErrEmptyBox = errors.New("tracker box has no area")
	// ErrBoxTooSmall is returned when the box is smaller than the minimum
	// patch size a native tracker can learn from
	ErrBoxTooSmall = errors.New("tracker box too small")
)

// plane is a single channel image with float intensities in row major
// order used by the native trackers
type plane struct {
	w, h int
	pix  []float64
}

// newPlane returns a zeroed plane of the given size
func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, pix: make([]float64, w*h)}
}

// planeFromMat converts an 8-bit BGR, BGRA or grayscale Mat into a plane
func planeFromMat(m gocv.Mat) (*plane, error) {

	if m.Empty() {
		return nil, errors.New("empty frame")
	}

	gray := gocv.NewMat()
	defer gray.Close()

	switch m.Channels() {
	case 1:
		m.CopyTo(&gray)
	case 3:
		gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(m, &gray, gocv.ColorBGRAToGray)
	default:
		return nil, fmt.Errorf("unsupported frame with %d channels", m.Channels())
	}

	if gray.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("unsupported frame type %v", gray.Type())
	}

	data := gray.ToBytes()
	p := newPlane(gray.Cols(), gray.Rows())

	for i, v := range data {
		p.pix[i] = float64(v)
	}

	return p, nil
}

// at returns the pixel at x, y clamped to the plane edges
func (p *plane) at(x, y int) float64 {

	if x < 0 {
		x = 0
	} else if x >= p.w {
		x = p.w - 1
	}

	if y < 0 {
		y = 0
	} else if y >= p.h {
		y = p.h - 1
	}

	return p.pix[y*p.w+x]
}

// sample returns the bilinear interpolated intensity at x, y
func (p *plane) sample(x, y float64) float64 {

	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0
	ix := int(x0)
	iy := int(y0)

	top := p.at(ix, iy)*(1-fx) + p.at(ix+1, iy)*fx
	bot := p.at(ix, iy+1)*(1-fx) + p.at(ix+1, iy+1)*fx

	return top*(1-fy) + bot*fy
}

// inside reports whether x, y lies within the plane
func (p *plane) inside(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= float64(p.w-1) && y <= float64(p.h-1)
}

// crop samples a w by h patch with its top left corner at x0, y0
func (p *plane) crop(x0, y0 float64, w, h int) []float64 {

	out := make([]float64, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = p.sample(x0+float64(x), y0+float64(y))
		}
	}

	return out
}

// downsample halves the plane size by averaging 2x2 blocks
func (p *plane) downsample() *plane {

	w := (p.w + 1) / 2
	h := (p.h + 1) / 2
	out := newPlane(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x*2, y*2
			out.pix[y*w+x] = (p.at(sx, sy) + p.at(sx+1, sy) +
				p.at(sx, sy+1) + p.at(sx+1, sy+1)) / 4
		}
	}

	return out
}

// pyramid returns the plane followed by levels successively halved planes
func pyramid(p *plane, levels int) []*plane {

	pyr := []*plane{p}

	for i := 0; i < levels; i++ {
		last := pyr[len(pyr)-1]

		if last.w < 8 || last.h < 8 {
			break
		}

		pyr = append(pyr, last.downsample())
	}

	return pyr
}

// overlaps reports whether any part of box lies on the plane
func (p *plane) overlaps(box annotrack.Box) bool {
	return box.BRX() > 0 && box.BRY() > 0 &&
		box.X < float64(p.w) && box.Y < float64(p.h)
}
