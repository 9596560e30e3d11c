package tracker

import (
	"math"
)

// point is a sub pixel image location
type point struct {
	X, Y float64
}

// dist returns the euclidean distance between two points
func (p point) dist(o point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// lkParams configures the pyramidal Lucas-Kanade optical flow
type lkParams struct {
	// half is the half width of the integration window
	half int
	// iters is the maximum number of iterations per pyramid level
	iters int
	// epsilon is the displacement update below which iteration stops
	epsilon float64
	// minEigen is the smallest allowed eigenvalue of the spatial gradient
	// matrix, normalized by the window area
	minEigen float64
}

var defaultLK = lkParams{
	half:     4,
	iters:    20,
	epsilon:  0.01,
	minEigen: 1e-3,
}

// trackPoints follows pts from the prev pyramid into the next pyramid
// returning the new locations and whether each point was tracked
func trackPoints(prev, next []*plane, pts []point, params lkParams) ([]point, []bool) {

	out := make([]point, len(pts))
	status := make([]bool, len(pts))

	levels := len(prev)

	if len(next) < levels {
		levels = len(next)
	}

	for i, pt := range pts {
		out[i], status[i] = trackPoint(prev[:levels], next[:levels], pt, params)
	}

	return out, status
}

// trackPoint runs iterative Lucas-Kanade from the coarsest pyramid level to
// the finest, carrying the displacement guess down each level
func trackPoint(prev, next []*plane, pt point, params lkParams) (point, bool) {

	var gx, gy float64
	area := float64((2*params.half + 1) * (2*params.half + 1))

	for l := len(prev) - 1; l >= 0; l-- {

		scale := math.Ldexp(1, -l)
		px := pt.X * scale
		py := pt.Y * scale
		I := prev[l]
		J := next[l]

		// spatial gradient matrix over the window
		var gxx, gxy, gyy float64
		n := 2*params.half + 1
		ix := make([]float64, n*n)
		iy := make([]float64, n*n)
		iv := make([]float64, n*n)

		k := 0
		for wy := -params.half; wy <= params.half; wy++ {
			for wx := -params.half; wx <= params.half; wx++ {
				x := px + float64(wx)
				y := py + float64(wy)

				dx := (I.sample(x+1, y) - I.sample(x-1, y)) / 2
				dy := (I.sample(x, y+1) - I.sample(x, y-1)) / 2

				ix[k], iy[k], iv[k] = dx, dy, I.sample(x, y)
				gxx += dx * dx
				gxy += dx * dy
				gyy += dy * dy
				k++
			}
		}

		det := gxx*gyy - gxy*gxy
		tr := gxx + gyy
		minEig := (tr - math.Sqrt(math.Max(0, tr*tr-4*det))) / 2

		if minEig/area < params.minEigen || det == 0 {
			if l == 0 {
				return point{}, false
			}

			// too flat to refine at this level, carry the guess down
			gx *= 2
			gy *= 2
			continue
		}

		var vx, vy float64

		for it := 0; it < params.iters; it++ {

			var bx, by float64

			k = 0
			for wy := -params.half; wy <= params.half; wy++ {
				for wx := -params.half; wx <= params.half; wx++ {
					x := px + float64(wx) + gx + vx
					y := py + float64(wy) + gy + vy
					diff := iv[k] - J.sample(x, y)
					bx += diff * ix[k]
					by += diff * iy[k]
					k++
				}
			}

			ex := (gyy*bx - gxy*by) / det
			ey := (gxx*by - gxy*bx) / det
			vx += ex
			vy += ey

			if math.Hypot(ex, ey) < params.epsilon {
				break
			}
		}

		if l > 0 {
			gx = 2 * (gx + vx)
			gy = 2 * (gy + vy)
		} else {
			gx += vx
			gy += vy
		}
	}

	res := point{X: pt.X + gx, Y: pt.Y + gy}

	if !prev[0].inside(res.X, res.Y) || math.IsNaN(res.X) || math.IsNaN(res.Y) {
		return point{}, false
	}

	return res, true
}
