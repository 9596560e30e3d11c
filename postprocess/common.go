package postprocess

import (
	"math"
	"sort"
)

// clamp restricts the value val to be within the range min and max
func clamp(val, min, max float32) float32 {

	if val > min {

		if val < max {
			return val
		}

		return max
	}

	return min
}

// scoreOrder sorts scores in descending order while keeping the indices
// aligned with them
type scoreOrder struct {
	scores  []float32
	indices []int
}

func (s scoreOrder) Len() int { return len(s.scores) }

func (s scoreOrder) Less(i, j int) bool { return s.scores[i] > s.scores[j] }

func (s scoreOrder) Swap(i, j int) {
	s.scores[i], s.scores[j] = s.scores[j], s.scores[i]
	s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
}

// sortByScore orders the first n scores and their indices by descending
// score.  Equal scores keep their anchor order.
func sortByScore(scores []float32, indices []int, n int) {
	sort.Stable(scoreOrder{scores: scores[:n], indices: indices[:n]})
}

// nms implements a Non-Maximum Suppression (NMS) algorithm over boxes in
// (xmin, ymin, xmax, ymax) layout.  Order must be sorted by descending
// score, suppressed entries are set to -1.
func nms(validCount int, locations []float32, order []int, threshold float32) {

	for i := 0; i < validCount; i++ {

		if order[i] == -1 {
			continue
		}

		n := order[i]

		for j := i + 1; j < validCount; j++ {

			m := order[j]

			if m == -1 {
				continue
			}

			iou := calculateOverlap(
				locations[n*4+0], locations[n*4+1], locations[n*4+2], locations[n*4+3],
				locations[m*4+0], locations[m*4+1], locations[m*4+2], locations[m*4+3])

			// suppress bounding box m if IoU exceeds the threshold
			if iou > threshold {
				order[j] = -1
			}
		}
	}
}

// calculateOverlap works out the Intersection of Union (IoU) value of two
// boxes dimensions
func calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1,
	xmax1, ymax1 float32) float32 {

	w := math.Max(0.0, math.Min(float64(xmax0), float64(xmax1))-math.Max(float64(xmin0), float64(xmin1))+1.0)
	h := math.Max(0.0, math.Min(float64(ymax0), float64(ymax1))-math.Max(float64(ymin0), float64(ymin1))+1.0)
	intersection := w * h

	// calculate the area of both rectangles with added 1.0 for inclusive pixel calculation
	area0 := (xmax0 - xmin0 + 1) * (ymax0 - ymin0 + 1)
	area1 := (xmax1 - xmin1 + 1) * (ymax1 - ymin1 + 1)

	union := area0 + area1 - float32(intersection)

	if union <= 0 {
		return 0.0
	}

	return float32(intersection) / union
}
