package postprocess

// priorConfig is the anchor layout of a RetinaFace model
type priorConfig struct {
	// minSizes are the anchor sizes in pixels per feature map
	minSizes [][]int
	// steps are the feature map strides in pixels
	steps []int
}

// retinaFacePriors is the anchor layout of the mobilenet and resnet50
// RetinaFace models trained on WIDERFACE
var retinaFacePriors = priorConfig{
	minSizes: [][]int{{16, 32}, {64, 128}, {256, 512}},
	steps:    []int{8, 16, 32},
}

// MaxStride is the largest feature map stride, model input sizes must be a
// multiple of it
const MaxStride = 32

// GeneratePriors returns the anchor boxes for a model input of width x
// height as normalized (centerX, centerY, width, height).  Anchors are
// ordered by feature map, then row, then column, then anchor size to match
// the network output layout.
func GeneratePriors(width, height int) [][4]float32 {
	return retinaFacePriors.generate(width, height)
}

func (c priorConfig) generate(width, height int) [][4]float32 {

	priors := make([][4]float32, 0, c.count(width, height))

	for k, step := range c.steps {

		rows := ceilDiv(height, step)
		cols := ceilDiv(width, step)

		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				for _, size := range c.minSizes[k] {
					priors = append(priors, [4]float32{
						(float32(j) + 0.5) * float32(step) / float32(width),
						(float32(i) + 0.5) * float32(step) / float32(height),
						float32(size) / float32(width),
						float32(size) / float32(height),
					})
				}
			}
		}
	}

	return priors
}

// count returns the number of anchors for the input size
func (c priorConfig) count(width, height int) int {

	n := 0

	for k, step := range c.steps {
		n += ceilDiv(height, step) * ceilDiv(width, step) * len(c.minSizes[k])
	}

	return n
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
