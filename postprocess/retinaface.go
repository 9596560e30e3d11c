package postprocess

import (
	"fmt"
	"math"

	"github.com/swdee/go-annotrack/preprocess"
)

// RetinaFace defines the struct for the RetinaFace model inference post processing
type RetinaFace struct {
	// Params are the Model configuration parameters
	Params RetinaFaceParams
	// idGen provides the next number for each detection result ID
	idGen *IDGenerator
	// priors caches the anchors per model input size
	priors map[[2]int][][4]float32
}

// RetinaFaceParams defines the struct containing the RetinaFace parameters to use
// for post processing operations
type RetinaFaceParams struct {
	// ConfThreshold is the minimum probability score required for a bounding box
	// region to be considered for processing
	ConfThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for defining
	// the maximum allowed Intersection Over Union (IoU) between two
	// bounding boxes for both to be kept
	NMSThreshold float32
	// VisThreshold is the Visualisation threshold
	VisThreshold float32
	// MaxObjectNumber is the maximum number of objects detected that can be
	// returned
	MaxObjectNumber int
	// KeyPointsNumber is the number of face landmark keypoints representing
	// different features of the face
	KeyPointsNumber int
}

// WiderFaceParams returns an instance of RetinaFaceParams configured with
// the default values for a Model trained on the WIDERFACE dataset featuring:
// - NMS Threshold: 0.4
// - ConfThreshold: 0.5
// - VisThreshold: 0.4
// - MaxObjectNumber: 128
// - KeyPointsNumber: 5
func WiderFaceParams() RetinaFaceParams {
	return RetinaFaceParams{
		NMSThreshold:    0.4,
		ConfThreshold:   0.5,
		VisThreshold:    0.4,
		MaxObjectNumber: 128,
		KeyPointsNumber: 5,
	}
}

// NewRetinaFace returns an instance of the RetinaFace post processor
func NewRetinaFace(p RetinaFaceParams) *RetinaFace {
	return &RetinaFace{
		Params: p,
		idGen:  NewIDGenerator(),
		priors: make(map[[2]int][][4]float32),
	}
}

// RetinaFaceOutputs are the raw network outputs for one image.  Location
// holds 4 box regression values, Scores 2 softmax class scores (background,
// face) and Landmarks 10 landmark regression values per anchor.  Landmarks
// may be nil for models without the landmark head.
type RetinaFaceOutputs struct {
	Location  []float32
	Scores    []float32
	Landmarks []float32
}

// DetectFaces decodes the network outputs for an image resized with resizer
// and returns the faces in source image coordinates ordered by descending
// score.  The output buffers are decoded in place.
func (r *RetinaFace) DetectFaces(outputs RetinaFaceOutputs,
	resizer *preprocess.Resizer) ([]DetectResult, error) {

	modelWidth := resizer.DestWidth()
	modelHeight := resizer.DestHeight()

	priors := r.priorsFor(modelWidth, modelHeight)
	numPriors := len(priors)

	if len(outputs.Location) < numPriors*4 || len(outputs.Scores) < numPriors*2 {
		return nil, fmt.Errorf("model output size mismatch for %dx%d input: "+
			"expected %d anchors, got %d locations and %d scores", modelWidth,
			modelHeight, numPriors, len(outputs.Location)/4, len(outputs.Scores)/2)
	}

	landms := outputs.Landmarks

	if len(landms) < numPriors*10 {
		landms = nil
	}

	filterIndices := make([]int, numPriors)
	props := make([]float32, numPriors)

	// filter valid results and apply NMS
	validCount := r.filterValidResult(outputs.Scores, outputs.Location, landms,
		priors, filterIndices, props, modelWidth, modelHeight)

	sortByScore(props, filterIndices, validCount)

	nms(validCount, outputs.Location, filterIndices, r.Params.NMSThreshold)

	// collate objects into a result for returning
	group := make([]DetectResult, 0)

	for i := 0; i < validCount; i++ {
		if len(group) >= r.Params.MaxObjectNumber {
			break
		}

		if filterIndices[i] == -1 || props[i] < r.Params.VisThreshold {
			continue
		}

		n := filterIndices[i]
		loc := outputs.Location

		x1, y1 := resizer.ToSource(loc[n*4+0], loc[n*4+1])
		x2, y2 := resizer.ToSource(loc[n*4+2], loc[n*4+3])

		var keyPts []KeyPoint

		if landms != nil {
			keyPts = make([]KeyPoint, 0, r.Params.KeyPointsNumber)

			for j := 0; j < r.Params.KeyPointsNumber && j < 5; j++ {
				px, py := resizer.ToSource(landms[n*10+2*j], landms[n*10+2*j+1])
				keyPts = append(keyPts, KeyPoint{X: px, Y: py})
			}
		}

		group = append(group, DetectResult{
			Box: BoxRect{
				Left:   x1,
				Top:    y1,
				Right:  x2,
				Bottom: y2,
			},
			Probability: props[i],
			KeyPoints:   keyPts,
			ID:          r.idGen.GetNext(),
		})
	}

	return group, nil
}

// priorsFor returns the cached anchors for the model input size
func (r *RetinaFace) priorsFor(width, height int) [][4]float32 {

	key := [2]int{width, height}

	if p, ok := r.priors[key]; ok {
		return p
	}

	p := GeneratePriors(width, height)
	r.priors[key] = p

	return p
}

// filterValidResult filters valid results based on the confidence threshold
// and decodes the bounding boxes and landmarks into model input pixels
func (r *RetinaFace) filterValidResult(scores, loc, landms []float32,
	boxPriors [][4]float32, filterIndice []int, props []float32,
	modelWidth, modelHeight int) int {

	validCount := 0
	variances := [2]float32{0.1, 0.2}
	mw := float32(modelWidth)
	mh := float32(modelHeight)

	// iterate through each result
	for i := range boxPriors {

		faceScore := scores[i*2+1]

		if faceScore <= r.Params.ConfThreshold {
			continue
		}

		filterIndice[validCount] = i
		props[validCount] = faceScore

		// decode location to original position
		xCenter := loc[i*4+0]*variances[0]*boxPriors[i][2] + boxPriors[i][0]
		yCenter := loc[i*4+1]*variances[0]*boxPriors[i][3] + boxPriors[i][1]
		w := float32(math.Exp(float64(loc[i*4+2]*variances[1]))) * boxPriors[i][2]
		h := float32(math.Exp(float64(loc[i*4+3]*variances[1]))) * boxPriors[i][3]

		xMin := xCenter - w*0.5
		yMin := yCenter - h*0.5

		loc[i*4+0] = clamp(xMin*mw, 0, mw)
		loc[i*4+1] = clamp(yMin*mh, 0, mh)
		loc[i*4+2] = clamp((xMin+w)*mw, 0, mw)
		loc[i*4+3] = clamp((yMin+h)*mh, 0, mh)

		// decode landmarks
		if landms != nil {
			for j := 0; j < 5; j++ {
				landms[i*10+2*j] = (landms[i*10+2*j]*variances[0]*boxPriors[i][2] + boxPriors[i][0]) * mw
				landms[i*10+2*j+1] = (landms[i*10+2*j+1]*variances[0]*boxPriors[i][3] + boxPriors[i][1]) * mh
			}
		}

		validCount++
	}

	return validCount
}
