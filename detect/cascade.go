package detect

import (
	"errors"
	"fmt"
	"image"

	"github.com/swdee/go-annotrack"
	"github.com/swdee/go-annotrack/postprocess"
	"github.com/swdee/go-annotrack/preprocess"
	"gocv.io/x/gocv"
)

// cascadeScore is the score given to cascade detections, the classifier
// does not produce a confidence so every face it accepts passes the
// seeding threshold
const cascadeScore = 1.0

// Cascade detects faces with an OpenCV Haar cascade classifier
type Cascade struct {
	classifier gocv.CascadeClassifier
	opts       Options
}

// NewCascade loads the cascade classifier from file
func NewCascade(file string, opts Options) (*Cascade, error) {

	classifier := gocv.NewCascadeClassifier()

	if !classifier.Load(file) {
		classifier.Close()
		return nil, fmt.Errorf("error reading cascade file: %v", file)
	}

	return &Cascade{
		classifier: classifier,
		opts:       opts,
	}, nil
}

// Close frees the classifier
func (c *Cascade) Close() error {
	return c.classifier.Close()
}

// Detect finds faces in an RGB frame
func (c *Cascade) Detect(frame gocv.Mat) ([]annotrack.Detection, error) {

	if frame.Empty() {
		return nil, errors.New("empty frame")
	}

	resizer := preprocess.NewScaleResizer(frame.Cols(), frame.Rows(), c.opts.Scale, 1)
	defer resizer.Close()

	resized := gocv.NewMat()
	defer resized.Close()

	resizer.LetterBoxResize(frame, &resized, pad)

	gray := gocv.NewMat()
	defer gray.Close()

	gocv.CvtColor(resized, &gray, gocv.ColorRGBToGray)
	gocv.EqualizeHist(gray, &gray)

	minSize := image.Pt(c.opts.MinFaceSize, c.opts.MinFaceSize)
	rects := c.classifier.DetectMultiScaleWithParams(gray, 1.1, 3, 0, minSize, image.Pt(0, 0))

	return toDetections(rectsToResults(rects, resizer)), nil
}

// rectsToResults maps classifier rectangles on the resized frame back to
// source frame coordinates
func rectsToResults(rects []image.Rectangle, resizer *preprocess.Resizer) []postprocess.DetectResult {

	res := make([]postprocess.DetectResult, 0, len(rects))

	for _, r := range rects {
		x1, y1 := resizer.ToSource(float32(r.Min.X), float32(r.Min.Y))
		x2, y2 := resizer.ToSource(float32(r.Max.X), float32(r.Max.Y))

		res = append(res, postprocess.DetectResult{
			Box: postprocess.BoxRect{
				Left:   x1,
				Top:    y1,
				Right:  x2,
				Bottom: y2,
			},
			Probability: cascadeScore,
		})
	}

	return res
}
