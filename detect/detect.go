// Package detect provides the face detectors used to seed tracking sessions.
// A RetinaFace network is run through the OpenCV DNN module, or a Haar
// cascade classifier when the model file is an OpenCV cascade XML file.
package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/swdee/go-annotrack"
	"github.com/swdee/go-annotrack/postprocess"
)

// Detector is a face detector holding native resources
type Detector interface {
	annotrack.Detector
	Close() error
}

// Options configures a detector
type Options struct {
	// Scale resizes the frame before detection, 1.0 detects at the frame's
	// own resolution
	Scale float32
	// InputWidth and InputHeight fix the network input size for models
	// exported with a static shape.  Frames are letterboxed into it and
	// Scale is ignored.  Zero uses the scaled frame size.
	InputWidth  int
	InputHeight int
	// Params are the RetinaFace post processing parameters
	Params postprocess.RetinaFaceParams
	// MinFaceSize is the smallest face in pixels the cascade detector reports
	MinFaceSize int
}

// DefaultOptions returns options for detecting faces at full resolution
// with the WIDERFACE post processing parameters
func DefaultOptions() Options {
	return Options{
		Scale:       1.0,
		Params:      postprocess.WiderFaceParams(),
		MinFaceSize: 20,
	}
}

// Kind is the detector implementation selected for a model file
type Kind int

const (
	KindRetinaFace Kind = iota
	KindCascade
)

func (k Kind) String() string {
	switch k {
	case KindCascade:
		return "haar cascade"
	default:
		return "retinaface"
	}
}

// KindOf returns the detector implementation for a model file, OpenCV
// cascade files have the .xml extension and everything else is loaded as a
// DNN model
func KindOf(modelFile string) Kind {

	if strings.EqualFold(filepath.Ext(modelFile), ".xml") {
		return KindCascade
	}

	return KindRetinaFace
}

// New loads the detector for modelFile
func New(modelFile string, opts Options) (Detector, error) {

	if _, err := os.Stat(modelFile); err != nil {
		return nil, fmt.Errorf("error opening detector model: %w", err)
	}

	if opts.Scale <= 0 {
		return nil, fmt.Errorf("detector scale must be positive, got %v", opts.Scale)
	}

	switch KindOf(modelFile) {
	case KindCascade:
		return NewCascade(modelFile, opts)
	default:
		return NewRetinaFace(modelFile, opts)
	}
}

// toDetections converts post processed results into detector results
func toDetections(results []postprocess.DetectResult) []annotrack.Detection {

	dets := make([]annotrack.Detection, 0, len(results))

	for _, r := range results {
		dets = append(dets, annotrack.Detection{
			X1:    float64(r.Box.Left),
			Y1:    float64(r.Box.Top),
			X2:    float64(r.Box.Right),
			Y2:    float64(r.Box.Bottom),
			Score: float64(r.Probability),
		})
	}

	return dets
}
