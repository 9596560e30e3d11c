package detect

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-annotrack"
	"github.com/swdee/go-annotrack/postprocess"
	"github.com/swdee/go-annotrack/preprocess"
	"gocv.io/x/gocv"
)

// retinaFaceMean is the per channel mean subtracted from the network input
// in RGB order.  The blob swaps the frame to BGR so it is applied as
// (104, 117, 123) to the B, G, R channels.
var retinaFaceMean = gocv.NewScalar(123, 117, 104, 0)

// pad is the letterbox padding color
var pad = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// RetinaFace detects faces with a RetinaFace network exported to a format
// the OpenCV DNN module reads (ONNX, Caffe, TensorFlow).  The network takes
// a BGR mean subtracted image and outputs box regressions, softmax face
// scores and landmark regressions per anchor.
type RetinaFace struct {
	net      gocv.Net
	post     *postprocess.RetinaFace
	opts     Options
	outNames []string
}

// NewRetinaFace loads the network from modelFile
func NewRetinaFace(modelFile string, opts Options) (*RetinaFace, error) {

	net := gocv.ReadNet(modelFile, "")

	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("error reading network model: %s", modelFile)
	}

	return &RetinaFace{
		net:      net,
		post:     postprocess.NewRetinaFace(opts.Params),
		opts:     opts,
		outNames: outputNames(&net),
	}, nil
}

// outputNames returns the names of the network's unconnected output layers
func outputNames(net *gocv.Net) []string {

	var names []string

	for _, i := range net.GetUnconnectedOutLayers() {
		layer := net.GetLayer(i)
		name := layer.GetName()
		layer.Close()

		if name != "_input" {
			names = append(names, name)
		}
	}

	return names
}

// Close frees the network
func (r *RetinaFace) Close() error {
	return r.net.Close()
}

// resizer returns the resizer taking a frame to the network input size
func (r *RetinaFace) resizer(width, height int) *preprocess.Resizer {

	if r.opts.InputWidth > 0 && r.opts.InputHeight > 0 {
		return preprocess.NewResizer(width, height, r.opts.InputWidth, r.opts.InputHeight)
	}

	return preprocess.NewScaleResizer(width, height, r.opts.Scale, postprocess.MaxStride)
}

// Detect runs the network on an RGB frame
func (r *RetinaFace) Detect(frame gocv.Mat) ([]annotrack.Detection, error) {

	if frame.Empty() {
		return nil, errors.New("empty frame")
	}

	resizer := r.resizer(frame.Cols(), frame.Rows())
	defer resizer.Close()

	resized := gocv.NewMat()
	defer resized.Close()

	resizer.LetterBoxResize(frame, &resized, pad)

	blob := gocv.BlobFromImage(resized, 1.0,
		image.Pt(resized.Cols(), resized.Rows()), retinaFaceMean, true, false)
	defer blob.Close()

	r.net.SetInput(blob, "")

	outs := r.net.ForwardLayers(r.outNames)

	defer func() {
		for _, m := range outs {
			m.Close()
		}
	}()

	outputs, err := collectOutputs(outs)

	if err != nil {
		return nil, err
	}

	faces, err := r.post.DetectFaces(outputs, resizer)

	if err != nil {
		return nil, fmt.Errorf("error decoding faces: %w", err)
	}

	return toDetections(faces), nil
}

// collectOutputs copies the network outputs into float buffers, telling them
// apart by the size of their last dimension
func collectOutputs(outs []gocv.Mat) (postprocess.RetinaFaceOutputs, error) {

	var res postprocess.RetinaFaceOutputs

	for _, m := range outs {

		dims := m.Size()

		if len(dims) == 0 {
			continue
		}

		data, err := m.DataPtrFloat32()

		if err != nil {
			return res, fmt.Errorf("error reading network output: %w", err)
		}

		buf := make([]float32, len(data))
		copy(buf, data)

		assignOutput(&res, dims[len(dims)-1], buf)
	}

	if res.Location == nil || res.Scores == nil {
		return res, errors.New("network is missing the box or score output")
	}

	return res, nil
}

// assignOutput stores buf as the output identified by its last dimension
func assignOutput(res *postprocess.RetinaFaceOutputs, last int, buf []float32) {

	switch last {
	case 4:
		res.Location = buf
	case 2:
		res.Scores = buf
	case 10:
		res.Landmarks = buf
	}
}
