package tracker

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
)

const (
	// goturnInput is the side of the square network inputs
	goturnInput = 227
	// goturnContext is the size of the crop around the box relative to the
	// box itself
	goturnContext = 2.0
	// goturnOutScale is the range of the box regression, the network predicts
	// corners in [0, goturnOutScale] over the search crop
	goturnOutScale = 10.0
	// goturnOutput is the layer holding the box regression
	goturnOutput = "fc8"
)

// goturnMean is the per channel BGR mean the network was trained with
var goturnMean = gocv.NewScalar(104, 117, 123, 0)

// GOTURNTracker is a regression network tracker.  Each update crops the
// previous frame around the last box as the target and the current frame at
// the same place as the search region, and the network regresses the box
// inside the search region.
type GOTURNTracker struct {
	net  gocv.Net
	prev gocv.Mat
	box  annotrack.Box
}

// NewGOTURN loads the GOTURN Caffe network from the goturn.prototxt and
// goturn.caffemodel files in dir
func NewGOTURN(dir string) (*GOTURNTracker, error) {

	if err := CheckGOTURNModel(dir); err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromCaffe(filepath.Join(dir, goturnFiles[0]),
		filepath.Join(dir, goturnFiles[1]))

	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("error reading GOTURN network from %s", dir)
	}

	return &GOTURNTracker{
		net:  net,
		prev: gocv.NewMat(),
	}, nil
}

// Init starts tracking box on frame
func (g *GOTURNTracker) Init(frame gocv.Mat, box annotrack.Box) error {

	if box.Empty() {
		return ErrEmptyBox
	}

	if frame.Empty() {
		return errors.New("empty frame")
	}

	if err := toBGR(frame, &g.prev); err != nil {
		return err
	}

	g.box = box

	return nil
}

// Update regresses the box on frame from the previous frame and box
func (g *GOTURNTracker) Update(frame gocv.Mat) (annotrack.Box, bool) {

	cur := gocv.NewMat()

	if err := toBGR(frame, &cur); err != nil {
		cur.Close()
		return annotrack.Box{}, false
	}

	region := goturnRegion(g.box)

	target := cropPadded(g.prev, region)
	defer target.Close()

	search := cropPadded(cur, region)
	defer search.Close()

	// the current frame is the reference for the next update
	g.prev.Close()
	g.prev = cur

	out, err := g.forward(target, search)

	if err != nil {
		return annotrack.Box{}, false
	}

	box := goturnDecode(region, out)
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())

	if box.Empty() || !box.Rect().Overlaps(bounds) {
		return annotrack.Box{}, false
	}

	g.box = box

	return box, true
}

// forward runs the network on the target and search crops and returns the
// four corner regressions
func (g *GOTURNTracker) forward(target, search gocv.Mat) ([]float32, error) {

	size := image.Pt(goturnInput, goturnInput)

	targetBlob := gocv.BlobFromImage(target, 1.0, size, goturnMean, false, false)
	defer targetBlob.Close()

	searchBlob := gocv.BlobFromImage(search, 1.0, size, goturnMean, false, false)
	defer searchBlob.Close()

	g.net.SetInput(targetBlob, "data1")
	g.net.SetInput(searchBlob, "data2")

	res := g.net.Forward(goturnOutput)
	defer res.Close()

	data, err := res.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading GOTURN output: %w", err)
	}

	if len(data) < 4 {
		return nil, fmt.Errorf("unexpected GOTURN output size %d", len(data))
	}

	out := make([]float32, 4)
	copy(out, data)

	return out, nil
}

// Close frees the network and the reference frame
func (g *GOTURNTracker) Close() error {
	g.prev.Close()
	return g.net.Close()
}

// goturnRegion returns the crop centred on box with goturnContext times
// its size
func goturnRegion(box annotrack.Box) image.Rectangle {

	cx, cy := box.Center()
	w := math.Max(1, math.Round(box.W*goturnContext))
	h := math.Max(1, math.Round(box.H*goturnContext))

	x0 := int(math.Round(cx - w/2))
	y0 := int(math.Round(cy - h/2))

	return image.Rect(x0, y0, x0+int(w), y0+int(h))
}

// goturnDecode maps the corner regressions over the search crop back into
// frame coordinates
func goturnDecode(region image.Rectangle, out []float32) annotrack.Box {

	w := float64(region.Dx()) / goturnOutScale
	h := float64(region.Dy()) / goturnOutScale

	x1 := float64(region.Min.X) + float64(out[0])*w
	y1 := float64(region.Min.Y) + float64(out[1])*h
	x2 := float64(region.Min.X) + float64(out[2])*w
	y2 := float64(region.Min.Y) + float64(out[3])*h

	return annotrack.NewBox(x1, y1, x2-x1, y2-y1)
}

// cropPadded returns the region of img resized to the network input.  Parts
// of the region outside the image repeat the edge pixels.
func cropPadded(img gocv.Mat, region image.Rectangle) gocv.Mat {

	padX := region.Dx()
	padY := region.Dy()

	padded := gocv.NewMat()
	defer padded.Close()

	gocv.CopyMakeBorder(img, &padded, padY, padY, padX, padX,
		gocv.BorderReplicate, color.RGBA{})

	// the region moves by the padding and is kept inside the padded image
	r := region.Add(image.Pt(padX, padY)).
		Intersect(image.Rect(0, 0, padded.Cols(), padded.Rows()))

	if r.Empty() {
		return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0),
			goturnInput, goturnInput, gocv.MatTypeCV8UC3)
	}

	roi := padded.Region(r)
	defer roi.Close()

	dst := gocv.NewMat()
	gocv.Resize(roi, &dst, image.Pt(goturnInput, goturnInput), 0, 0, gocv.InterpolationLinear)

	return dst
}

// toBGR copies frame into dst as a 3 channel BGR image
func toBGR(frame gocv.Mat, dst *gocv.Mat) error {

	switch frame.Channels() {
	case 3:
		frame.CopyTo(dst)
	case 4:
		gocv.CvtColor(frame, dst, gocv.ColorBGRAToBGR)
	case 1:
		gocv.CvtColor(frame, dst, gocv.ColorGrayToBGR)
	default:
		return fmt.Errorf("unsupported frame with %d channels", frame.Channels())
	}

	return nil
}
