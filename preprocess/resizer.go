package preprocess

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Resizer scales frames to a detector's input size and maps coordinates on
// the resized image back to the source frame
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width of the padded output image
	destWidth int
	// destHeight is the height of the padded output image
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// padding placed on the top and left of the resized image
	xPad  int
	yPad  int
	scale float32
	// resize dimensions before padding
	resizeW int
	resizeH int
}

// NewResizer returns a letterbox resizer that fits the source image inside
// destWidth x destHeight whilst keeping the aspect ratio, centring the
// result between equal padding
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	// precalculate scaling dimensions
	r.preCalc()

	return r
}

// NewScaleResizer returns a resizer that scales the source image by scale
// and pads the right and bottom edges so both output dimensions are a
// multiple of stride, as needed by fully convolutional detectors that
// accept any input size
func NewScaleResizer(srcWidth, srcHeight int, scale float32, stride int) *Resizer {

	if stride < 1 {
		stride = 1
	}

	r := &Resizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		scale:     scale,
		tempMat:   gocv.NewMat(),
	}

	r.resizeW = maxInt(int(float32(srcWidth)*scale+0.5), 1)
	r.resizeH = maxInt(int(float32(srcHeight)*scale+0.5), 1)
	r.destWidth = (r.resizeW + stride - 1) / stride * stride
	r.destHeight = (r.resizeH + stride - 1) / stride * stride

	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Close frees memory allocated during resize process
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}

// preCalc the scaling factors for source and destination Mats
func (r *Resizer) preCalc() {

	r.resizeW = r.destWidth
	r.resizeH = r.destHeight

	scaleW := float32(r.destWidth) / float32(r.srcWidth)
	scaleH := float32(r.destHeight) / float32(r.srcHeight)
	r.scale = scaleH

	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = int(float32(r.srcHeight) * r.scale)
	} else {
		r.resizeW = int(float32(r.srcWidth) * r.scale)
	}

	r.yPad = (r.destHeight - r.resizeH) / 2 // padding height / 2
	r.xPad = (r.destWidth - r.resizeW) / 2  // padding width / 2
}

// LetterBoxResize resizes the input image to the output dimensions and pads
// the remainder with color
func (r *Resizer) LetterBoxResize(src gocv.Mat, dest *gocv.Mat, color color.RGBA) {

	if r.resizeW == r.srcWidth && r.resizeH == r.srcHeight {
		src.CopyTo(&r.tempMat)
	} else {
		gocv.Resize(src, &r.tempMat, image.Pt(r.resizeW, r.resizeH),
			0, 0, gocv.InterpolationArea)
	}

	gocv.CopyMakeBorder(r.tempMat, dest, r.yPad, r.destHeight-r.resizeH-r.yPad,
		r.xPad, r.destWidth-r.resizeW-r.xPad, gocv.BorderConstant, color)
}

// ToSource maps a point on the resized image back onto the source image,
// clamping it to the source image bounds
func (r *Resizer) ToSource(x, y float32) (float32, float32) {

	sx := (x - float32(r.xPad)) / r.scale
	sy := (y - float32(r.yPad)) / r.scale

	return clampf(sx, 0, float32(r.srcWidth)), clampf(sy, 0, float32(r.srcHeight))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScaleFactor returns the scale factor from source to resized image
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

// XPad returns the left padding of the resized image
func (r *Resizer) XPad() int {
	return r.xPad
}

// YPad returns the top padding of the resized image
func (r *Resizer) YPad() int {
	return r.yPad
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}

// DestWidth returns the width of the padded output image
func (r *Resizer) DestWidth() int {
	return r.destWidth
}

// DestHeight returns the height of the padded output image
func (r *Resizer) DestHeight() int {
	return r.destHeight
}
