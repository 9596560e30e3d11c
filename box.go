package annotrack

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrTupleLength is returned when a box tuple is neither a 4-tuple
	// (x, y, w, h) nor a 5-tuple (x1, y1, x2, y2, score)
	ErrTupleLength = errors.New("box tuple must have 4 or 5 elements")
	// ErrNegativeSize is returned when a box tuple results in a negative
	// width or height
	ErrNegativeSize = errors.New("box has negative width or height")
)

// Box is a bounding box in pixel coordinates with Tlwh (top left x, top
// left y, width, height) format
type Box struct {
	X float64 `cbor:"x"`
	Y float64 `cbor:"y"`
	W float64 `cbor:"w"`
	H float64 `cbor:"h"`
}

// NewBox creates a new Box with the given coordinates
func NewBox(x, y, width, height float64) Box {
	return Box{X: x, Y: y, W: width, H: height}
}

// NormalizeBox converts a box tuple into a Box.  A 4-tuple is already in
// (x, y, w, h) form and is passed through unchanged.  A 5-tuple is a detector
// result (x1, y1, x2, y2, score) which has the top left origin subtracted
// from the bottom right corner and the score dropped.
func NormalizeBox(tuple []float64) (Box, error) {

	var b Box

	switch len(tuple) {
	case 4:
		b = NewBox(tuple[0], tuple[1], tuple[2], tuple[3])

	case 5:
		b = NewBox(tuple[0], tuple[1], tuple[2]-tuple[0], tuple[3]-tuple[1])

	default:
		return Box{}, fmt.Errorf("%w, got %d", ErrTupleLength, len(tuple))
	}

	if b.W < 0 || b.H < 0 {
		return Box{}, fmt.Errorf("%w: %v", ErrNegativeSize, tuple)
	}

	return b, nil
}

// BoxFromRect converts an integer image rectangle into a Box
func BoxFromRect(r image.Rectangle) Box {
	r = r.Canon()
	return NewBox(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}

// Rect returns the box rounded to an integer image rectangle
func (b Box) Rect() image.Rectangle {
	x := int(math.Round(b.X))
	y := int(math.Round(b.Y))
	return image.Rect(x, y, x+int(math.Round(b.W)), y+int(math.Round(b.H)))
}

// BRX returns the bottom right x coordinate of the box
func (b Box) BRX() float64 {
	return b.X + b.W
}

// BRY returns the bottom right y coordinate of the box
func (b Box) BRY() float64 {
	return b.Y + b.H
}

// Tlbr returns the box as (top left x, top left y, bottom right x, bottom
// right y)
func (b Box) Tlbr() [4]float64 {
	return [4]float64{b.X, b.Y, b.BRX(), b.BRY()}
}

// Center returns the center point of the box
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Area returns the area of the box
func (b Box) Area() float64 {
	return b.W * b.H
}

// Empty reports whether the box has no area
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Translate returns the box moved by dx, dy
func (b Box) Translate(dx, dy float64) Box {
	return NewBox(b.X+dx, b.Y+dy, b.W, b.H)
}

// IoU calculates the Intersection over Union with another box
func (b Box) IoU(other Box) float64 {

	iw := math.Min(b.BRX(), other.BRX()) - math.Max(b.X, other.X)
	ih := math.Min(b.BRY(), other.BRY()) - math.Max(b.Y, other.Y)

	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := iw * ih
	union := b.Area() + other.Area() - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

// String returns the box as a (x, y, w, h) tuple
func (b Box) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f, %.1f)", b.X, b.Y, b.W, b.H)
}
