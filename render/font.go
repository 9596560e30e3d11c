package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment is the horizontal placement of a label relative to its box
type Alignment int

const (
	Left Alignment = iota + 1
	Center
	Right
)

// Padding is the space in pixels kept around label text
type Padding struct {
	Left, Right, Top, Bottom int
}

// Font holds the Hershey font settings used for overlay text
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	Pad       Padding
	// Alignment of a box label to the top edge of its box
	Alignment Alignment
}

// DefaultFont returns the font used for identity labels
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		Pad:       Padding{Left: 4, Right: 4, Top: 4, Bottom: 6},
		Alignment: Left,
	}
}

// HUDFont returns the font used for the status line
func HUDFont() Font {
	f := DefaultFont()
	f.Scale = 0.6
	f.Color = Yellow
	f.Thickness = 2
	return f
}
