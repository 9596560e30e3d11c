package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
)

// boxLabel holds the precalculated label placement for a box
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// SlotBoxes renders the box of every identity present in the frame in its
// session color, labelled with the identity slot number
func SlotBoxes(img *gocv.Mat, boxes annotrack.Frame, colors []color.RGBA,
	font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0, len(boxes))

	for slot, b := range boxes {
		if b == nil {
			continue
		}

		useClr := SlotColor(colors, slot)
		rect := b.Rect()

		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("#%d", slot)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		boxLabels = append(boxLabels, placeLabel(rect, text, textSize, useClr,
			font, lineThickness))
	}

	// draw all precalculated box labels so they are the top most layer on
	// the image and are not overlapped by neighbouring boxes
	for _, l := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, l.rect, l.clr, -1)

		gocv.PutTextWithParams(img, l.text, l.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// placeLabel calculates where the label of a box is drawn above its top
// edge according to the font alignment
func placeLabel(rect image.Rectangle, text string, textSize image.Point,
	clr color.RGBA, font Font, lineThickness int) boxLabel {

	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (rect.Min.X + rect.Max.X) / 2

	case Right:
		centerX = rect.Max.X - (textSize.X / 2) - font.Pad.Right + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = rect.Min.X + (textSize.X / 2) + font.Pad.Left - (lineThickness / 2)
	}

	// adjust the label position so the text is centered horizontally
	labelPosition := image.Pt(centerX-textSize.X/2, rect.Min.Y-font.Pad.Bottom)

	// create box for placing text on
	bRect := image.Rect(centerX-textSize.X/2-font.Pad.Left,
		rect.Min.Y-textSize.Y-font.Pad.Top-font.Pad.Bottom,
		centerX+textSize.X/2+font.Pad.Right, rect.Min.Y)

	return boxLabel{
		rect:    bRect,
		clr:     clr,
		text:    text,
		textPos: labelPosition,
	}
}
