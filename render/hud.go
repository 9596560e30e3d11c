package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
)

// HUDText returns the status line for a view.  Sessions are shown one
// based.
func HUDText(view annotrack.View) string {
	return fmt.Sprintf("Frame %d  Session %d  Objects %d/%d",
		view.FrameIndex, view.Session+1, view.Boxes.Present(), view.Identities)
}

// HUD draws the status line in the top left corner of the image on a dark
// background
func HUD(img *gocv.Mat, view annotrack.View, font Font) {

	text := HUDText(view)
	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	bg := image.Rect(0, 0,
		textSize.X+font.Pad.Left+font.Pad.Right,
		textSize.Y+font.Pad.Top+font.Pad.Bottom)

	gocv.Rectangle(img, bg, Black, -1)

	gocv.PutTextWithParams(img, text,
		image.Pt(font.Pad.Left, textSize.Y+font.Pad.Top),
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
