package video

import (
	"github.com/swdee/go-annotrack"
	"github.com/swdee/go-annotrack/render"
	"github.com/swdee/go-annotrack/tracker"
	"gocv.io/x/gocv"
)

// trailLength is the number of recent center points drawn per identity
const trailLength = 30

// Window is the interactive operator display.  It shows every frame with the
// tracked boxes, their trails and a status line, collects key presses and
// lets the operator draw boxes.
type Window struct {
	win        *gocv.Window
	canvas     gocv.Mat
	trail      *tracker.Trail
	font       render.Font
	hudFont    render.Font
	trailStyle render.TrailStyle
	lineWidth  int
}

// NewWindow opens a named display window
func NewWindow(name string) *Window {
	return &Window{
		win:        gocv.NewWindow(name),
		canvas:     gocv.NewMat(),
		trail:      tracker.NewTrail(trailLength),
		font:       render.DefaultFont(),
		hudFont:    render.HUDFont(),
		trailStyle: render.DefaultTrailStyle(),
		lineWidth:  2,
	}
}

// SelectBox blocks while the operator draws a box on the frame.  A
// cancelled selection returns an empty box.
func (w *Window) SelectBox(frame gocv.Mat) annotrack.Box {
	return annotrack.BoxFromRect(w.win.SelectROI(frame))
}

// WaitKey waits up to delay milliseconds for a key press, zero waits
// forever.  Returns -1 if no key was pressed.
func (w *Window) WaitKey(delay int) int {
	return w.win.WaitKey(delay)
}

// Show draws the view over a copy of the frame and displays it
func (w *Window) Show(frame gocv.Mat, view annotrack.View) {

	// slot numbers refer to new objects once a session is seeded
	if view.Reseeded {
		w.trail.Reset()
	}

	w.trail.Add(view.Boxes)

	frame.CopyTo(&w.canvas)

	render.Trail(&w.canvas, view.Boxes, view.Colors, w.trail, w.trailStyle)
	render.SlotBoxes(&w.canvas, view.Boxes, view.Colors, w.font, w.lineWidth)
	render.HUD(&w.canvas, view, w.hudFont)

	w.win.IMShow(w.canvas)
}

// Close closes the window
func (w *Window) Close() error {
	w.canvas.Close()
	return w.win.Close()
}
