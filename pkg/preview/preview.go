// Package preview shows the drill state in an OpenCV window and maps key
// presses to calibrate, reset and quit.
package preview

import (
	"image"
	"image/color"

	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"gocv.io/x/gocv"
)

// Action is a key-driven operator command.
type Action int

const (
	ActionNone Action = iota
	ActionCalibrate
	ActionReset
	ActionQuit
)

// KeyAction maps a WaitKey code to an action: c calibrate, r reset, q or Esc quit.
func KeyAction(key int) Action {
	if key < 0 {
		return ActionNone
	}
	switch key & 0xFF {
	case 'c', 'C':
		return ActionCalibrate
	case 'r', 'R':
		return ActionReset
	case 'q', 'Q', 27:
		return ActionQuit
	}
	return ActionNone
}

var (
	colorText   = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	colorGrid   = color.RGBA{R: 80, G: 80, B: 80, A: 0}
	colorGaze   = color.RGBA{R: 0, G: 200, B: 255, A: 0}
	colorTarget = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorClosed = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// gazeScale maps one gaze unit to pixels on the canvas.
const gazeScale = 100.0

// Window is an operator preview.
type Window struct {
	win    *gocv.Window
	canvas gocv.Mat
	width  int
	height int
}

// New opens a preview window of the given size.
func New(title string, width, height int) *Window {
	return &Window{
		win:    gocv.NewWindow(title),
		canvas: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
		width:  width,
		height: height,
	}
}

// Render draws the target arrow, the calibrated gaze point and the caption.
func (w *Window) Render(p drill.Progress, r gaze.Reading) {
	w.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))

	center := image.Pt(w.width/2, w.height/2)
	gocv.Line(&w.canvas, image.Pt(0, center.Y), image.Pt(w.width, center.Y), colorGrid, 1)
	gocv.Line(&w.canvas, image.Pt(center.X, 0), image.Pt(center.X, w.height), colorGrid, 1)

	if !p.Done {
		gocv.ArrowedLine(&w.canvas, center, arrowTip(center, p.Target, w.height/3), colorTarget, 3)
	}

	if r.Face {
		dot := image.Pt(
			center.X+int(r.Calibrated.X*gazeScale),
			center.Y+int(r.Calibrated.Y*gazeScale),
		)
		c := colorGaze
		if r.Direction == gaze.EyesClosed {
			c = colorClosed
		}
		gocv.Circle(&w.canvas, dot, 8, c, -1)
	}

	gocv.PutText(&w.canvas, p.String(), image.Pt(10, 30), gocv.FontHersheySimplex, 0.75, colorText, 2)
	w.win.IMShow(w.canvas)
}

// Poll waits up to delayMs for a key press and returns its action.
func (w *Window) Poll(delayMs int) Action {
	return KeyAction(w.win.WaitKey(delayMs))
}

// Close releases the window and canvas.
func (w *Window) Close() error {
	if err := w.canvas.Close(); err != nil {
		return err
	}
	return w.win.Close()
}

func arrowTip(c image.Point, d gaze.Direction, length int) image.Point {
	switch d {
	case gaze.Left:
		return image.Pt(c.X-length, c.Y)
	case gaze.Right:
		return image.Pt(c.X+length, c.Y)
	case gaze.Up:
		return image.Pt(c.X, c.Y-length)
	case gaze.Down:
		return image.Pt(c.X, c.Y+length)
	}
	return c
}
