// Package synth builds synthetic eye landmarks that produce a chosen gaze
// vector and eye openness. The replay feed and tests draw frames from it.
package synth

import "github.com/teslashibe/go-gaze/pkg/gaze"

// Frame dimensions used by the synthetic landmarks.
const (
	Width  = 640
	Height = 480

	eyeWidth = 40.0
	eyeY     = 200.0
	leftCX   = 280.0
	rightCX  = 360.0
	irisR    = 1.0
)

// Vectors that classify as each direction with the default thresholds.
var (
	LookCenter = gaze.Vector{X: 0, Y: 0}
	LookLeft   = gaze.Vector{X: -0.8, Y: 0}
	LookRight  = gaze.Vector{X: 0.8, Y: 0}
	LookUp     = gaze.Vector{X: 0, Y: -0.8}
	LookDown   = gaze.Vector{X: 0, Y: 0.8}
)

// OpenEyes is a comfortably open eye ratio; ClosedEyes is below the threshold.
const (
	OpenEyes   = 0.3
	ClosedEyes = 0.1
)

// VectorFor returns a vector that classifies as d with default thresholds.
// Non-directional labels map to LookCenter.
func VectorFor(d gaze.Direction) gaze.Vector {
	switch d {
	case gaze.Left:
		return LookLeft
	case gaze.Right:
		return LookRight
	case gaze.Up:
		return LookUp
	case gaze.Down:
		return LookDown
	}
	return LookCenter
}

func eye(cx float64, v gaze.Vector, openness float64) gaze.Eye {
	h := openness * eyeWidth
	ix := cx + v.X*eyeWidth/2
	iy := eyeY + v.Y*h/2
	return gaze.Eye{
		Inner:  gaze.Point{X: cx + eyeWidth/2, Y: eyeY},
		Outer:  gaze.Point{X: cx - eyeWidth/2, Y: eyeY},
		Top:    gaze.Point{X: cx, Y: eyeY - h/2},
		Bottom: gaze.Point{X: cx, Y: eyeY + h/2},
		Iris: []gaze.Point{
			{X: ix - irisR, Y: iy},
			{X: ix, Y: iy - irisR},
			{X: ix + irisR, Y: iy},
			{X: ix, Y: iy + irisR},
		},
	}
}

// Frame returns landmarks whose extracted vector is v (before clipping) and
// whose openness is openness.
func Frame(v gaze.Vector, openness float64) *gaze.LandmarkFrame {
	return &gaze.LandmarkFrame{
		Left:   eye(leftCX, v, openness),
		Right:  eye(rightCX, v, openness),
		Width:  Width,
		Height: Height,
	}
}

// Looking returns open-eyed landmarks classified as d.
func Looking(d gaze.Direction) *gaze.LandmarkFrame {
	if d == gaze.NoFace {
		return nil
	}
	if d == gaze.EyesClosed {
		return Frame(LookCenter, ClosedEyes)
	}
	return Frame(VectorFor(d), OpenEyes)
}

// Mesh returns a normalized selfie-view face mesh carrying the same eye
// geometry as Frame(v, openness).
func Mesh(v gaze.Vector, openness float64) [][2]float64 {
	f := Frame(v, openness)
	mesh := make([][2]float64, gaze.MeshSize)
	for i := range mesh {
		mesh[i] = [2]float64{0.5, 0.5}
	}
	set := func(i int, p gaze.Point) {
		mesh[i] = [2]float64{p.X / Width, p.Y / Height}
	}
	set(133, f.Left.Inner)
	set(33, f.Left.Outer)
	set(159, f.Left.Top)
	set(145, f.Left.Bottom)
	set(362, f.Right.Inner)
	set(263, f.Right.Outer)
	set(386, f.Right.Top)
	set(374, f.Right.Bottom)
	for i, p := range f.Left.Iris {
		set(474+i, p)
	}
	for i, p := range f.Right.Iris {
		set(469+i, p)
	}
	return mesh
}
