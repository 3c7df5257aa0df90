package gaze

import "math"

const (
	// minExtent keeps eye-box ratios finite when the eyelids or corners collapse.
	minExtent = 1e-6

	// maxDisplacement clips each gaze component to ±maxDisplacement.
	maxDisplacement = 2.0
)

// eyeBox is the bounding geometry of one eye.
type eyeBox struct {
	cx, cy float64
	w, h   float64
}

func boxOf(e Eye) eyeBox {
	return eyeBox{
		cx: 0.5 * (e.Inner.X + e.Outer.X),
		cy: 0.5 * (e.Top.Y + e.Bottom.Y),
		w:  math.Max(minExtent, math.Abs(e.Inner.X-e.Outer.X)),
		h:  math.Max(minExtent, math.Abs(e.Top.Y-e.Bottom.Y)),
	}
}

// irisCentroid averages the iris ring. With no ring points the box center is used.
func irisCentroid(e Eye, box eyeBox) Point {
	if len(e.Iris) == 0 {
		return Point{X: box.cx, Y: box.cy}
	}
	var sx, sy float64
	for _, p := range e.Iris {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(e.Iris))
	return Point{X: sx / n, Y: sy / n}
}

// displacement returns the iris offset from the box center in half-box units,
// plus the eye openness (height / width).
func displacement(e Eye) (Vector, float64) {
	box := boxOf(e)
	iris := irisCentroid(e, box)
	v := Vector{
		X: (iris.X - box.cx) / (0.5 * box.w),
		Y: (iris.Y - box.cy) / (0.5 * box.h),
	}
	return v, box.h / box.w
}

// Extract computes the gaze vector and eye openness for one frame.
// It returns false when no face was detected.
func Extract(frame *LandmarkFrame) (Signal, bool) {
	if frame == nil {
		return Signal{}, false
	}

	lv, lOpen := displacement(frame.Left)
	rv, rOpen := displacement(frame.Right)

	return Signal{
		Vector: Vector{
			X: clamp(0.5*(lv.X+rv.X), -maxDisplacement, maxDisplacement),
			Y: clamp(0.5*(lv.Y+rv.Y), -maxDisplacement, maxDisplacement),
		},
		Openness: 0.5 * (lOpen + rOpen),
	}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
