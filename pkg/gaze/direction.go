package gaze

import "math"

// EyeOpenThreshold is the openness ratio below which the eyes count as closed.
const EyeOpenThreshold = 0.18

// Thresholds configure the classifier.
type Thresholds struct {
	TauX    float64 // Horizontal CENTER dead zone
	TauY    float64 // Vertical CENTER dead zone
	EyeOpen float64 // Openness below this is EYES_CLOSED
}

// DefaultThresholds returns the standard dead zone.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TauX:    0.25,
		TauY:    0.20,
		EyeOpen: EyeOpenThreshold,
	}
}

// Classify maps a calibrated vector and eye openness to a direction.
// It never returns NoFace; the caller decides that before extraction.
func Classify(v Vector, openness float64, th Thresholds) Direction {
	if openness < th.EyeOpen {
		return EyesClosed
	}

	ax, ay := math.Abs(v.X), math.Abs(v.Y)
	if ax < th.TauX && ay < th.TauY {
		return Center
	}
	if ax >= ay {
		if v.X < 0 {
			return Left
		}
		return Right
	}
	if v.Y < 0 {
		return Up
	}
	return Down
}
