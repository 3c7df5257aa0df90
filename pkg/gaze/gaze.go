// Package gaze turns per-frame eye landmarks into a discrete gaze direction.
//
// The chain is: LandmarkFrame → Extract → Smoother → Calibrator → Classify.
// Pipeline wires the chain together for a single drill run.
package gaze

import (
	"fmt"
	"strings"
)

// Point is a 2-D position in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Eye holds the landmarks of one eye.
type Eye struct {
	Inner  Point   `json:"inner"`
	Outer  Point   `json:"outer"`
	Top    Point   `json:"top"`
	Bottom Point   `json:"bottom"`
	Iris   []Point `json:"iris"` // Iris ring points
}

// LandmarkFrame is the eye geometry detected in one video frame.
// A nil *LandmarkFrame means no face was detected.
type LandmarkFrame struct {
	Left   Eye `json:"left"`
	Right  Eye `json:"right"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Vector is a normalized gaze displacement. Negative X is the user's left
// (mirrored feed), negative Y is up.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y}
}

// Signal is what Extract derives from one frame.
type Signal struct {
	Vector   Vector  `json:"vector"`
	Openness float64 `json:"openness"` // eye-box height / width, averaged over both eyes
}

// Direction is a discrete gaze label.
type Direction string

const (
	Center     Direction = "CENTER"
	Left       Direction = "LEFT"
	Right      Direction = "RIGHT"
	Up         Direction = "UP"
	Down       Direction = "DOWN"
	EyesClosed Direction = "EYES_CLOSED"
	NoFace     Direction = "NO_FACE"
)

// Targets are the directions a drill can ask the user to hold.
var Targets = []Direction{Left, Right, Up, Down}

// IsTarget reports whether d is one of the drillable directions.
func (d Direction) IsTarget() bool {
	switch d {
	case Left, Right, Up, Down:
		return true
	}
	return false
}

// ParseDirection converts a label such as "left" into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case Center, Left, Right, Up, Down, EyesClosed, NoFace:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}
