package gaze_test

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

func TestClassify(t *testing.T) {
	th := gaze.DefaultThresholds()
	tests := []struct {
		name     string
		v        gaze.Vector
		openness float64
		want     gaze.Direction
	}{
		{"center", gaze.Vector{X: 0, Y: 0}, 0.3, gaze.Center},
		{"inside dead zone", gaze.Vector{X: 0.24, Y: -0.19}, 0.3, gaze.Center},
		{"tau x boundary", gaze.Vector{X: 0.25, Y: 0}, 0.3, gaze.Right},
		{"tau y boundary", gaze.Vector{X: 0, Y: -0.20}, 0.3, gaze.Up},
		{"left", gaze.Vector{X: -0.8, Y: 0.1}, 0.3, gaze.Left},
		{"right", gaze.Vector{X: 0.8, Y: -0.1}, 0.3, gaze.Right},
		{"up", gaze.Vector{X: 0.1, Y: -0.8}, 0.3, gaze.Up},
		{"down", gaze.Vector{X: -0.1, Y: 0.8}, 0.3, gaze.Down},
		{"tie goes horizontal", gaze.Vector{X: -0.5, Y: 0.5}, 0.3, gaze.Left},
		{"closed wins", gaze.Vector{X: 0.9, Y: 0}, 0.1, gaze.EyesClosed},
		{"just open", gaze.Vector{X: 0, Y: 0}, 0.18, gaze.Center},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gaze.Classify(tt.v, tt.openness, th); got != tt.want {
				t.Errorf("Classify(%+v, %v) = %s, want %s", tt.v, tt.openness, got, tt.want)
			}
		})
	}
}

// A classifier never labels a point inside the dead zone as a direction and
// never labels a point outside it as CENTER.
func TestClassifyDeadZone(t *testing.T) {
	th := gaze.Thresholds{TauX: 0.3, TauY: 0.2, EyeOpen: gaze.EyeOpenThreshold}
	for x := -1.0; x <= 1.0; x += 0.05 {
		for y := -1.0; y <= 1.0; y += 0.05 {
			got := gaze.Classify(gaze.Vector{X: x, Y: y}, 0.3, th)
			inside := x > -th.TauX && x < th.TauX && y > -th.TauY && y < th.TauY
			if inside != (got == gaze.Center) {
				t.Fatalf("Classify(%v, %v) = %s, inside=%v", x, y, got, inside)
			}
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want gaze.Direction
	}{
		{"left", gaze.Left},
		{" UP ", gaze.Up},
		{"eyes_closed", gaze.EyesClosed},
		{"NO_FACE", gaze.NoFace},
	}
	for _, tt := range tests {
		got, err := gaze.ParseDirection(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseDirection(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}

	if _, err := gaze.ParseDirection("sideways"); !errors.Is(err, gaze.ErrUnknownDirection) {
		t.Errorf("err = %v, want ErrUnknownDirection", err)
	}
}

func TestIsTarget(t *testing.T) {
	for _, d := range gaze.Targets {
		if !d.IsTarget() {
			t.Errorf("%s should be a target", d)
		}
	}
	for _, d := range []gaze.Direction{gaze.Center, gaze.EyesClosed, gaze.NoFace} {
		if d.IsTarget() {
			t.Errorf("%s should not be a target", d)
		}
	}
}
