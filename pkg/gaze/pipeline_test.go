package gaze_test

import (
	"testing"

	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/gaze/synth"
)

func TestPipelineDirections(t *testing.T) {
	for _, d := range []gaze.Direction{gaze.Center, gaze.Left, gaze.Right, gaze.Up, gaze.Down, gaze.EyesClosed, gaze.NoFace} {
		t.Run(string(d), func(t *testing.T) {
			p := gaze.NewPipeline(gaze.DefaultPipelineConfig())
			var r gaze.Reading
			for range 5 {
				r = p.Process(synth.Looking(d))
			}
			if r.Direction != d {
				t.Errorf("direction = %s, want %s", r.Direction, d)
			}
			if r.Face != (d != gaze.NoFace) {
				t.Errorf("face = %v", r.Face)
			}
		})
	}
}

func TestPipelineNoFaceKeepsSmoothing(t *testing.T) {
	p := gaze.NewPipeline(gaze.PipelineConfig{Smoothing: 0.5, Thresholds: gaze.DefaultThresholds()})
	p.Process(synth.Looking(gaze.Left))
	before := p.Process(synth.Looking(gaze.Left)).Smoothed

	if r := p.Process(nil); r.Direction != gaze.NoFace {
		t.Fatalf("direction = %s, want NO_FACE", r.Direction)
	}
	after := p.Process(synth.Looking(gaze.Left)).Smoothed
	if !near(after.X, before.X) {
		t.Errorf("smoothed X drifted across NO_FACE: %v -> %v", before.X, after.X)
	}
}

func TestPipelineCalibration(t *testing.T) {
	p := gaze.NewPipeline(gaze.DefaultPipelineConfig())
	if p.Calibrate() {
		t.Fatal("Calibrate should be a no-op before any face")
	}

	// A user whose neutral gaze reads as RIGHT.
	neutral := synth.Frame(gaze.Vector{X: 0.5, Y: 0}, synth.OpenEyes)
	for range 10 {
		p.Process(neutral)
	}
	if r := p.Process(neutral); r.Direction != gaze.Right {
		t.Fatalf("uncalibrated = %s, want RIGHT", r.Direction)
	}

	if !p.Calibrate() {
		t.Fatal("Calibrate should succeed")
	}
	if r := p.Process(neutral); r.Direction != gaze.Center {
		t.Errorf("calibrated = %s, want CENTER", r.Direction)
	}
	if off := p.Offset(); !near(off.X, 0.5) {
		t.Errorf("offset = %+v, want X=0.5", off)
	}

	p.Reset()
	if p.Offset() != (gaze.Vector{}) {
		t.Errorf("offset after reset = %+v", p.Offset())
	}
	if r := p.Process(neutral); r.Direction != gaze.Right {
		t.Errorf("after reset = %s, want RIGHT", r.Direction)
	}
}
