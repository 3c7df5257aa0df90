package replay

import (
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/gaze/synth"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// Segment is a stretch of synthetic frames looking one way.
type Segment struct {
	Look     gaze.Direction
	Duration time.Duration
}

// Synthesize writes frames at fps for each segment in turn, starting at t=0.
// It produces recordings for demos and tests without a camera.
func Synthesize(w *Writer, fps int, segments ...Segment) error {
	if fps <= 0 {
		fps = 30
	}
	step := time.Second / time.Duration(fps)
	var t time.Duration
	for _, seg := range segments {
		for end := t + seg.Duration; t < end; t += step {
			rec := protocol.LandmarksData{
				T:        t.Seconds(),
				Width:    synth.Width,
				Height:   synth.Height,
				Mirrored: true,
			}
			if lf := synth.Looking(seg.Look); lf != nil {
				openness := synth.OpenEyes
				if seg.Look == gaze.EyesClosed {
					openness = synth.ClosedEyes
				}
				rec.Face = true
				rec.Mesh = synth.Mesh(synth.VectorFor(seg.Look), openness)
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}
