package protocol

import (
	"math"
	"time"

	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// =============================================================================
// Helper functions for creating and decoding messages
// =============================================================================

// NewLandmarksMessage creates a landmarks message. A nil mesh means no face.
func NewLandmarksMessage(t float64, width, height int, mesh [][2]float64, mirrored bool) (*Message, error) {
	return NewMessage(TypeLandmarks, LandmarksData{
		T:        t,
		Width:    width,
		Height:   height,
		Face:     mesh != nil,
		Mesh:     mesh,
		Mirrored: mirrored,
	})
}

// NewControlMessage creates a control message
func NewControlMessage(action string) (*Message, error) {
	return NewMessage(TypeControl, ControlData{Action: action})
}

// NewTargetMessage creates a target announcement
func NewTargetMessage(session string, target gaze.Direction, index, total int) (*Message, error) {
	return NewMessage(TypeTarget, TargetData{
		Session: session,
		Target:  string(target),
		Index:   index,
		Total:   total,
	})
}

// NewProgressMessage creates a per-frame progress message
func NewProgressMessage(session string, p drill.Progress, r gaze.Reading) (*Message, error) {
	return NewMessage(TypeProgress, ProgressData{
		Session:   session,
		Target:    string(p.Target),
		Direction: string(r.Direction),
		Remaining: p.Remaining.Seconds(),
		Index:     p.Index,
		Total:     p.Total,
		Success:   p.Success,
		Done:      p.Done,
		X:         r.Calibrated.X,
		Y:         r.Calibrated.Y,
		Openness:  r.Openness,
	})
}

// NewCompleteMessage creates a completion message from a session summary
func NewCompleteMessage(s drill.Summary) (*Message, error) {
	targets := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		targets[i] = string(t)
	}
	var elapsed int64
	if !s.FinishedAt.IsZero() {
		elapsed = s.FinishedAt.Sub(s.StartedAt).Milliseconds()
	}
	return NewMessage(TypeComplete, CompleteData{
		Session:   s.ID,
		Targets:   targets,
		Frames:    s.Frames,
		ElapsedMs: elapsed,
	})
}

// NewErrorMessage creates an error message
func NewErrorMessage(session string, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Session: session, Message: err.Error()})
}

// NewPongMessage answers a ping
func NewPongMessage(ping PingData) (*Message, error) {
	now := time.Now().UnixMilli()
	return NewMessage(TypePong, PongData{
		ID:        ping.ID,
		PingTS:    ping.Timestamp,
		PongTS:    now,
		LatencyMs: now - ping.Timestamp,
	})
}

// GetLandmarksData extracts landmarks data from a message
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetControlData extracts control data from a message
func (m *Message) GetControlData() (*ControlData, error) {
	var data ControlData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetProgressData extracts progress data from a message
func (m *Message) GetProgressData() (*ProgressData, error) {
	var data ProgressData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTargetData extracts target data from a message
func (m *Message) GetTargetData() (*TargetData, error) {
	var data TargetData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Frame converts landmarks into a drill frame. Meshes from an un-mirrored
// feed are flipped into selfie view.
func (d *LandmarksData) Frame() (drill.Frame, error) {
	at := time.Duration(math.Round(d.T * float64(time.Second)))
	if !d.Face || len(d.Mesh) == 0 {
		return drill.Frame{At: at}, nil
	}

	points := make([]gaze.MeshPoint, len(d.Mesh))
	for i, p := range d.Mesh {
		points[i] = gaze.MeshPoint{X: p[0], Y: p[1]}
	}
	lf, err := gaze.FromMesh(points, d.Width, d.Height)
	if err != nil {
		return drill.Frame{}, err
	}
	if !d.Mirrored {
		lf = gaze.Mirror(lf)
	}
	return drill.Frame{Landmarks: lf, At: at}, nil
}
