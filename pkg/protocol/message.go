// Package protocol defines the WebSocket message types exchanged between a
// landmark client (camera + face mesh) and the gaze drill server.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Server messages
	TypeLandmarks MessageType = "landmarks" // Face-mesh landmarks for one frame
	TypeControl   MessageType = "control"   // Calibrate / reset

	// Server → Client messages
	TypeTarget   MessageType = "target"   // A new target became active
	TypeProgress MessageType = "progress" // Per-frame hold feedback
	TypeComplete MessageType = "complete" // Every target confirmed
	TypeError    MessageType = "error"    // Drill aborted

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// LandmarksData carries one frame from the landmark provider.
type LandmarksData struct {
	T        float64      `json:"t"`                  // Monotonic capture time in seconds
	Width    int          `json:"w"`                  // Frame width in pixels
	Height   int          `json:"h"`                  // Frame height in pixels
	Face     bool         `json:"face"`               // False when no face was detected
	Mesh     [][2]float64 `json:"mesh,omitempty"`     // Normalized face mesh (478 points)
	Mirrored bool         `json:"mirrored,omitempty"` // Mesh is already in selfie view
}

// ControlData requests a calibration action.
type ControlData struct {
	Action string `json:"action"` // "calibrate" or "reset"
}

// Control actions.
const (
	ActionCalibrate = "calibrate"
	ActionReset     = "reset"
)

// =============================================================================
// Server → Client Message Types
// =============================================================================

// TargetData announces the active target.
type TargetData struct {
	Session string `json:"session"`
	Target  string `json:"target"`
	Index   int    `json:"index"` // 0-based position in the sequence
	Total   int    `json:"total"`
}

// ProgressData is the per-frame hold feedback.
type ProgressData struct {
	Session   string  `json:"session"`
	Target    string  `json:"target"`
	Direction string  `json:"direction"`
	Remaining float64 `json:"remaining"` // Seconds of on-target time still required
	Index     int     `json:"index"`
	Total     int     `json:"total"`
	Success   bool    `json:"success"`
	Done      bool    `json:"done"`
	X         float64 `json:"x"` // Calibrated gaze
	Y         float64 `json:"y"`
	Openness  float64 `json:"openness"`
}

// CompleteData reports a finished drill.
type CompleteData struct {
	Session   string   `json:"session"`
	Targets   []string `json:"targets"`
	Frames    int      `json:"frames"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

// ErrorData reports a drill that stopped early.
type ErrorData struct {
	Session string `json:"session,omitempty"`
	Message string `json:"message"`
}

// =============================================================================
// REST payloads
// =============================================================================

// StartDrillRequest overrides the server defaults for one drill.
// Omitted fields keep their defaults.
type StartDrillRequest struct {
	Targets   *int     `json:"targets,omitempty"`
	TauX      *float64 `json:"tau_x,omitempty"`
	TauY      *float64 `json:"tau_y,omitempty"`
	HoldSec   *float64 `json:"hold_sec,omitempty"`
	JitterSec *float64 `json:"jitter_sec,omitempty"`
	EMA       *float64 `json:"ema,omitempty"`
	Sequence  []string `json:"sequence,omitempty"` // Fixed target order (practice mode)
}

// StartDrillResponse describes a started drill.
type StartDrillResponse struct {
	Session string   `json:"session"`
	Targets []string `json:"targets"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
