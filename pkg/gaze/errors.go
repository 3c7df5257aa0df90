package gaze

import "errors"

var (
	// ErrMeshTooShort is returned when a face mesh lacks the iris landmarks.
	ErrMeshTooShort = errors.New("gaze: face mesh has too few points")

	// ErrUnknownDirection is returned when a direction label cannot be parsed.
	ErrUnknownDirection = errors.New("gaze: unknown direction")
)
