package drill

import "errors"

var (
	// ErrInvalidConfig is returned when a drill configuration fails validation.
	ErrInvalidConfig = errors.New("drill: invalid config")

	// ErrSourceClosed is returned when the frame source ends before the
	// drill is complete.
	ErrSourceClosed = errors.New("drill: frame source closed")
)
