// Package drill runs randomized gaze-direction challenges: a sequence of
// targets, each confirmed once the user has held it for the dwell time.
package drill

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

var validate = validator.New()

// Config holds the parameters of one drill run.
type Config struct {
	// Sequence
	Targets int `json:"targets" validate:"gte=1,lte=100"` // Number of targets to draw

	// Classification dead zone (calibrated gaze units)
	TauX float64 `json:"tau_x" validate:"gt=0,lte=2"`
	TauY float64 `json:"tau_y" validate:"gt=0,lte=2"`

	// Dwell
	Hold   time.Duration `json:"hold" validate:"gt=0"`    // Required on-target time
	Jitter time.Duration `json:"jitter" validate:"gte=0"` // Tolerated off-target lapse

	// Smoothing
	Smoothing float64 `json:"smoothing"` // EMA factor, clamped to [0, 1] by Normalize
}

// DefaultConfig returns the standard drill: five targets held for three seconds.
func DefaultConfig() Config {
	return Config{
		Targets:   5,
		TauX:      0.25,
		TauY:      0.20,
		Hold:      3 * time.Second,
		Jitter:    150 * time.Millisecond,
		Smoothing: 0.5,
	}
}

// RelaxedConfig widens the dead zone for users whose gaze estimate is noisy.
func RelaxedConfig() Config {
	cfg := DefaultConfig()
	cfg.TauX = 0.7
	cfg.TauY = 0.55
	return cfg
}

// Normalize clamps the smoothing factor into range.
func (c Config) Normalize() Config {
	switch {
	case c.Smoothing < 0:
		c.Smoothing = 0
	case c.Smoothing > 1:
		c.Smoothing = 1
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Pipeline returns the gaze pipeline settings for this drill.
// The eye-open threshold is fixed.
func (c Config) Pipeline() gaze.PipelineConfig {
	return gaze.PipelineConfig{
		Smoothing: c.Smoothing,
		Thresholds: gaze.Thresholds{
			TauX:    c.TauX,
			TauY:    c.TauY,
			EyeOpen: gaze.EyeOpenThreshold,
		},
	}
}
