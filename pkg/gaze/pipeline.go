package gaze

// Reading is the outcome of processing one frame.
type Reading struct {
	Direction  Direction `json:"direction"`
	Face       bool      `json:"face"`
	Raw        Vector    `json:"raw"`
	Smoothed   Vector    `json:"smoothed"`
	Calibrated Vector    `json:"calibrated"`
	Openness   float64   `json:"openness"`
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Smoothing  float64 // EMA factor, clamped to [0, 1]
	Thresholds Thresholds
}

// DefaultPipelineConfig returns the standard pipeline settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Smoothing:  0.5,
		Thresholds: DefaultThresholds(),
	}
}

// Pipeline runs extraction, smoothing, calibration and classification for a
// single drill run. It is not safe for concurrent use.
type Pipeline struct {
	smoother   *Smoother
	calibrator *Calibrator
	thresholds Thresholds
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	s := NewSmoother(cfg.Smoothing)
	return &Pipeline{
		smoother:   s,
		calibrator: NewCalibrator(s),
		thresholds: cfg.Thresholds,
	}
}

// Process classifies one frame. A nil frame yields NoFace and leaves the
// smoothing state untouched.
func (p *Pipeline) Process(frame *LandmarkFrame) Reading {
	sig, ok := Extract(frame)
	if !ok {
		return Reading{Direction: NoFace}
	}

	smoothed := p.smoother.Update(sig.Vector)
	calibrated := p.calibrator.Apply(smoothed)

	return Reading{
		Direction:  Classify(calibrated, sig.Openness, p.thresholds),
		Face:       true,
		Raw:        sig.Vector,
		Smoothed:   smoothed,
		Calibrated: calibrated,
		Openness:   sig.Openness,
	}
}

// Calibrate captures the current smoothed vector as the neutral offset.
// Returns false (no-op) until a face has been seen.
func (p *Pipeline) Calibrate() bool {
	return p.calibrator.Calibrate()
}

// Reset clears the calibration offset and the smoothing state.
func (p *Pipeline) Reset() {
	p.calibrator.Reset()
}

// Offset returns the active calibration offset.
func (p *Pipeline) Offset() Vector {
	return p.calibrator.Offset()
}

// Thresholds returns the classifier thresholds.
func (p *Pipeline) Thresholds() Thresholds {
	return p.thresholds
}
