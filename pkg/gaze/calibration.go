package gaze

// Calibrator re-centers the user's neutral gaze by subtracting an offset
// captured from the smoother.
type Calibrator struct {
	smoother *Smoother
	offset   Vector
}

// NewCalibrator creates a calibrator bound to smoother.
func NewCalibrator(smoother *Smoother) *Calibrator {
	return &Calibrator{smoother: smoother}
}

// Calibrate sets the offset to the smoother's current value. It is a no-op
// returning false while the smoother has not been seeded.
func (c *Calibrator) Calibrate() bool {
	v, ok := c.smoother.Value()
	if !ok {
		return false
	}
	c.offset = v
	return true
}

// Apply returns v with the offset removed.
func (c *Calibrator) Apply(v Vector) Vector {
	return v.Sub(c.offset)
}

// Offset returns the current calibration offset.
func (c *Calibrator) Offset() Vector {
	return c.offset
}

// Reset zeroes the offset and resets the smoother so stale smoothing does
// not leak into the next baseline.
func (c *Calibrator) Reset() {
	c.offset = Vector{}
	c.smoother.Reset()
}
