package gaze

// Smoother is an exponential moving average over gaze vectors.
type Smoother struct {
	alpha float64 // 0-1, higher = more weight on the new reading
	value Vector
	ready bool
}

// NewSmoother creates a smoother. alpha is clamped to [0, 1].
func NewSmoother(alpha float64) *Smoother {
	return &Smoother{alpha: clamp(alpha, 0, 1)}
}

// Update blends v into the average and returns the new value.
// The first update after construction or Reset seeds the average with v.
func (s *Smoother) Update(v Vector) Vector {
	if !s.ready {
		s.value = v
		s.ready = true
		return s.value
	}
	s.value = Vector{
		X: s.alpha*v.X + (1-s.alpha)*s.value.X,
		Y: s.alpha*v.Y + (1-s.alpha)*s.value.Y,
	}
	return s.value
}

// Value returns the current average and whether it has been seeded.
func (s *Smoother) Value() (Vector, bool) {
	return s.value, s.ready
}

// Ready reports whether the average has been seeded.
func (s *Smoother) Ready() bool {
	return s.ready
}

// Alpha returns the smoothing factor.
func (s *Smoother) Alpha() float64 {
	return s.alpha
}

// Reset drops the average; the next Update re-seeds it.
func (s *Smoother) Reset() {
	s.value = Vector{}
	s.ready = false
}
