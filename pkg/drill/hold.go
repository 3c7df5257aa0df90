package drill

import (
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// Hold tracks how long the user has looked at one target.
//
// On-target time accumulates across frames. Off-target time is tolerated up
// to maxJitter; a longer lapse wipes all accumulated progress.
type Hold struct {
	target    gaze.Direction
	hold      time.Duration
	maxJitter time.Duration

	accum  time.Duration
	jitter time.Duration

	last      time.Duration
	started   bool
	confirmed bool
}

// NewHold creates a hold for target.
func NewHold(target gaze.Direction, hold, maxJitter time.Duration) *Hold {
	return &Hold{
		target:    target,
		hold:      hold,
		maxJitter: maxJitter,
	}
}

// Update records the label observed at now and returns whether the hold is
// complete and how much on-target time is still required.
//
// The first update only establishes the clock baseline.
func (h *Hold) Update(label gaze.Direction, now time.Duration) (bool, time.Duration) {
	if h.confirmed {
		return true, 0
	}
	if !h.started {
		h.started = true
		h.last = now
		return false, h.hold
	}

	dt := now - h.last
	if dt < 0 {
		dt = 0
	}
	h.last = now

	if label == h.target {
		h.accum += dt
		h.jitter = 0
	} else {
		h.jitter += dt
		if h.jitter > h.maxJitter {
			h.accum = 0
			h.jitter = 0
		}
	}

	h.confirmed = h.accum >= h.hold
	return h.confirmed, h.Remaining()
}

// Remaining returns the on-target time still required.
func (h *Hold) Remaining() time.Duration {
	if r := h.hold - h.accum; r > 0 {
		return r
	}
	return 0
}

// Target returns the direction being held.
func (h *Hold) Target() gaze.Direction { return h.target }

// Accumulated returns the on-target time so far.
func (h *Hold) Accumulated() time.Duration { return h.accum }

// Jitter returns the current off-target lapse.
func (h *Hold) Jitter() time.Duration { return h.jitter }

// Confirmed reports whether the hold has succeeded.
func (h *Hold) Confirmed() bool { return h.confirmed }
