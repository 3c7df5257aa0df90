package drill

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// Progress reports the state of a drill after one frame.
type Progress struct {
	Target    gaze.Direction `json:"target"`         // Target the frame was scored against
	Label     gaze.Direction `json:"label"`          // Classified direction for the frame
	Success   bool           `json:"success"`        // Target confirmed on this frame
	Remaining time.Duration  `json:"remaining"`      // On-target time still required
	Index     int            `json:"index"`          // Position of Target in the sequence
	Total     int            `json:"total"`          // Sequence length
	Next      gaze.Direction `json:"next,omitempty"` // Newly activated target, if any
	Done      bool           `json:"done"`           // All targets confirmed
}

// Sequencer owns the target order of one drill and the hold for the active
// target. The index only moves forward, one step per confirmed hold.
type Sequencer struct {
	targets   []gaze.Direction
	index     int
	hold      time.Duration
	maxJitter time.Duration
	active    *Hold
}

// NewSequencer draws cfg.Targets directions from rng. The order is fixed for
// the life of the sequencer.
func NewSequencer(cfg Config, rng RandomSource) *Sequencer {
	if rng == nil {
		rng = SystemRandom()
	}
	s := &Sequencer{
		targets:   drawTargets(cfg.Targets, rng),
		hold:      cfg.Hold,
		maxJitter: cfg.Jitter,
	}
	if len(s.targets) > 0 {
		s.active = NewHold(s.targets[0], s.hold, s.maxJitter)
	}
	return s
}

// Targets returns a copy of the drawn sequence.
func (s *Sequencer) Targets() []gaze.Direction {
	out := make([]gaze.Direction, len(s.targets))
	copy(out, s.targets)
	return out
}

// Current returns the active target, or false once the drill is complete.
func (s *Sequencer) Current() (gaze.Direction, bool) {
	if s.Done() {
		return "", false
	}
	return s.targets[s.index], true
}

// Index returns the number of confirmed targets.
func (s *Sequencer) Index() int { return s.index }

// Len returns the sequence length.
func (s *Sequencer) Len() int { return len(s.targets) }

// Done reports whether every target has been confirmed.
func (s *Sequencer) Done() bool { return s.index >= len(s.targets) }

// Hold returns the hold for the active target, or nil when done.
func (s *Sequencer) Hold() *Hold { return s.active }

// Update scores label against the active target. When the hold succeeds the
// sequencer advances and starts a fresh hold for the next target.
func (s *Sequencer) Update(label gaze.Direction, now time.Duration) Progress {
	if s.Done() {
		return Progress{Label: label, Index: s.index, Total: len(s.targets), Done: true}
	}

	target := s.targets[s.index]
	ok, remaining := s.active.Update(label, now)
	p := Progress{
		Target:    target,
		Label:     label,
		Success:   ok,
		Remaining: remaining,
		Index:     s.index,
		Total:     len(s.targets),
	}
	if !ok {
		return p
	}

	s.index++
	if s.Done() {
		s.active = nil
		p.Done = true
		return p
	}
	p.Next = s.targets[s.index]
	s.active = NewHold(p.Next, s.hold, s.maxJitter)
	return p
}

// String renders the progress as a one-line overlay caption.
func (p Progress) String() string {
	if p.Done {
		return fmt.Sprintf("Done %d/%d", p.Total, p.Total)
	}
	return fmt.Sprintf("Target=%s Remain=%4.1fs dir=%s", p.Target, p.Remaining.Seconds(), p.Label)
}
