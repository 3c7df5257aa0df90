package drill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/debug"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// Control is a user event applied between frames.
type Control int

const (
	// ControlCalibrate captures the current smoothed gaze as neutral.
	ControlCalibrate Control = iota
	// ControlReset clears calibration and smoothing.
	ControlReset
)

func (c Control) String() string {
	switch c {
	case ControlCalibrate:
		return "calibrate"
	case ControlReset:
		return "reset"
	}
	return fmt.Sprintf("control(%d)", int(c))
}

// controlBuffer bounds pending control events.
const controlBuffer = 16

// Observer receives per-frame feedback.
type Observer func(Progress, gaze.Reading)

// Summary describes a drill run.
type Summary struct {
	ID         string           `json:"id"`
	Targets    []gaze.Direction `json:"targets"`
	Confirmed  int              `json:"confirmed"`
	Frames     int              `json:"frames"`
	Done       bool             `json:"done"`
	Offset     gaze.Vector      `json:"offset"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at,omitzero"`
}

// Session drives one drill run from a frame source.
//
// Next is the pull interface: it yields each newly active target and reports
// exhaustion once the last target is confirmed. Only Next's goroutine touches
// the gaze pipeline; Calibrate and Reset are queued and applied before the
// next frame is processed.
type Session struct {
	id       string
	cfg      Config
	src      FrameSource
	rng      RandomSource
	pipeline *gaze.Pipeline
	seq      *Sequencer
	controls chan Control
	observer Observer
	logger   *slog.Logger

	announced  bool
	frames     int
	startedAt  time.Time
	finishedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithObserver sets the per-frame feedback hook.
func WithObserver(fn Observer) Option {
	return func(s *Session) { s.observer = fn }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithRandomSource sets the source used to draw targets.
func WithRandomSource(rng RandomSource) Option {
	return func(s *Session) { s.rng = rng }
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession validates cfg, draws the target sequence and returns a session
// reading from src.
func NewSession(cfg Config, src FrameSource, opts ...Option) (*Session, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		src:       src,
		rng:       SystemRandom(),
		controls:  make(chan Control, controlBuffer),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.With("component", "drill")
	}
	s.logger = s.logger.With("session", s.id)

	s.pipeline = gaze.NewPipeline(cfg.Pipeline())
	s.seq = NewSequencer(cfg, s.rng)

	s.logger.Info("drill sequence", "targets", s.seq.Targets(),
		"hold", cfg.Hold, "jitter", cfg.Jitter)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Config returns the normalized configuration.
func (s *Session) Config() Config { return s.cfg }

// Targets returns the drawn target order.
func (s *Session) Targets() []gaze.Direction { return s.seq.Targets() }

// Calibrate requests a calibration before the next frame.
func (s *Session) Calibrate() { s.enqueue(ControlCalibrate) }

// Reset requests a calibration and smoothing reset before the next frame.
func (s *Session) Reset() { s.enqueue(ControlReset) }

func (s *Session) enqueue(c Control) {
	select {
	case s.controls <- c:
	default:
		s.logger.Warn("control queue full, dropping event", "control", c)
	}
}

// Next returns the next target to hold. The first call returns the first
// target without consuming frames. Later calls consume frames until the
// active target is confirmed. ok is false once every target is confirmed.
func (s *Session) Next(ctx context.Context) (target gaze.Direction, ok bool, err error) {
	if !s.announced {
		s.announced = true
		target, ok = s.seq.Current()
		return target, ok, nil
	}

	for !s.seq.Done() {
		frame, err := s.src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrSourceClosed) {
				return "", false, fmt.Errorf("%w after %d frames (%d/%d confirmed)",
					ErrSourceClosed, s.frames, s.seq.Index(), s.seq.Len())
			}
			return "", false, fmt.Errorf("drill: read frame: %w", err)
		}

		p := s.step(frame)
		if !p.Success {
			continue
		}
		if p.Done {
			return "", false, nil
		}
		return p.Next, true, nil
	}
	return "", false, nil
}

// step applies pending controls and processes one frame.
func (s *Session) step(frame Frame) Progress {
	s.applyControls()

	reading := s.pipeline.Process(frame.Landmarks)
	p := s.seq.Update(reading.Direction, frame.At)
	s.frames++

	debug.TrackLog("gaze frame", "target", p.Target, "dir", reading.Direction,
		"remain", p.Remaining, "x", reading.Calibrated.X, "y", reading.Calibrated.Y)

	if p.Success {
		s.logger.Info("target confirmed", "target", p.Target,
			"index", p.Index+1, "total", p.Total, "hold", s.cfg.Hold)
		if p.Done {
			s.finishedAt = time.Now()
			s.logger.Info("drill complete", "frames", s.frames)
		}
	}
	if s.observer != nil {
		s.observer(p, reading)
	}
	return p
}

func (s *Session) applyControls() {
	for {
		select {
		case c := <-s.controls:
			switch c {
			case ControlCalibrate:
				if s.pipeline.Calibrate() {
					off := s.pipeline.Offset()
					s.logger.Info("calibrated", "off_x", off.X, "off_y", off.Y)
				} else {
					s.logger.Debug("calibration ignored, no gaze yet")
				}
			case ControlReset:
				s.pipeline.Reset()
				s.logger.Info("calibration and smoothing reset")
			}
		default:
			return
		}
	}
}

// Summary returns a snapshot of the run. It must be called from the
// goroutine that drives Next.
func (s *Session) Summary() Summary {
	return Summary{
		ID:         s.id,
		Targets:    s.seq.Targets(),
		Confirmed:  s.seq.Index(),
		Frames:     s.frames,
		Done:       s.seq.Done(),
		Offset:     s.pipeline.Offset(),
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
}
