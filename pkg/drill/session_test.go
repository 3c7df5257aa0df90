package drill

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/gaze/synth"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

// sessionConfig has no smoothing lag so each frame classifies on its own.
func sessionConfig(k int, hold time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Targets = k
	cfg.Hold = hold
	cfg.Smoothing = 1
	return cfg
}

// looking returns frames looking at d every 100ms over [from, to].
func looking(d gaze.Direction, from, to int) []Frame {
	var out []Frame
	for at := from; at <= to; at += 100 {
		out = append(out, Frame{Landmarks: synth.Looking(d), At: ms(at)})
	}
	return out
}

// gazing returns frames with a fixed raw vector every 100ms over [from, to].
func gazing(v gaze.Vector, from, to int) []Frame {
	var out []Frame
	for at := from; at <= to; at += 100 {
		out = append(out, Frame{Landmarks: synth.Frame(v, synth.OpenEyes), At: ms(at)})
	}
	return out
}

func concat(parts ...[]Frame) []Frame {
	var out []Frame
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestSessionPull(t *testing.T) {
	src := NewSliceSource(concat(looking(gaze.Left, 0, 1000), looking(gaze.Up, 1100, 2100))...)
	s, err := NewSession(sessionConfig(2, time.Second), src,
		WithRandomSource(FixedTargets(gaze.Left, gaze.Up)), quiet)
	require.NoError(t, err)
	ctx := context.Background()

	target, ok, err := s.Next(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, gaze.Left, target)
	assert.Equal(t, 0, src.pos, "the first target is announced before any frame")

	target, ok, err = s.Next(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, gaze.Up, target)
	assert.Equal(t, 11, src.pos)

	target, ok, err = s.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, target)

	// Exhausted sequences stay exhausted.
	_, ok, err = s.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	sum := s.Summary()
	assert.True(t, sum.Done)
	assert.Equal(t, 2, sum.Confirmed)
	assert.Equal(t, 22, sum.Frames)
	assert.False(t, sum.FinishedAt.IsZero())
	assert.Equal(t, []gaze.Direction{gaze.Left, gaze.Up}, sum.Targets)
}

func TestSessionSourceExhausted(t *testing.T) {
	src := NewSliceSource(looking(gaze.Right, 0, 500)...)
	s, err := NewSession(sessionConfig(1, time.Second), src,
		WithRandomSource(FixedTargets(gaze.Right)), quiet)
	require.NoError(t, err)

	_, _, _ = s.Next(context.Background())
	_, ok, err := s.Next(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrSourceClosed)
	assert.False(t, s.Summary().Done)
	assert.Equal(t, 6, s.Summary().Frames)
}

func TestSessionCancel(t *testing.T) {
	src := NewChanSource(4)
	s, err := NewSession(sessionConfig(1, time.Second), src, quiet)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, _, err = s.Next(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Next(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after cancel")
	}
}

// A user whose neutral gaze reads RIGHT can only hold a slight glance left
// once calibrated.
func TestSessionCalibrateBetweenFrames(t *testing.T) {
	neutral := gaze.Vector{X: 0.5}
	glance := gaze.Vector{X: 0.1}
	frames := concat(gazing(neutral, 0, 300), gazing(glance, 400, 1000))

	var readings []gaze.Reading
	var s *Session
	observer := func(p Progress, r gaze.Reading) {
		readings = append(readings, r)
		if len(readings) == 1 {
			s.Calibrate()
		}
	}

	s, err := NewSession(sessionConfig(1, 500*time.Millisecond), NewSliceSource(frames...),
		WithRandomSource(FixedTargets(gaze.Left)), WithObserver(observer), quiet)
	require.NoError(t, err)

	_, _, _ = s.Next(context.Background())
	_, ok, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.GreaterOrEqual(t, len(readings), 2)
	assert.Equal(t, gaze.Right, readings[0].Direction, "first frame is read before calibration")
	assert.Equal(t, gaze.Center, readings[1].Direction, "calibration applies before the next frame")
	assert.InDelta(t, 0.5, s.Summary().Offset.X, 1e-9)
	assert.True(t, s.Summary().Done)
}

func TestSessionWithoutCalibrationFails(t *testing.T) {
	frames := concat(gazing(gaze.Vector{X: 0.5}, 0, 300), gazing(gaze.Vector{X: 0.1}, 400, 1000))
	s, err := NewSession(sessionConfig(1, 500*time.Millisecond), NewSliceSource(frames...),
		WithRandomSource(FixedTargets(gaze.Left)), quiet)
	require.NoError(t, err)

	_, _, _ = s.Next(context.Background())
	_, _, err = s.Next(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestSessionReset(t *testing.T) {
	var readings []gaze.Reading
	var s *Session
	observer := func(p Progress, r gaze.Reading) {
		readings = append(readings, r)
		switch len(readings) {
		case 1:
			s.Calibrate()
		case 2:
			s.Reset()
		}
	}

	s, err := NewSession(sessionConfig(1, time.Second), NewSliceSource(gazing(gaze.Vector{X: 0.5}, 0, 300)...),
		WithRandomSource(FixedTargets(gaze.Up)), WithObserver(observer), quiet)
	require.NoError(t, err)

	_, _, _ = s.Next(context.Background())
	_, _, err = s.Next(context.Background())
	require.ErrorIs(t, err, ErrSourceClosed)

	require.Len(t, readings, 4)
	assert.Equal(t, gaze.Center, readings[1].Direction)
	assert.Equal(t, gaze.Right, readings[2].Direction)
	assert.Equal(t, gaze.Vector{}, s.Summary().Offset)
}

func TestSessionControlQueueFull(t *testing.T) {
	s, err := NewSession(sessionConfig(1, time.Second), NewSliceSource(), quiet)
	require.NoError(t, err)

	for range controlBuffer * 2 {
		s.Calibrate()
	}
	assert.Len(t, s.controls, controlBuffer)
}

func TestSessionInvalidConfig(t *testing.T) {
	cfg := sessionConfig(0, time.Second)
	_, err := NewSession(cfg, NewSliceSource(), quiet)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSessionOptions(t *testing.T) {
	s, err := NewSession(sessionConfig(3, time.Second), NewSliceSource(),
		WithID("drill-1"), WithRandomSource(SeededRandom(7)), quiet)
	require.NoError(t, err)

	assert.Equal(t, "drill-1", s.ID())
	assert.Len(t, s.Targets(), 3)
	assert.Equal(t, 1.0, s.Config().Smoothing)
}

func TestControlString(t *testing.T) {
	assert.Equal(t, "calibrate", ControlCalibrate.String())
	assert.Equal(t, "reset", ControlReset.String())
	assert.Equal(t, "control(9)", Control(9).String())
}

func TestChanSourceDeliversBufferedAfterClose(t *testing.T) {
	src := NewChanSource(2)
	require.True(t, src.TryPush(Frame{At: ms(1)}))
	require.True(t, src.TryPush(Frame{At: ms(2)}))
	assert.False(t, src.TryPush(Frame{At: ms(3)}), "full buffer drops")

	src.Close()
	src.Close()
	assert.False(t, src.TryPush(Frame{}))
	assert.ErrorIs(t, src.Push(context.Background(), Frame{}), ErrSourceClosed)

	ctx := context.Background()
	f, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, ms(1), f.At)
	f, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, ms(2), f.At)

	_, err = src.Next(ctx)
	assert.True(t, errors.Is(err, ErrSourceClosed))
}

func TestChanSourcePushBlocksUntilCancel(t *testing.T) {
	src := NewChanSource(1)
	require.NoError(t, src.Push(context.Background(), Frame{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, src.Push(ctx, Frame{}), context.DeadlineExceeded)
}
