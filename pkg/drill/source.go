package drill

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// Frame is one observation from the landmark provider.
type Frame struct {
	Landmarks *gaze.LandmarkFrame // nil when no face was detected
	At        time.Duration       // Monotonic timestamp
}

// FrameSource delivers frames one at a time. Next returns io.EOF or
// ErrSourceClosed when no more frames will arrive.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
}

// ChanSource is a FrameSource fed by Push, for providers that deliver
// frames from another goroutine (e.g. a websocket).
type ChanSource struct {
	frames chan Frame
	done   chan struct{}
	once   sync.Once
}

// NewChanSource creates a source buffering up to size frames.
func NewChanSource(size int) *ChanSource {
	return &ChanSource{
		frames: make(chan Frame, size),
		done:   make(chan struct{}),
	}
}

// Push queues a frame, blocking while the buffer is full.
func (c *ChanSource) Push(ctx context.Context, f Frame) error {
	select {
	case <-c.done:
		return ErrSourceClosed
	default:
	}
	select {
	case c.frames <- f:
		return nil
	case <-c.done:
		return ErrSourceClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush queues a frame without blocking. It returns false if the frame
// was dropped.
func (c *ChanSource) TryPush(f Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.frames <- f:
		return true
	default:
		return false
	}
}

// Next returns the next queued frame. Frames queued before Close are still
// delivered.
func (c *ChanSource) Next(ctx context.Context) (Frame, error) {
	select {
	case f := <-c.frames:
		return f, nil
	default:
	}
	select {
	case f := <-c.frames:
		return f, nil
	case <-c.done:
		select {
		case f := <-c.frames:
			return f, nil
		default:
			return Frame{}, ErrSourceClosed
		}
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Close stops the source. It is safe to call more than once.
func (c *ChanSource) Close() {
	c.once.Do(func() { close(c.done) })
}

// SliceSource replays a fixed list of frames, then returns ErrSourceClosed.
type SliceSource struct {
	frames []Frame
	pos    int
}

// NewSliceSource creates a source over frames.
func NewSliceSource(frames ...Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

// Next returns the next frame.
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.pos >= len(s.frames) {
		return Frame{}, ErrSourceClosed
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}
