package drill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestHoldFirstUpdateIsBaseline(t *testing.T) {
	h := NewHold(gaze.Left, 3*time.Second, ms(150))

	ok, remaining := h.Update(gaze.Left, ms(5000))
	assert.False(t, ok)
	assert.Equal(t, 3*time.Second, remaining)
	assert.Zero(t, h.Accumulated())
}

func TestHoldEndToEnd(t *testing.T) {
	h := NewHold(gaze.Left, 3*time.Second, ms(150))

	for _, at := range []int{0, 1000, 2000, 2900} {
		ok, _ := h.Update(gaze.Left, ms(at))
		require.False(t, ok, "t=%dms", at)
	}
	assert.Equal(t, ms(2900), h.Accumulated())
	assert.Equal(t, ms(100), h.Remaining())

	ok, remaining := h.Update(gaze.Left, ms(3000))
	assert.True(t, ok)
	assert.Zero(t, remaining)
	assert.Equal(t, 3*time.Second, h.Accumulated())
}

func TestHoldDwellAccumulation(t *testing.T) {
	h := NewHold(gaze.Up, time.Second, ms(150))
	h.Update(gaze.Up, 0)

	prev := time.Second
	for at := 100; at <= 1000; at += 100 {
		ok, remaining := h.Update(gaze.Up, ms(at))
		assert.LessOrEqual(t, remaining, prev, "remaining must not increase")
		prev = remaining
		if at < 1000 {
			require.False(t, ok, "confirmed early at %dms", at)
		} else {
			require.True(t, ok, "not confirmed when the sum reached the hold")
		}
	}
}

func TestHoldJitterPreservesProgress(t *testing.T) {
	h := NewHold(gaze.Left, 3*time.Second, ms(150))
	for _, at := range []int{0, 500, 1000} {
		h.Update(gaze.Left, ms(at))
	}
	require.Equal(t, time.Second, h.Accumulated())

	// RIGHT for 100ms, inside the 150ms tolerance.
	h.Update(gaze.Right, ms(1050))
	h.Update(gaze.Right, ms(1100))
	assert.Equal(t, time.Second, h.Accumulated(), "accum must be unchanged across the gap")
	assert.Equal(t, ms(100), h.Jitter())

	h.Update(gaze.Left, ms(1200))
	assert.Equal(t, ms(1100), h.Accumulated())
	assert.Zero(t, h.Jitter())
}

func TestHoldJitterOverflowResets(t *testing.T) {
	h := NewHold(gaze.Down, 3*time.Second, ms(150))
	h.Update(gaze.Down, 0)
	h.Update(gaze.Down, ms(2990))
	require.Equal(t, ms(2990), h.Accumulated())

	h.Update(gaze.NoFace, ms(3100))
	h.Update(gaze.NoFace, ms(3150))
	assert.Zero(t, h.Accumulated(), "a 160ms lapse must wipe progress")
	assert.Zero(t, h.Jitter())
	assert.Equal(t, 3*time.Second, h.Remaining())
}

func TestHoldJitterBoundaryIsTolerated(t *testing.T) {
	h := NewHold(gaze.Right, time.Second, ms(150))
	h.Update(gaze.Right, 0)
	h.Update(gaze.Right, ms(500))
	h.Update(gaze.EyesClosed, ms(650))

	assert.Equal(t, ms(500), h.Accumulated(), "a lapse of exactly the tolerance is kept")
}

func TestHoldNonMonotonicClock(t *testing.T) {
	h := NewHold(gaze.Left, time.Second, ms(150))
	h.Update(gaze.Left, ms(500))
	h.Update(gaze.Left, ms(400))

	assert.Zero(t, h.Accumulated())
}

func TestHoldIgnoresUpdatesAfterConfirm(t *testing.T) {
	h := NewHold(gaze.Left, ms(100), ms(50))
	h.Update(gaze.Left, 0)
	ok, _ := h.Update(gaze.Left, ms(100))
	require.True(t, ok)

	ok, remaining := h.Update(gaze.Right, ms(1000))
	assert.True(t, ok)
	assert.Zero(t, remaining)
	assert.True(t, h.Confirmed())
}
