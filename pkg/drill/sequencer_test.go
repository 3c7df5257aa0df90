package drill

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

func testConfig(k int) Config {
	cfg := DefaultConfig()
	cfg.Targets = k
	cfg.Hold = time.Second
	return cfg
}

// confirm holds the active target long enough to pass, starting at *now.
func confirm(s *Sequencer, now *time.Duration) Progress {
	target, _ := s.Current()
	var p Progress
	for i := 0; i <= 11; i++ {
		p = s.Update(target, *now)
		*now += 100 * time.Millisecond
		if p.Success {
			break
		}
	}
	return p
}

func TestFixedTargets(t *testing.T) {
	want := []gaze.Direction{gaze.Up, gaze.Left, gaze.Left, gaze.Down, gaze.Right}
	s := NewSequencer(testConfig(len(want)), FixedTargets(want...))

	if diff := cmp.Diff(want, s.Targets()); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestSeededRandomIsDeterministic(t *testing.T) {
	a := NewSequencer(testConfig(20), SeededRandom(42)).Targets()
	b := NewSequencer(testConfig(20), SeededRandom(42)).Targets()

	assert.Empty(t, cmp.Diff(a, b))
	for _, d := range a {
		assert.True(t, d.IsTarget(), "drew non-target %s", d)
	}
}

func TestSequencerTermination(t *testing.T) {
	order := []gaze.Direction{gaze.Left, gaze.Right, gaze.Up, gaze.Down, gaze.Left}
	s := NewSequencer(testConfig(5), FixedTargets(order...))

	var now time.Duration
	var activations []gaze.Direction
	first, ok := s.Current()
	require.True(t, ok)
	activations = append(activations, first)

	for i := range order {
		p := confirm(s, &now)
		require.True(t, p.Success, "target %d not confirmed", i)
		assert.Equal(t, i, p.Index)
		if p.Next != "" {
			activations = append(activations, p.Next)
		}
		assert.Equal(t, i == len(order)-1, p.Done)
		assert.Equal(t, i+1, s.Index())
	}

	assert.Empty(t, cmp.Diff(order, activations))
	assert.True(t, s.Done())
	assert.Nil(t, s.Hold())

	_, ok = s.Current()
	assert.False(t, ok)
	p := s.Update(gaze.Left, now)
	assert.True(t, p.Done)
	assert.False(t, p.Success)
	assert.Empty(t, p.Next)
}

func TestSequencerWrongLabelDoesNotAdvance(t *testing.T) {
	s := NewSequencer(testConfig(2), FixedTargets(gaze.Up, gaze.Down))
	for at := 0; at <= 5000; at += 100 {
		p := s.Update(gaze.Left, ms(at))
		require.False(t, p.Success)
	}
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, time.Second, s.Hold().Remaining())
}

func TestProgressString(t *testing.T) {
	p := Progress{Target: gaze.Left, Label: gaze.Center, Remaining: 2500 * time.Millisecond}
	assert.Equal(t, "Target=LEFT Remain= 2.5s dir=CENTER", p.String())

	done := Progress{Total: 5, Done: true}
	assert.Equal(t, "Done 5/5", done.String())
}
