package drill

import (
	"math/rand/v2"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// RandomSource picks target indices. Tests substitute deterministic sources.
type RandomSource interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type systemSource struct{}

func (systemSource) IntN(n int) int { return rand.IntN(n) }

// SystemRandom returns the process-wide random source.
func SystemRandom() RandomSource { return systemSource{} }

// SeededRandom returns a reproducible random source.
func SeededRandom(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// fixedSource replays a scripted target order.
type fixedSource struct {
	idx []int
	pos int
}

// FixedTargets returns a source that yields exactly dirs, in order, when used
// to draw a drill of the same length. Non-target directions map to index 0.
func FixedTargets(dirs ...gaze.Direction) RandomSource {
	src := &fixedSource{idx: make([]int, len(dirs))}
	for i, d := range dirs {
		for j, t := range gaze.Targets {
			if t == d {
				src.idx[i] = j
			}
		}
	}
	return src
}

func (f *fixedSource) IntN(n int) int {
	if len(f.idx) == 0 {
		return 0
	}
	v := f.idx[f.pos%len(f.idx)] % n
	f.pos++
	return v
}

// drawTargets samples k directions uniformly with replacement.
func drawTargets(k int, rng RandomSource) []gaze.Direction {
	out := make([]gaze.Direction, k)
	for i := range out {
		out[i] = gaze.Targets[rng.IntN(len(gaze.Targets))]
	}
	return out
}
