package weighted

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// #region rand

// Rand is the random source used for every weighted draw and fallback choice.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// New returns a seeded source that is safe for concurrent use.
// seed == 0 seeds from the clock.
func New(seed uint64) Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// #endregion rand

// #region draws

// Index draws an index proportional to weights using a cumulative-weight walk.
// Returns -1 for an empty slice. If the draw exhausts without resolving
// (all-zero weights or float rounding), index 0 is returned.
func Index(r Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	target := r.Float64() * total
	var cum float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if target < cum {
			return i
		}
	}
	return 0
}

// GeometricBase is the growth factor of Geometric weights.
const GeometricBase = 1.2

// Geometric draws an index in [0, n) with weight(i) = 1.2^i, favoring later entries.
func Geometric(r Rand, n int) int {
	if n <= 0 {
		return -1
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = math.Pow(GeometricBase, float64(i))
	}
	return Index(r, weights)
}

// Pick returns a uniformly chosen element; the zero value for an empty slice.
func Pick[T any](r Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[r.IntN(len(items))]
}

// Between draws uniformly from [lo, hi).
func Between(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// #endregion draws
