package rng

import (
	"fmt"
	"math/rand"
	"sync"
)

// Seeded is a deterministic RNG for the audit simulator and reproducible
// tests. NEVER use it for real-money play.
type Seeded struct {
	src *rand.Rand
	mu  sync.Mutex
}

// NewSeeded creates a deterministic RNG from a 31-bit seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{src: rand.New(rand.NewSource(seed))}
}

// NewSeededFromString derives the seed from s via DeriveSeed.
func NewSeededFromString(s string) *Seeded {
	return NewSeeded(DeriveSeed(s))
}

func (r *Seeded) IntInclusive(a, b int) (int, error) {
	if a > b {
		return 0, fmt.Errorf("a (%d) must be <= b (%d)", a, b)
	}
	r.mu.Lock()
	n := r.src.Intn(b - a + 1)
	r.mu.Unlock()
	return a + n, nil
}

func (r *Seeded) Uniform() (float64, error) {
	r.mu.Lock()
	f := r.src.Float64()
	r.mu.Unlock()
	return f, nil
}

func (r *Seeded) Shuffle(n int, swap func(i, j int)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := n - 1; i > 0; i-- {
		j := r.src.Intn(i + 1)
		swap(i, j)
	}
	return nil
}

func (r *Seeded) WeightedChoice(weights []float64) (int, error) {
	return weightedChoice(weights, r.Uniform)
}

// weightedChoice is shared by both RNG implementations: draw a uniform
// value, scale by the weight sum, and walk the cumulative distribution.
func weightedChoice(weights []float64, uniform func() (float64, error)) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("weights cannot be empty")
	}

	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("weights must be non-negative")
		}
		total += w
	}
	if total <= 0 {
		return 0, fmt.Errorf("total weight must be positive")
	}

	u, err := uniform()
	if err != nil {
		return 0, err
	}
	target := u * total

	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}
