package rng

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Production is the cryptographically secure RNG used for real money play.
// CRITICAL: uses crypto/rand only — never math/rand.
type Production struct{}

// NewProduction creates a new cryptographically secure RNG.
func NewProduction() *Production {
	return &Production{}
}

func (r *Production) intn(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("max must be positive, got %d", max)
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("crypto RNG failed: %w", err)
	}
	return int(nBig.Int64()), nil
}

func (r *Production) IntInclusive(a, b int) (int, error) {
	if a > b {
		return 0, fmt.Errorf("a (%d) must be <= b (%d)", a, b)
	}
	n, err := r.intn(b - a + 1)
	if err != nil {
		return 0, err
	}
	return a + n, nil
}

func (r *Production) Uniform() (float64, error) {
	const precision = 1 << 53
	n, err := r.intn(precision)
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(precision), nil
}

func (r *Production) Shuffle(n int, swap func(i, j int)) error {
	for i := n - 1; i > 0; i-- {
		j, err := r.intn(i + 1)
		if err != nil {
			return err
		}
		swap(i, j)
	}
	return nil
}

func (r *Production) WeightedChoice(weights []float64) (int, error) {
	return weightedChoice(weights, r.Uniform)
}
