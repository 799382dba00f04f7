// Package rng provides the two random-number sources the spin engine is
// parameterized over: a cryptographically secure Production source and a
// deterministic Seeded source used by tests and the audit simulator.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
)

// RNG is the capability the spin engine depends on. It never reads clocks
// or any other ambient entropy; every draw flows from the concrete
// implementation's own source.
type RNG interface {
	// Uniform returns a value in [0,1).
	Uniform() (float64, error)
	// IntInclusive returns a value in [a,b], a <= b.
	IntInclusive(a, b int) (int, error)
	// WeightedChoice picks an index with probability proportional to
	// weights[i]; weights need not be normalized.
	WeightedChoice(weights []float64) (int, error)
	// Shuffle runs Fisher-Yates over n elements via swap.
	Shuffle(n int, swap func(i, j int)) error
}

// DeriveSeed turns a human-provided string into the 31-bit seed the Seeded
// RNG expects, per sha256(s) mod 2^31.
func DeriveSeed(s string) int64 {
	sum := sha256.Sum256([]byte(s))
	// Use the low 8 bytes of the digest as a uint64, then reduce mod 2^31.
	n := binary.BigEndian.Uint64(sum[len(sum)-8:])
	return int64(n % (1 << 31))
}
