// Package rng wraps math/rand/v2's PCG source behind the small surface that
// Generator and Mutator need, so both packages draw from one seeded,
// reproducible stream without importing math/rand directly. Dictionary and
// alphabet picks are made by the callers themselves through Intn.
package rng

import (
	"math/rand/v2"
)

// Source is the RNG handed to the generator and mutator. It is a thin
// wrapper so call sites read as caf-domain operations ("pick a kind",
// "draw a delta") rather than raw rand.Intn/Float64 calls.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded deterministically from seed: the same seed
// always produces the same draw sequence.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed>>1)|1))} //nolint:gosec
}

// Intn returns a uniform value in [0, n). Panics if n <= 0, matching
// math/rand/v2 semantics.
func (s *Source) Intn(n int) int { return s.r.IntN(n) }

// IntRange returns a uniform value in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Float64 returns a uniform value in [0.0, 1.0).
func (s *Source) Float64() float64 { return s.r.Float64() }

// Chance reports true with probability p (p in [0,1]).
func (s *Source) Chance(p float64) bool { return s.r.Float64() < p }

// Int32 returns a uniform 32-bit signed value across the full range.
func (s *Source) Int32() int32 { return int32(s.r.Uint32()) } //nolint:gosec

// Uint32 returns a uniform 32-bit unsigned value.
func (s *Source) Uint32() uint32 { return s.r.Uint32() }
