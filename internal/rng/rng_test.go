package rng_test

import (
	"testing"

	"github.com/calvinalkan/caf/internal/rng"
)

func TestSameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a := rng.New(42)
	b := rng.New(42)

	for i := 0; i < 100; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatalf("draw %d diverged for the same seed", i)
		}
	}
}

func TestIntRangeInclusiveBounds(t *testing.T) {
	t.Parallel()
	r := rng.New(1)

	for i := 0; i < 1000; i++ {
		v := r.IntRange(5, 5)
		if v != 5 {
			t.Fatalf("IntRange(5,5) = %d, want 5", v)
		}
	}

	seenLo, seenHi := false, false
	for i := 0; i < 2000; i++ {
		v := r.IntRange(0, 1)
		if v < 0 || v > 1 {
			t.Fatalf("IntRange(0,1) = %d, out of bounds", v)
		}
		if v == 0 {
			seenLo = true
		}
		if v == 1 {
			seenHi = true
		}
	}
	if !seenLo || !seenHi {
		t.Fatal("IntRange(0,1) should hit both inclusive bounds over many draws")
	}
}

func TestChanceExtremes(t *testing.T) {
	t.Parallel()
	r := rng.New(1)

	for i := 0; i < 100; i++ {
		if r.Chance(0) {
			t.Fatal("Chance(0) must never be true")
		}
	}
}
