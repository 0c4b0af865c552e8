package generator_test

import (
	"testing"

	"github.com/calvinalkan/caf/internal/catalog"
	"github.com/calvinalkan/caf/internal/generator"
	"github.com/calvinalkan/caf/internal/pool"
	"github.com/calvinalkan/caf/internal/rng"
	"github.com/calvinalkan/caf/internal/value"
)

func newGen(t *testing.T, seed int64, opts generator.Options) *generator.Generator {
	t.Helper()
	cat, err := catalog.Load("../../testdata/catalogs/sample.json")
	if err != nil {
		t.Fatal(err)
	}
	return generator.New(cat, pool.New(), rng.New(seed), opts)
}

func TestGenerateRespectsMaxCallsOne(t *testing.T) {
	t.Parallel()
	opts := generator.DefaultOptions()
	opts.MaxCalls = 1

	for seed := int64(0); seed < 20; seed++ {
		g := newGen(t, seed, opts)
		tc := g.Generate()
		if tc.Len() != 1 {
			t.Fatalf("seed %d: Len() = %d, want 1", seed, tc.Len())
		}
		for _, a := range tc.Calls[0].Args {
			if a.Kind == value.Placeholder {
				t.Fatalf("seed %d: placeholder unreachable with max_calls=1", seed)
			}
		}
	}
}

func TestGenerateRespectsMaxArrayLenZero(t *testing.T) {
	t.Parallel()
	opts := generator.DefaultOptions()
	opts.MaxArrayLen = 0

	g := newGen(t, 3, opts)
	for i := 0; i < 50; i++ {
		v := g.GenerateValue(0, false, 0)
		if v.Kind == value.Array && len(v.Elems) != 0 {
			t.Fatalf("array should be empty when max_array_len=0, got %d elements", len(v.Elems))
		}
	}
}

func TestGeneratePlaceholdersReferenceEarlierCallsOnly(t *testing.T) {
	t.Parallel()
	opts := generator.DefaultOptions()
	opts.MaxCalls = 8

	for seed := int64(0); seed < 30; seed++ {
		g := newGen(t, seed, opts)
		tc := g.Generate()
		for i, c := range tc.Calls {
			checkValue(t, c.This, i)
			for _, a := range c.Args {
				checkValue(t, a, i)
			}
		}
	}
}

func checkValue(t *testing.T, v *value.Value, callIdx int) {
	t.Helper()
	if v == nil {
		return
	}
	if v.Kind == value.Placeholder && int(v.CallIndex) >= callIdx {
		t.Fatalf("placeholder at call %d references index %d, want < %d", callIdx, v.CallIndex, callIdx)
	}
	for _, e := range v.Elems {
		checkValue(t, e, callIdx)
	}
}

func TestGenerateCallNeverPlaceholderAtIndexZero(t *testing.T) {
	t.Parallel()
	g := newGen(t, 11, generator.DefaultOptions())

	for i := 0; i < 100; i++ {
		c := g.GenerateCall(0)
		if c.This != nil && c.This.Kind == value.Placeholder {
			t.Fatal("call 0 must never receive a Placeholder receiver")
		}
		for _, a := range c.Args {
			if a.Kind == value.Placeholder {
				t.Fatal("call 0 must never receive a Placeholder argument")
			}
		}
	}
}
