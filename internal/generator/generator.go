// Package generator samples fresh test cases and fresh values, biased by
// tunable options and the mixable integer/float dictionaries in
// dictionary.go.
//
// Generation is total — there is no generator failure mode — so every
// exported method here returns a value directly rather than an error.
package generator

import (
	"github.com/calvinalkan/caf/internal/catalog"
	"github.com/calvinalkan/caf/internal/pool"
	"github.com/calvinalkan/caf/internal/rng"
	"github.com/calvinalkan/caf/internal/testcase"
	"github.com/calvinalkan/caf/internal/value"
)

// Options tunes generation.
type Options struct {
	MaxCalls     int
	MaxDepth     int
	MaxStringLen int
	MaxArrayLen  int
}

// DefaultOptions returns a conservative, always-valid option set.
func DefaultOptions() Options {
	return Options{MaxCalls: 16, MaxDepth: 4, MaxStringLen: 32, MaxArrayLen: 8}
}

// Generator produces test cases and values against a fixed catalog, pool,
// and RNG stream.
type Generator struct {
	Cat  *catalog.Catalog
	Pool *pool.Pool
	RNG  *rng.Source
	Opts Options
}

// New returns a Generator over the given catalog, pool, RNG, and options.
func New(cat *catalog.Catalog, p *pool.Pool, r *rng.Source, opts Options) *Generator {
	return &Generator{Cat: cat, Pool: p, RNG: r, Opts: opts}
}

// Generate produces one fresh TestCase.
func (g *Generator) Generate() *testcase.TestCase {
	maxCalls := g.Opts.MaxCalls
	if maxCalls < 1 {
		maxCalls = 1
	}
	n := g.RNG.IntRange(1, maxCalls)

	tc := &testcase.TestCase{Calls: make([]testcase.FunctionCall, 0, n)}
	for i := 0; i < n; i++ {
		tc.Calls = append(tc.Calls, g.GenerateCall(i))
	}
	return tc
}

// GenerateCall produces one FunctionCall for position i in the (possibly
// partially built) test case.
func (g *Generator) GenerateCall(i int) testcase.FunctionCall {
	funcID := g.selectFuncID()

	this := g.Pool.Undefined()
	if g.RNG.Chance(0.5) {
		this = g.GenerateValue(0, i > 0, i)
	}

	k := g.RNG.IntRange(0, 5)
	args := make([]*value.Value, k)
	for j := 0; j < k; j++ {
		args[j] = g.GenerateValue(0, i > 0, i)
	}

	return testcase.FunctionCall{FuncID: funcID, This: this, IsCtor: false, Args: args}
}

// selectFuncID draws a function id uniformly from the catalog.
func (g *Generator) selectFuncID() uint32 {
	if g.Cat.Len() == 0 {
		return 0
	}
	return uint32(g.RNG.Intn(g.Cat.Len()))
}

// valueKindPool enumerates the always-available kinds generate_value may
// pick among; Array and Placeholder are appended conditionally.
var valueKindPool = []value.Kind{
	value.Undefined, value.Null, value.Boolean,
	value.String, value.Function, value.Integer, value.Float,
}

// GenerateValue produces one Value at the given recursion depth. callIndex
// is the index of the call currently being built, used to bound Placeholder
// references to [0, callIndex).
func (g *Generator) GenerateValue(depth int, allowPlaceholder bool, callIndex int) *value.Value {
	if g.RNG.Chance(0.2) && g.Pool.HasValues() {
		if v, ok := g.pickExisting(allowPlaceholder, callIndex); ok {
			return v
		}
	}

	kinds := valueKindPool
	if depth < g.Opts.MaxDepth {
		kinds = append(append([]value.Kind{}, kinds...), value.Array)
	}
	if allowPlaceholder && callIndex > 0 {
		kinds = append(kinds, value.Placeholder)
	}

	switch kinds[g.RNG.Intn(len(kinds))] {
	case value.Undefined:
		return g.Pool.Undefined()
	case value.Null:
		return g.Pool.Null()
	case value.Boolean:
		return g.Pool.Bool(g.RNG.Chance(0.5))
	case value.String:
		return g.Pool.String(g.genString())
	case value.Function:
		return g.Pool.Func(g.selectFuncID())
	case value.Integer:
		return g.Pool.Integer(g.genInt())
	case value.Float:
		return g.Pool.Float(g.genFloat())
	case value.Array:
		return g.genArray(depth)
	case value.Placeholder:
		return g.Pool.Placeholder(uint32(g.RNG.Intn(callIndex)))
	default:
		return g.Pool.Undefined()
	}
}

// pickExisting selects a previously produced value uniformly from the pool's
// small-object tables. Arrays are never interned so they are not
// candidates here. Placeholders the current position is not allowed to hold
// — disallowed outright, or referencing call index >= callIndex — are
// filtered out so reuse can never produce a forward reference.
func (g *Generator) pickExisting(allowPlaceholder bool, callIndex int) (*value.Value, bool) {
	var candidates []*value.Value
	g.Pool.EachInterned(func(v *value.Value) {
		if v.Kind == value.Placeholder && (!allowPlaceholder || int(v.CallIndex) >= callIndex) {
			return
		}
		candidates = append(candidates, v)
	})
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[g.RNG.Intn(len(candidates))], true
}

func (g *Generator) genInt() int32 {
	if g.RNG.Chance(0.6) {
		return IntDictionary[g.RNG.Intn(len(IntDictionary))]
	}
	return g.RNG.Int32()
}

func (g *Generator) genFloat() float64 {
	if g.RNG.Chance(0.2) {
		return FloatDictionary[g.RNG.Intn(len(FloatDictionary))]
	}
	// A uniform draw over (-1e18, 1e18), made by scaling a unit draw rather
	// than reinterpreting raw bits; it never yields NaN or ±Inf, which come
	// only from FloatDictionary.
	return (g.RNG.Float64()*2 - 1) * 1e18
}

func (g *Generator) genString() string {
	n := g.RNG.IntRange(0, g.Opts.MaxStringLen)
	b := make([]byte, n)
	for i := range b {
		b[i] = StringAlphabet[g.RNG.Intn(len(StringAlphabet))]
	}
	return string(b)
}

func (g *Generator) genArray(depth int) *value.Value {
	arr := g.Pool.NewArray()
	n := g.RNG.IntRange(0, g.Opts.MaxArrayLen)
	for i := 0; i < n; i++ {
		// Placeholders are only offered at the top-level argument and
		// receiver positions via GenerateCall, so the recursive call
		// disallows them, which also keeps array contents free of
		// call-index dependence.
		arr.Elems = append(arr.Elems, g.GenerateValue(depth+1, false, 0))
	}
	return arr
}
