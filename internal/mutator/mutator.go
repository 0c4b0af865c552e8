// Package mutator derives a new TestCase from one or two existing ones
// using a fixed menu of structural and value-level transformations.
//
// Every strategy that is inapplicable to its input (Remove on a length-1
// sequence, argument mutation on an argless call) returns the input
// unchanged rather than signaling an error — mutation never fails.
package mutator

import (
	"github.com/calvinalkan/caf/internal/generator"
	"github.com/calvinalkan/caf/internal/rng"
	"github.com/calvinalkan/caf/internal/testcase"
	"github.com/calvinalkan/caf/internal/value"
)

// Mutator derives new test cases against a fixed catalog/pool/RNG, reusing
// Generator for every "freshly generated" value or call the transformation
// menu calls for.
type Mutator struct {
	Gen *generator.Generator
	RNG *rng.Source
}

// New returns a Mutator backed by gen's catalog, pool, and RNG.
func New(gen *generator.Generator) *Mutator {
	return &Mutator{Gen: gen, RNG: gen.RNG}
}

// Mutate derives one new TestCase from t (and, for Splice, from splice).
// Splice may be nil, in which case a draw of the sequence-mutation menu that
// selects Splice is retried as InsertCall — a splice candidate has to be
// supplied externally, and when the harness has none to offer, Splice
// degenerates into InsertCall's source of novelty rather than signaling an
// error.
func (m *Mutator) Mutate(t *testcase.TestCase, splice *testcase.TestCase) *testcase.TestCase {
	if m.RNG.Chance(0.5) {
		return m.mutateSequence(t, splice)
	}
	return m.mutateArgument(t)
}

// mutateSequence picks one of Splice, InsertCall, RemoveCall uniformly, then
// runs the post-mutation placeholder regeneration pass.
func (m *Mutator) mutateSequence(t *testcase.TestCase, splice *testcase.TestCase) *testcase.TestCase {
	choice := m.RNG.Intn(3)
	if choice == 0 && splice == nil {
		choice = 1 // degrade Splice to InsertCall when no candidate is supplied
	}

	var out *testcase.TestCase
	switch choice {
	case 0:
		out = m.splice(t, splice)
	case 1:
		out = m.insertCall(t)
	default:
		out = m.removeCall(t)
	}

	m.regeneratePlaceholders(out)
	return out
}

// splice concatenates a prefix of t with a suffix of s at a splice point
// p in [0, min(|t|, |s|)].
func (m *Mutator) splice(t, s *testcase.TestCase) *testcase.TestCase {
	limit := min(t.Len(), s.Len())
	p := m.RNG.IntRange(0, limit)

	out := &testcase.TestCase{Calls: make([]testcase.FunctionCall, 0, p+(s.Len()-p))}
	out.Calls = append(out.Calls, cloneCalls(t.Calls[:p])...)
	out.Calls = append(out.Calls, cloneCalls(s.Calls[p:])...)
	m.resplice(out, t, s, p)
	return out
}

// resplice rewrites the suffix's placeholders after a splice at p. Suffix
// calls keep the absolute positions they held in s, so a placeholder that
// referenced a call before the splice point now resolves to t's call at
// that index instead of s's. The check is structural only: the placeholder
// survives if t's call there is interchangeable with the s call it used to
// reference (same function id, same call form), and is regenerated
// otherwise. References at or past the splice point still land on the very
// call they referenced in s and always survive.
func (m *Mutator) resplice(out, t, s *testcase.TestCase, p int) {
	crossWired := func(k int) bool {
		if k >= p {
			return false
		}
		return t.Calls[k].FuncID != s.Calls[k].FuncID || t.Calls[k].IsCtor != s.Calls[k].IsCtor
	}
	for i := p; i < out.Len(); i++ {
		c := &out.Calls[i]
		// Replacements are never placeholders here: a fresh placeholder
		// could only reference the same cross-wired prefix again.
		c.This = m.rewriteValue(c.This, i, false, crossWired)
		for j, a := range c.Args {
			c.Args[j] = m.rewriteValue(a, i, false, crossWired)
		}
	}
}

// insertCall generates one fresh call and inserts it at a uniformly
// chosen position p ∈ [0, |t|].
func (m *Mutator) insertCall(t *testcase.TestCase) *testcase.TestCase {
	p := m.RNG.IntRange(0, t.Len())
	fresh := m.Gen.GenerateCall(p)

	out := &testcase.TestCase{Calls: make([]testcase.FunctionCall, 0, t.Len()+1)}
	out.Calls = append(out.Calls, cloneCalls(t.Calls[:p])...)
	out.Calls = append(out.Calls, fresh)
	out.Calls = append(out.Calls, cloneCalls(t.Calls[p:])...)
	return out
}

// removeCall drops a uniformly chosen call. A length-1 test case is returned
// unchanged.
func (m *Mutator) removeCall(t *testcase.TestCase) *testcase.TestCase {
	if t.Len() <= 1 {
		return t.Clone()
	}
	p := m.RNG.Intn(t.Len())

	out := &testcase.TestCase{Calls: make([]testcase.FunctionCall, 0, t.Len()-1)}
	out.Calls = append(out.Calls, cloneCalls(t.Calls[:p])...)
	out.Calls = append(out.Calls, cloneCalls(t.Calls[p+1:])...)
	return out
}

// regeneratePlaceholders walks every call after a sequence mutation and
// replaces any Placeholder whose referenced call index is no longer strictly
// less than its own (owning) call index — i.e. it now points at itself or
// forward — with a freshly generated value, so a back-reference can never
// point at its own or a later call. The walk recurses through Array
// elements: the wire format admits placeholders at any nesting depth, so a
// stale one can arrive buried inside a decoded array.
func (m *Mutator) regeneratePlaceholders(t *testcase.TestCase) {
	for i := range t.Calls {
		c := &t.Calls[i]
		stale := func(k int) bool { return k >= i }
		c.This = m.rewriteValue(c.This, i, i > 0, stale)
		for j, a := range c.Args {
			c.Args[j] = m.rewriteValue(a, i, i > 0, stale)
		}
	}
}

// rewriteValue returns v with every Placeholder whose referenced call index
// stale reports replaced by a freshly generated value, recursing through
// Array elements. allowPlaceholder governs whether a replacement may itself
// be a placeholder. Arrays are copied on write — the original pool entry
// may be shared with other calls and is never edited in place.
func (m *Mutator) rewriteValue(v *value.Value, callIdx int, allowPlaceholder bool, stale func(int) bool) *value.Value {
	switch {
	case v == nil:
		return v
	case v.Kind == value.Placeholder:
		if stale(int(v.CallIndex)) {
			return m.Gen.GenerateValue(0, allowPlaceholder, callIdx)
		}
		return v
	case v.Kind == value.Array:
		var fixed []*value.Value
		for i, el := range v.Elems {
			rel := m.rewriteValue(el, callIdx, allowPlaceholder, stale)
			if rel != el && fixed == nil {
				fixed = append([]*value.Value{}, v.Elems...)
			}
			if fixed != nil {
				fixed[i] = rel
			}
		}
		if fixed == nil {
			return v
		}
		arr := m.Gen.Pool.NewArray()
		arr.Elems = fixed
		return arr
	default:
		return v
	}
}

func cloneCalls(calls []testcase.FunctionCall) []testcase.FunctionCall {
	out := make([]testcase.FunctionCall, len(calls))
	for i, c := range calls {
		args := make([]*value.Value, len(c.Args))
		copy(args, c.Args)
		out[i] = testcase.FunctionCall{FuncID: c.FuncID, This: c.This, IsCtor: c.IsCtor, Args: args}
	}
	return out
}
