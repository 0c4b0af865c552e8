// Package testcase defines the test-case data model: an ordered sequence
// of function calls, each carrying a receiver, an is-constructor flag, and
// an argument list drawn from the value universe.
package testcase

import "github.com/calvinalkan/caf/internal/value"

// FunctionCall is one call in a TestCase.
type FunctionCall struct {
	FuncID uint32
	This   *value.Value
	IsCtor bool
	Args   []*value.Value
}

// TestCase is the ordered sequence of calls the generator produces, the
// mutator edits, the codec serializes, and the synthesizer renders.
type TestCase struct {
	Calls []FunctionCall
}

// Clone returns a copy of tc with its own call and argument slices; the
// Value handles themselves are shared, not copied. Mutator strategies that
// need to preserve the input test case (e.g. argument mutation) clone before
// editing rather than mutating their argument in place.
func (tc *TestCase) Clone() *TestCase {
	out := &TestCase{Calls: make([]FunctionCall, len(tc.Calls))}
	for i, c := range tc.Calls {
		args := make([]*value.Value, len(c.Args))
		copy(args, c.Args)
		out.Calls[i] = FunctionCall{
			FuncID: c.FuncID,
			This:   c.This,
			IsCtor: c.IsCtor,
			Args:   args,
		}
	}
	return out
}

// Len returns the number of calls.
func (tc *TestCase) Len() int { return len(tc.Calls) }
