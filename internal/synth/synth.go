// Package synth renders a TestCase as a JavaScript program fragment that
// replays the call sequence using real language values.
package synth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/calvinalkan/caf/internal/catalog"
	"github.com/calvinalkan/caf/internal/testcase"
	"github.com/calvinalkan/caf/internal/value"
)

// Target selects the synthesized script's prelude and call-resolution
// style; the Value lowering rules are identical across targets.
type Target int

const (
	// TargetPlainJS emits a script callable as-is in any JS engine: bare
	// function-name calls, no embedding prelude.
	TargetPlainJS Target = iota
	// TargetV8Embed emits a script with a minimal V8/Node embedding
	// prelude (a `globalThis`-rooted lookup for each catalog function)
	// suited to harnesses that expose the catalog through an embedder
	// object rather than bare globals.
	TargetV8Embed
)

// Synthesizer renders test cases to JavaScript against a fixed catalog.
type Synthesizer struct {
	Cat    *catalog.Catalog
	Target Target
}

// New returns a Synthesizer for cat rendering scripts for target.
func New(cat *catalog.Catalog, target Target) *Synthesizer {
	return &Synthesizer{Cat: cat, Target: target}
}

// synthState is the per-script variable allocator. One counter feeds both
// constant definitions and call-result bindings, and vars maps a value
// handle to the variable already defined for it so a handle reused across
// the test case lowers to the same name.
type synthState struct {
	varID int
	vars  map[uint64]string
}

func (st *synthState) nextVar() string {
	name := "_" + strconv.Itoa(st.varID)
	st.varID++
	return name
}

// Synthesize renders tc as a JavaScript program fragment: for each call it
// emits variable definitions for the receiver (if not
// Undefined) and every argument, then the call itself, binding the result
// to a fresh variable even when unused.
func (s *Synthesizer) Synthesize(tc *testcase.TestCase) string {
	var b strings.Builder
	s.writePrelude(&b)

	st := &synthState{vars: make(map[uint64]string)}
	retVars := make([]string, len(tc.Calls))
	for i, c := range tc.Calls {
		var recv string
		if c.This != nil && c.This.Kind != value.Undefined {
			recv = s.synthValue(&b, st, c.This, retVars)
		}

		args := make([]string, len(c.Args))
		for j, a := range c.Args {
			args[j] = s.synthValue(&b, st, a, retVars)
		}

		ret := st.nextVar()
		fn := s.funcName(c.FuncID)
		switch {
		case c.IsCtor:
			fmt.Fprintf(&b, "let %s = new %s(%s);\n", ret, fn, strings.Join(args, ", "))
		case recv != "":
			fmt.Fprintf(&b, "let %s = %s.apply(%s, [%s]);\n", ret, fn, recv, strings.Join(args, ", "))
		default:
			fmt.Fprintf(&b, "let %s = %s(%s);\n", ret, fn, strings.Join(args, ", "))
		}
		retVars[i] = ret
	}

	s.writeEpilogue(&b)
	return b.String()
}

// synthValue lowers v to the name of a variable holding it, emitting the
// definition statements as a side effect. A Placeholder lowers to the
// variable already bound to the referenced call's return value; any other
// handle seen before reuses its existing variable.
func (s *Synthesizer) synthValue(b *strings.Builder, st *synthState, v *value.Value, retVars []string) string {
	if v.Kind == value.Placeholder {
		if int(v.CallIndex) < len(retVars) && retVars[v.CallIndex] != "" {
			return retVars[v.CallIndex]
		}
		return "undefined" // dangling reference; should not occur for well-formed input
	}
	if name, ok := st.vars[v.Handle]; ok {
		return name
	}

	name := st.nextVar()
	st.vars[v.Handle] = name
	if v.Kind == value.Array {
		fmt.Fprintf(b, "let %s = [];\n", name)
		for _, el := range v.Elems {
			elVar := s.synthValue(b, st, el, retVars)
			fmt.Fprintf(b, "%s.push(%s);\n", name, elVar)
		}
		return name
	}
	fmt.Fprintf(b, "let %s = %s;\n", name, s.literal(v))
	return name
}

// literal renders a non-Array, non-Placeholder value as JS literal syntax.
func (s *Synthesizer) literal(v *value.Value) string {
	switch v.Kind {
	case value.Undefined:
		return "undefined"
	case value.Null:
		return "null"
	case value.Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case value.Integer:
		return strconv.FormatInt(int64(v.Int), 10)
	case value.Float:
		return formatFloat(v.Flt)
	case value.String:
		return jsStringLiteral(v.Str)
	case value.Function:
		return s.funcName(v.FuncID)
	default:
		return "undefined"
	}
}

// writePrelude opens the embedding IIFE for TargetV8Embed: the script runs
// with its own `globalThis` parameter rather than the ambient one, so a
// harness that exposes the catalog through an embedder object (not bare
// globals) can bind it at the call site without touching the generated body.
func (s *Synthesizer) writePrelude(b *strings.Builder) {
	if s.Target == TargetV8Embed {
		b.WriteString("(function(globalThis) {\n")
	}
}

// writeEpilogue closes the IIFE writePrelude opened, invoking it with the
// ambient globalThis so a plain V8/d8 run behaves the same as TargetPlainJS.
func (s *Synthesizer) writeEpilogue(b *strings.Builder) {
	if s.Target == TargetV8Embed {
		b.WriteString("})(globalThis);\n")
	}
}

// funcName resolves a catalog function id to a callable expression. Plain JS
// resolves it as a bare global; the V8 embed target resolves it through the
// IIFE's own `globalThis` parameter instead.
func (s *Synthesizer) funcName(id uint32) string {
	name := fmt.Sprintf("__caf_func_%d", id)
	if s.Cat != nil && int(id) < len(s.Cat.Functions) {
		name = s.Cat.Functions[id].Name
	}
	if s.Target == TargetV8Embed {
		return "globalThis." + name
	}
	return name
}

func formatFloat(f float64) string {
	switch {
	case f != f:
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// jsStringLiteral renders s as a double-quoted JS string literal.
func jsStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
