package mutator

import (
	"github.com/calvinalkan/caf/internal/generator"
	"github.com/calvinalkan/caf/internal/testcase"
	"github.com/calvinalkan/caf/internal/value"
)

// mutateArgument picks a call uniformly, picks one of its arguments
// uniformly, then either replaces it outright (probability 0.1) or applies
// a kind-dispatched value mutation. Mutation is non-destructive — it
// returns a new Value handle rather than overwriting the pool entry in
// place.
func (m *Mutator) mutateArgument(t *testcase.TestCase) *testcase.TestCase {
	out := t.Clone()
	if len(out.Calls) == 0 {
		return out
	}

	ci, ok := m.pickCallWithArgs(out)
	if !ok {
		return out // every call is argless: no-op
	}

	c := &out.Calls[ci]
	ji := m.RNG.Intn(len(c.Args))

	if m.RNG.Chance(0.1) {
		c.Args[ji] = m.Gen.GenerateValue(0, ci > 0, ci)
		return out
	}

	c.Args[ji] = m.mutateValue(c.Args[ji], 0)
	return out
}

// pickCallWithArgs draws a call index uniformly, then — if that call has no
// arguments — scans for any call that does. Returns ok=false only when no
// call in t has any arguments.
func (m *Mutator) pickCallWithArgs(t *testcase.TestCase) (int, bool) {
	start := m.RNG.Intn(len(t.Calls))
	for off := 0; off < len(t.Calls); off++ {
		i := (start + off) % len(t.Calls)
		if len(t.Calls[i].Args) > 0 {
			return i, true
		}
	}
	return 0, false
}

// mutateValue dispatches a value mutation on v's Kind; depth bounds
// recursive Array element mutation.
func (m *Mutator) mutateValue(v *value.Value, depth int) *value.Value {
	p := m.Gen.Pool
	switch v.Kind {
	case value.Boolean:
		return p.Bool(!v.Bool)

	case value.Integer:
		return p.Integer(m.mutateInt(v.Int))

	case value.Float:
		return p.Float(m.mutateFloat(v.Flt))

	case value.String:
		return p.String(m.mutateString(v.Str))

	case value.Array:
		return m.mutateArray(v, depth)

	case value.Function:
		if m.RNG.Chance(0.5) {
			return v
		}
		return p.Func(m.pickReplacementFuncID(v.FuncID))

	case value.Placeholder:
		if m.RNG.Chance(0.5) {
			return v
		}
		return m.Gen.GenerateValue(depth, true, int(v.CallIndex)+1)

	case value.Undefined, value.Null:
		return m.Gen.GenerateValue(depth, false, 0)

	default:
		return v
	}
}

// mutateInt applies one of: +δ, negate, or an AFL-style bitflip/byteflip/
// arith window, each chosen uniformly.
func (m *Mutator) mutateInt(x int32) int32 {
	switch m.RNG.Intn(5) {
	case 0:
		return x + int32(m.RNG.IntRange(-35, 35))
	case 1:
		return -x
	case 2:
		return flipBits(x, bitWidths[m.RNG.Intn(3)], m.RNG)
	case 3:
		return flipBytes(x, byteWidths[m.RNG.Intn(3)], m.RNG)
	default:
		return arith(x, byteWidths[m.RNG.Intn(3)], m.RNG)
	}
}

var bitWidths = [3]int{1, 2, 4}
var byteWidths = [3]int{1, 2, 4}

// mutateFloat applies one of: small +δ, negate, or a dictionary swap.
func (m *Mutator) mutateFloat(f float64) float64 {
	switch m.RNG.Intn(3) {
	case 0:
		return f + (m.RNG.Float64()*2-1)*1e-3
	case 1:
		return -f
	default:
		return generator.FloatDictionary[m.RNG.Intn(len(generator.FloatDictionary))]
	}
}

// mutateString applies one of: insert, delete, change, or swap, on a copy of
// the string's bytes.
func (m *Mutator) mutateString(s string) string {
	b := []byte(s)
	switch m.RNG.Intn(4) {
	case 0: // insert
		idx := m.RNG.IntRange(0, len(b))
		c := generator.StringAlphabet[m.RNG.Intn(len(generator.StringAlphabet))]
		b = append(b[:idx:idx], append([]byte{c}, b[idx:]...)...)
	case 1: // delete
		if len(b) == 0 {
			return s
		}
		idx := m.RNG.Intn(len(b))
		b = append(b[:idx], b[idx+1:]...)
	case 2: // change
		if len(b) == 0 {
			return s
		}
		idx := m.RNG.Intn(len(b))
		b[idx] = generator.StringAlphabet[m.RNG.Intn(len(generator.StringAlphabet))]
	default: // swap two chars
		if len(b) < 2 {
			return s
		}
		i := m.RNG.Intn(len(b))
		j := m.RNG.Intn(len(b))
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// mutateArray applies one of: push, remove, mutate one element (recursive,
// depth-bounded), or swap two elements.
func (m *Mutator) mutateArray(v *value.Value, depth int) *value.Value {
	arr := m.Gen.Pool.NewArray()
	arr.Elems = append(arr.Elems, v.Elems...)

	switch m.RNG.Intn(4) {
	case 0: // push
		arr.Elems = append(arr.Elems, m.Gen.GenerateValue(depth+1, false, 0))
	case 1: // remove
		if len(arr.Elems) > 0 {
			idx := m.RNG.Intn(len(arr.Elems))
			arr.Elems = append(arr.Elems[:idx], arr.Elems[idx+1:]...)
		}
	case 2: // mutate one element
		if len(arr.Elems) > 0 && depth < m.Gen.Opts.MaxDepth {
			idx := m.RNG.Intn(len(arr.Elems))
			arr.Elems[idx] = m.mutateValue(arr.Elems[idx], depth+1)
		}
	default: // swap two elements
		if len(arr.Elems) >= 2 {
			i := m.RNG.Intn(len(arr.Elems))
			j := m.RNG.Intn(len(arr.Elems))
			arr.Elems[i], arr.Elems[j] = arr.Elems[j], arr.Elems[i]
		}
	}
	return arr
}

// pickReplacementFuncID draws a new function id for a Function value: from
// the matching callback-signature group when one is known to cover current,
// else uniformly from the whole catalog.
func (m *Mutator) pickReplacementFuncID(current uint32) uint32 {
	for _, sig := range m.Gen.Cat.CallbackSignatures() {
		group := m.Gen.Cat.CallbackGroup(sig)
		if containsID(group, current) {
			return group[m.RNG.Intn(len(group))]
		}
	}
	if m.Gen.Cat.Len() == 0 {
		return current
	}
	return uint32(m.RNG.Intn(m.Gen.Cat.Len())) //nolint:gosec
}

func containsID(ids []uint32, id uint32) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
