// Package value defines the typed value universe that every receiver,
// argument, and array element in a CAF test case is drawn from. The
// universe is a closed sum type: exactly one of the Kind constants
// identifies which payload field of a Value is meaningful.
//
// Values are never constructed directly by callers outside this package and
// internal/pool; the object pool owns interning and allocation so that
// handle equality can stand in for value equality (see internal/pool).
package value

import "fmt"

// Kind identifies which variant of the value universe a Value holds.
type Kind uint8

const (
	Undefined Kind = iota
	Null
	Boolean
	Integer
	Float
	String
	Function
	Array
	Placeholder
)

// String renders a Kind for diagnostics and test failure messages.
func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Function:
		return "function"
	case Array:
		return "array"
	case Placeholder:
		return "placeholder"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single node in the typed value universe. Handle is the
// pool-assigned identity used for interning and back-reference equality
// (see internal/pool); two Values with the same Kind but different payloads
// still compare distinct unless Handle matches.
//
// Only one payload field is meaningful per Kind:
//
//	Boolean     -> Bool
//	Integer     -> Int
//	Float       -> Flt
//	String      -> Str
//	Function    -> FuncID
//	Array       -> Elems
//	Placeholder -> CallIndex
type Value struct {
	Kind      Kind
	Handle    uint64
	Bool      bool
	Int       int32
	Flt       float64
	Str       string
	FuncID    uint32
	Elems     []*Value
	CallIndex uint32

	// Gen is the pool generation this Value was minted in. Generation 0 is
	// reserved for values that survive an ObjectPool.Clear (singletons and
	// the small-integer cache); any other generation is invalidated the next
	// time Clear runs. See internal/pool.
	Gen uint64
}

// Equal reports structural equality: same Kind and same payload, recursing
// into Array elements. It does not consult Handle, so it also compares
// values minted by two different pools. Use Handle equality directly when
// testing interning.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Undefined, Null:
		return true
	case Boolean:
		return v.Bool == other.Bool
	case Integer:
		return v.Int == other.Int
	case Float:
		return v.Flt == other.Flt || (isNaN(v.Flt) && isNaN(other.Flt))
	case String:
		return v.Str == other.Str
	case Function:
		return v.FuncID == other.FuncID
	case Placeholder:
		return v.CallIndex == other.CallIndex
	case Array:
		if len(v.Elems) != len(other.Elems) {
			return false
		}
		for i, e := range v.Elems {
			if !e.Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNaN(f float64) bool { return f != f }
