// Package codec implements the length-delimited binary framing that moves
// test cases across the AFL boundary, with back-reference semantics for
// shared handles and return-value references: encode.go is the writer half.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/calvinalkan/caf/internal/testcase"
	"github.com/calvinalkan/caf/internal/value"
)

// Encode serializes tc into its wire form.
func Encode(tc *testcase.TestCase) []byte {
	e := &encoder{
		buf:  make([]byte, 0, 256),
		seen: make(map[uint64]int),
	}
	e.writeU32(uint32(len(tc.Calls)))
	e.returnSlot = make([]int, len(tc.Calls))
	for i, c := range tc.Calls {
		e.writeCall(i, c)
	}
	return e.buf
}

// encoder tracks the rolling slot index back-references point into. Per
// call, the value stream is receiver, each argument, then a reserved
// return-value slot (1 + len(args) + 1 slots); array elements are
// written inline and do not consume slots. A handle that reappears after
// occupying a slot is written as a back-reference to that slot — at any
// depth, so a shared array nested inside another array still round-trips by
// identity as long as its first occurrence was slot-tracked.
type encoder struct {
	buf        []byte
	nextSlot   int
	curCall    int
	seen       map[uint64]int // value Handle -> slot of its first top-level occurrence
	returnSlot []int          // call index -> its reserved return-value slot
}

func (e *encoder) writeCall(i int, c testcase.FunctionCall) {
	e.curCall = i
	e.writeU32(c.FuncID)
	e.writeSlotValue(c.This)
	e.writeU8(boolByte(c.IsCtor))
	e.writeU32(uint32(len(c.Args)))
	for _, a := range c.Args {
		e.writeSlotValue(a)
	}
	// Reserve the return-value slot: it consumes the next index but no
	// bytes are written for it.
	e.returnSlot[i] = e.nextSlot
	e.nextSlot++
}

// writeSlotValue writes a receiver or argument, which occupies the next slot
// in the shared index space regardless of whether it is written literally or
// as a back-reference.
func (e *encoder) writeSlotValue(v *value.Value) {
	slot := e.nextSlot
	e.nextSlot++
	if e.writeRef(v) {
		return
	}
	e.seen[v.Handle] = slot
	e.writeLiteral(v)
}

// writeElem writes an array element. Elements consume no slot, so a handle
// first seen here cannot be back-referenced later; it is re-serialized
// structurally wherever it reappears.
func (e *encoder) writeElem(v *value.Value) {
	if e.writeRef(v) {
		return
	}
	e.writeLiteral(v)
}

// writeRef writes v as a kind-8 back-reference if one applies: a Placeholder
// resolves to the referenced call's reserved return-value slot, and any
// handle already holding a slot resolves to that slot. Reports whether a
// reference was written.
func (e *encoder) writeRef(v *value.Value) bool {
	if v.Kind == value.Placeholder {
		// A placeholder must reference a call that has already been fully
		// written, or its return slot is meaningless. Generator and mutator
		// guarantee this invariant; a violation here is a bug in the caller,
		// reported as an assertion failure rather than left to corrupt the
		// wire or index returnSlot out of range.
		if int64(v.CallIndex) >= int64(e.curCall) {
			panic(fmt.Sprintf("codec: placeholder at call %d references call %d", e.curCall, v.CallIndex))
		}
		e.writeU8(tagBackref)
		e.writeU32(uint32(e.returnSlot[v.CallIndex]))
		return true
	}
	if prior, ok := e.seen[v.Handle]; ok {
		e.writeU8(tagBackref)
		e.writeU32(uint32(prior))
		return true
	}
	return false
}

func (e *encoder) writeLiteral(v *value.Value) {
	e.writeU8(kindToTag(v.Kind))
	switch v.Kind {
	case value.Undefined, value.Null:
	case value.Boolean:
		e.writeU8(boolByte(v.Bool))
	case value.String:
		b := []byte(v.Str)
		e.writeU32(uint32(len(b)))
		e.buf = append(e.buf, b...)
	case value.Function:
		e.writeU32(v.FuncID)
	case value.Integer:
		e.writeU32(uint32(v.Int))
	case value.Float:
		e.writeU64(math.Float64bits(v.Flt))
	case value.Array:
		e.writeU32(uint32(len(v.Elems)))
		for _, el := range v.Elems {
			e.writeElem(el)
		}
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (e *encoder) writeU8(b byte) { e.buf = append(e.buf, b) }

func (e *encoder) writeU32(x uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], x)
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) writeU64(x uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	e.buf = append(e.buf, b[:]...)
}
