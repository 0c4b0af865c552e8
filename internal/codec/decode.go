package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/calvinalkan/caf/internal/pool"
	"github.com/calvinalkan/caf/internal/testcase"
	"github.com/calvinalkan/caf/internal/value"
)

// Decode parses buf into a TestCase, interning scalar values through p so
// decoding canonicalizes exactly like first-hand construction. Any framing
// error (truncated input, unknown kind tag, bad backref, oversized length
// field) is fatal to this single test case.
func Decode(buf []byte, p *pool.Pool) (*testcase.TestCase, error) {
	d := &decoder{buf: buf, pool: p, returnSlotOwner: make(map[int]int)}

	callCount, err := d.readU32()
	if err != nil {
		return nil, err
	}
	// Every call is at least func_id + receiver tag + is_ctor + arg_count
	// on the wire; a count the remaining bytes cannot possibly satisfy is
	// rejected before the calls slice is sized from it.
	const minCallBytes = 4 + 1 + 1 + 4
	if int64(callCount)*minCallBytes > int64(len(d.buf)-d.pos) {
		return nil, fmt.Errorf("%w: call count %d", ErrSizeOverflow, callCount)
	}

	tc := &testcase.TestCase{Calls: make([]testcase.FunctionCall, callCount)}
	for i := 0; i < int(callCount); i++ {
		call, err := d.readCall(i)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		tc.Calls[i] = call
	}
	return tc, nil
}

// decoder mirrors encoder's slot bookkeeping in reverse: index holds the
// resolved Value for every slot so far — receiver, each argument, and one
// nil entry per reserved return-value slot; array elements never occupy a
// slot. returnSlotOwner records which call reserved a given slot, so a
// backref into it resolves to a Placeholder for that call.
type decoder struct {
	buf             []byte
	pos             int
	pool            *pool.Pool
	index           []*value.Value
	returnSlotOwner map[int]int
}

func (d *decoder) readCall(i int) (testcase.FunctionCall, error) {
	funcID, err := d.readU32()
	if err != nil {
		return testcase.FunctionCall{}, err
	}

	this, err := d.readSlotValue()
	if err != nil {
		return testcase.FunctionCall{}, err
	}

	isCtorByte, err := d.readU8()
	if err != nil {
		return testcase.FunctionCall{}, err
	}

	argCount, err := d.readU32()
	if err != nil {
		return testcase.FunctionCall{}, err
	}
	if int64(argCount) > int64(len(d.buf)-d.pos) {
		return testcase.FunctionCall{}, fmt.Errorf("%w: arg count %d", ErrSizeOverflow, argCount)
	}

	args := make([]*value.Value, argCount)
	for j := 0; j < int(argCount); j++ {
		v, err := d.readSlotValue()
		if err != nil {
			return testcase.FunctionCall{}, err
		}
		args[j] = v
	}

	// Reserve the return-value slot: consumes an index, no bytes read.
	retSlot := len(d.index)
	d.index = append(d.index, nil)
	d.returnSlotOwner[retSlot] = i

	return testcase.FunctionCall{
		FuncID: funcID,
		This:   this,
		IsCtor: isCtorByte != 0,
		Args:   args,
	}, nil
}

// readSlotValue reads a receiver or argument and records it at the next
// slot. The slot is filled only after the value fully parses, so a backref
// that points into the value's own (still-incomplete) slot is rejected
// rather than forming a cycle.
func (d *decoder) readSlotValue() (*value.Value, error) {
	mySlot := len(d.index)
	d.index = append(d.index, nil)

	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	d.index[mySlot] = v
	return v, nil
}

// readValue reads one value without slot bookkeeping; array elements recurse
// through here directly since elements consume no slot.
func (d *decoder) readValue() (*value.Value, error) {
	tag, err := d.readU8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagUndefined:
		return d.pool.Undefined(), nil
	case tagNull:
		return d.pool.Null(), nil
	case tagBoolean:
		b, err := d.readU8()
		if err != nil {
			return nil, err
		}
		return d.pool.Bool(b != 0), nil
	case tagString:
		n, err := d.readU32()
		if err != nil {
			return nil, err
		}
		s, err := d.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		return d.pool.String(string(s)), nil
	case tagFunction:
		id, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return d.pool.Func(id), nil
	case tagInteger:
		x, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return d.pool.Integer(int32(x)), nil //nolint:gosec
	case tagFloat:
		x, err := d.readU64()
		if err != nil {
			return nil, err
		}
		return d.pool.Float(math.Float64frombits(x)), nil
	case tagArray:
		n, err := d.readU32()
		if err != nil {
			return nil, err
		}
		if int64(n) > int64(len(d.buf)-d.pos) {
			return nil, fmt.Errorf("%w: array size %d", ErrSizeOverflow, n)
		}
		arr := d.pool.NewArray()
		elems := make([]*value.Value, n)
		for i := 0; i < int(n); i++ {
			el, err := d.readValue()
			if err != nil {
				return nil, err
			}
			elems[i] = el
		}
		arr.Elems = elems
		return arr, nil
	case tagBackref:
		idx, err := d.readU32()
		if err != nil {
			return nil, err
		}
		if int64(idx) >= int64(len(d.index)) {
			return nil, fmt.Errorf("%w: index %d", ErrBadBackref, idx)
		}
		if callIdx, ok := d.returnSlotOwner[int(idx)]; ok {
			return d.pool.Placeholder(uint32(callIdx)), nil //nolint:gosec
		}
		if existing := d.index[idx]; existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: index %d", ErrBadBackref, idx)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, tag)
	}
}

func (d *decoder) readU8() (byte, error) {
	if d.pos+1 > len(d.buf) {
		return 0, ErrTruncated
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readU32() (uint32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, ErrTruncated
	}
	x := binary.LittleEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return x, nil
}

func (d *decoder) readU64() (uint64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, ErrTruncated
	}
	x := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return x, nil
}

func (d *decoder) readBytes(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.buf) {
		return nil, fmt.Errorf("%w: length %d", ErrSizeOverflow, n)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}
