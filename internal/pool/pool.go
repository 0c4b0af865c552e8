// Package pool implements the ObjectPool: a process-scoped arena that owns
// every value.Value node, interns the small, hot variants, and can be
// cleared between test cases in O(allocations since the last clear).
//
// The arena-plus-handle shape follows a single-owner arena: a single owner
// hands out identity-bearing handles, and clearing the owner invalidates
// every handle minted since the last clear rather than chasing down and
// freeing each one individually.
package pool

import (
	"math"

	"github.com/calvinalkan/caf/internal/value"
)

// intCacheLo and intCacheHi bound the interned integer range: x is cached
// iff x+100 ∈ [0, 500), i.e. x ∈ [-100, 400).
const (
	intCacheLo = -100
	intCacheHi = 400 // exclusive
	intCacheSz = intCacheHi - intCacheLo
)

// smallStringMax is the inclusive length under which strings are interned.
const smallStringMax = 10

// Pool is the ObjectPool. It is not safe for concurrent use; the fuzzer
// runs single-threaded on AFL's callback thread, so no internal locking is
// needed.
type Pool struct {
	generation uint64

	undefined *value.Value
	null      *value.Value
	boolFalse *value.Value
	boolTrue  *value.Value
	nan       *value.Value
	posInf    *value.Value
	negInf    *value.Value

	intCache [intCacheSz]*value.Value

	strings      map[string]*value.Value
	functions    map[uint32]*value.Value
	placeholders map[uint32]*value.Value

	// permanent and transient record every interned value in first-intern
	// order: permanent holds generation-0 entries (small integers, function
	// ids) that survive Clear, transient holds the rest (small strings,
	// placeholders) and is truncated by Clear. Generator's reuse branch
	// iterates them in order so a given seed always sees the same candidate
	// sequence, which a map walk would not guarantee.
	permanent []*value.Value
	transient []*value.Value

	nextHandle uint64
}

// New returns a freshly initialized Pool. Singletons are minted once here
// and never reallocated; they carry generation 0 so they remain valid across
// every subsequent Clear.
func New() *Pool {
	p := &Pool{
		generation:   1, // 0 is reserved for permanent (singleton / int-cache) values
		strings:      make(map[string]*value.Value),
		functions:    make(map[uint32]*value.Value),
		placeholders: make(map[uint32]*value.Value),
	}
	p.undefined = p.singleton(value.Undefined)
	p.null = p.singleton(value.Null)
	p.boolFalse = &value.Value{Kind: value.Boolean, Bool: false, Handle: p.handle()}
	p.boolTrue = &value.Value{Kind: value.Boolean, Bool: true, Handle: p.handle()}
	p.nan = &value.Value{Kind: value.Float, Flt: math.NaN(), Handle: p.handle()}
	p.posInf = &value.Value{Kind: value.Float, Flt: math.Inf(1), Handle: p.handle()}
	p.negInf = &value.Value{Kind: value.Float, Flt: math.Inf(-1), Handle: p.handle()}
	return p
}

func (p *Pool) singleton(k value.Kind) *value.Value {
	return &value.Value{Kind: k, Handle: p.handle()}
}

func (p *Pool) handle() uint64 {
	p.nextHandle++
	return p.nextHandle
}

// Undefined returns the process-wide Undefined singleton.
func (p *Pool) Undefined() *value.Value { return p.undefined }

// Null returns the process-wide Null singleton.
func (p *Pool) Null() *value.Value { return p.null }

// Bool returns the per-value Boolean singleton for b.
func (p *Pool) Bool(b bool) *value.Value {
	if b {
		return p.boolTrue
	}
	return p.boolFalse
}

// Func returns the interned Function value for id, allocating it on first
// use. Function singletons live at generation 0 and survive Clear — the
// catalog they reference is immutable for the process lifetime.
func (p *Pool) Func(id uint32) *value.Value {
	if v, ok := p.functions[id]; ok {
		return v
	}
	v := &value.Value{Kind: value.Function, FuncID: id, Handle: p.handle()}
	p.functions[id] = v
	p.permanent = append(p.permanent, v)
	return v
}

// String interns s when len(s) <= smallStringMax; otherwise it allocates a
// fresh, non-interned Value. Either way the result is tagged with the
// current generation: interned strings are canonical only until the next
// Clear.
func (p *Pool) String(s string) *value.Value {
	if len(s) <= smallStringMax {
		if v, ok := p.strings[s]; ok {
			return v
		}
		v := &value.Value{Kind: value.String, Str: s, Handle: p.handle(), Gen: p.generation}
		p.strings[s] = v
		p.transient = append(p.transient, v)
		return v
	}
	return &value.Value{Kind: value.String, Str: s, Handle: p.handle(), Gen: p.generation}
}

// Integer interns x when x+100 ∈ [0, 500); otherwise it allocates fresh.
func (p *Pool) Integer(x int32) *value.Value {
	if idx := int(x) - intCacheLo; idx >= 0 && idx < intCacheSz {
		if v := p.intCache[idx]; v != nil {
			return v
		}
		v := &value.Value{Kind: value.Integer, Int: x, Handle: p.handle()}
		p.intCache[idx] = v
		p.permanent = append(p.permanent, v)
		return v
	}
	return &value.Value{Kind: value.Integer, Int: x, Handle: p.handle(), Gen: p.generation}
}

// Float interns NaN, +Inf, and -Inf as singletons; every other double
// allocates fresh.
func (p *Pool) Float(f float64) *value.Value {
	switch {
	case f != f:
		return p.nan
	case math.IsInf(f, 1):
		return p.posInf
	case math.IsInf(f, -1):
		return p.negInf
	default:
		return &value.Value{Kind: value.Float, Flt: f, Handle: p.handle(), Gen: p.generation}
	}
}

// NewArray allocates a fresh, never-interned Array node with an empty
// element sequence. The array is owned exclusively by the pool; callers hold
// only a non-owning handle.
func (p *Pool) NewArray() *value.Value {
	return &value.Value{Kind: value.Array, Elems: nil, Handle: p.handle(), Gen: p.generation}
}

// Placeholder returns the per-index singleton Placeholder value for index,
// growing the backing table as needed. Placeholder indices only mean
// anything within the test case currently in flight, so the table is
// dropped (and its handles invalidated) by Clear.
func (p *Pool) Placeholder(index uint32) *value.Value {
	if v, ok := p.placeholders[index]; ok {
		return v
	}
	v := &value.Value{Kind: value.Placeholder, CallIndex: index, Handle: p.handle(), Gen: p.generation}
	p.placeholders[index] = v
	p.transient = append(p.transient, v)
	return v
}

// Clear drops every non-singleton value: fresh strings/floats/arrays, the
// small-string table, and the placeholder table are all released for GC and
// their handles become invalid. Singletons (Undefined, Null, Boolean, NaN,
// ±Inf, per-id Function values) and the small-integer cache persist. Cost is
// O(allocations since the last Clear), since only the tables built up since
// then are discarded.
func (p *Pool) Clear() {
	p.generation++
	p.placeholders = make(map[uint32]*value.Value)
	// Small strings <=10 bytes are re-interned as needed; the map itself is
	// cheap to rebuild and bounded by usage since the last Clear.
	p.strings = make(map[string]*value.Value)
	p.transient = p.transient[:0]
}

// IsValid reports whether v is still live: a generation-0 value (singleton
// or small-integer cache entry) is always valid; any other value is valid
// only if it was minted in the pool's current generation. This backs the
// assertion-style sanity checks on invariant violations — production code
// must never observe a stale handle.
func (p *Pool) IsValid(v *value.Value) bool {
	if v == nil {
		return false
	}
	return v.Gen == 0 || v.Gen == p.generation
}

// HasValues reports whether the pool currently holds at least one
// previously produced value — used by Generator.GenerateValue's
// reuse-an-existing-value branch.
func (p *Pool) HasValues() bool {
	return len(p.permanent) > 0 || len(p.transient) > 0
}

// EachInterned calls fn once for every previously produced value the pool
// can hand back by identity, in first-intern order: populated small-integer
// cache slots and function values first (they survive Clear), then interned
// strings and placeholders minted since the last Clear. The stable order
// keeps Generator's reuse-an-existing-value branch deterministic for a
// fixed seed; arrays are excluded since they are never interned.
func (p *Pool) EachInterned(fn func(*value.Value)) {
	for _, v := range p.permanent {
		fn(v)
	}
	for _, v := range p.transient {
		fn(v)
	}
}
