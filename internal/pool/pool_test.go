package pool_test

import (
	"testing"

	"github.com/calvinalkan/caf/internal/pool"
	"github.com/calvinalkan/caf/internal/value"
)

func TestSingletonsStable(t *testing.T) {
	t.Parallel()
	p := pool.New()

	if p.Undefined() != p.Undefined() {
		t.Fatal("Undefined should return the same handle every call")
	}
	if p.Null() != p.Null() {
		t.Fatal("Null should return the same handle every call")
	}
	if p.Bool(true) != p.Bool(true) || p.Bool(false) != p.Bool(false) {
		t.Fatal("Bool should be interned per boolean value")
	}
}

func TestIntegerInterningBoundary(t *testing.T) {
	t.Parallel()
	p := pool.New()

	if p.Integer(-100) != p.Integer(-100) {
		t.Error("-100 is the inclusive lower bound of the cache and should intern")
	}
	if p.Integer(399) != p.Integer(399) {
		t.Error("399 is the inclusive upper bound of the cache and should intern")
	}

	a := p.Integer(400)
	b := p.Integer(400)
	if a == b {
		t.Error("400 is outside the cache range and should not intern")
	}
	if a.Int != 400 || b.Int != 400 {
		t.Error("fresh integers should still carry the correct payload")
	}
}

func TestStringInterningBoundary(t *testing.T) {
	t.Parallel()
	p := pool.New()

	short := "0123456789" // 10 bytes, inclusive boundary
	if p.String(short) != p.String(short) {
		t.Error("10-byte strings should intern")
	}

	long := "01234567890" // 11 bytes
	if p.String(long) == p.String(long) {
		t.Error("11-byte strings should not intern")
	}
}

func TestFloatSingletons(t *testing.T) {
	t.Parallel()
	p := pool.New()

	nan1 := p.Float(nan())
	nan2 := p.Float(nan())
	if nan1 != nan2 {
		t.Error("NaN should always intern to the same handle")
	}

	if p.Float(posInf()) != p.Float(posInf()) {
		t.Error("+Inf should always intern to the same handle")
	}
	if p.Float(negInf()) != p.Float(negInf()) {
		t.Error("-Inf should always intern to the same handle")
	}
}

func posInf() float64 {
	var z float64
	return 1 / z
}

func negInf() float64 {
	var z float64
	return -1 / z
}

func nan() float64 {
	var z float64
	return z / z
}

func TestArraysNeverIntern(t *testing.T) {
	t.Parallel()
	p := pool.New()

	a := p.NewArray()
	b := p.NewArray()
	if a == b {
		t.Error("NewArray must never return the same handle twice")
	}
}

func TestClearInvalidatesFreshGenerationOnly(t *testing.T) {
	t.Parallel()
	p := pool.New()

	persistent := p.Undefined()
	smallInt := p.Integer(5)
	fresh := p.Integer(1000)
	freshString := p.String("this string is over ten bytes")

	if !p.IsValid(persistent) || !p.IsValid(smallInt) || !p.IsValid(fresh) || !p.IsValid(freshString) {
		t.Fatal("all values should be valid before Clear")
	}

	p.Clear()

	if !p.IsValid(persistent) {
		t.Error("singleton must remain valid across Clear")
	}
	if !p.IsValid(smallInt) {
		t.Error("small-integer cache entries must remain valid across Clear")
	}
	if p.IsValid(fresh) {
		t.Error("a fresh, non-interned value must be invalidated by Clear")
	}
	if p.IsValid(freshString) {
		t.Error("a non-interned string must be invalidated by Clear")
	}
}

func TestClearInvalidatesThingsAllocatedBeforeFirstClear(t *testing.T) {
	// Regression test for a generation off-by-one: values minted before the
	// very first Clear must not spuriously "survive" as if they belonged to
	// the generation Clear moves to.
	t.Parallel()
	p := pool.New()

	fresh := p.Integer(12345)
	p.Clear()
	if p.IsValid(fresh) {
		t.Fatal("value minted before the first Clear must be invalidated by it")
	}
}

func TestEachInternedExcludesArrays(t *testing.T) {
	t.Parallel()
	p := pool.New()

	p.String("a string long enough to skip the intern cache boundary test")
	p.String("short")
	p.Func(3)
	p.Placeholder(0)
	_ = p.NewArray()

	seen := map[value.Kind]int{}
	p.EachInterned(func(v *value.Value) { seen[v.Kind]++ })

	if seen[value.Array] != 0 {
		t.Error("EachInterned must never yield an Array value")
	}
	if seen[value.String] == 0 || seen[value.Function] == 0 || seen[value.Placeholder] == 0 {
		t.Error("EachInterned should surface interned strings, functions, and placeholders")
	}
}

func TestFunctionValuesSurviveClear(t *testing.T) {
	t.Parallel()
	p := pool.New()

	before := p.Func(2)
	p.Clear()

	if !p.IsValid(before) {
		t.Error("function values reference the immutable catalog and must survive Clear")
	}
	if p.Func(2) != before {
		t.Error("Func must return the same handle across Clear")
	}
}

func TestClearDropsInternedStringsAndPlaceholders(t *testing.T) {
	t.Parallel()
	p := pool.New()

	str := p.String("short")
	ph := p.Placeholder(3)
	p.Clear()

	if p.IsValid(str) {
		t.Error("interned small strings are not singletons and must not survive Clear")
	}
	if p.IsValid(ph) {
		t.Error("placeholder handles must be invalidated by Clear")
	}
	if p.String("short") == str {
		t.Error("re-interning after Clear must mint a new handle")
	}
}

func TestEachInternedOrderIsStable(t *testing.T) {
	t.Parallel()

	// Two pools fed the same operation sequence must yield candidates in
	// the same order, or generation with a fixed seed would diverge between
	// runs.
	collect := func() []uint64 {
		p := pool.New()
		p.Func(1)
		p.Integer(7)
		p.String("ab")
		p.Placeholder(0)
		p.Integer(-3)
		var order []uint64
		p.EachInterned(func(v *value.Value) { order = append(order, v.Handle) })
		return order
	}

	a := collect()
	b := collect()
	if len(a) != len(b) {
		t.Fatalf("candidate counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("candidate order diverged at %d: %v vs %v", i, a, b)
		}
	}
}

func TestPlaceholderPerIndexSingleton(t *testing.T) {
	t.Parallel()
	p := pool.New()

	if p.Placeholder(2) != p.Placeholder(2) {
		t.Error("Placeholder(index) should be a per-index singleton")
	}
	if p.Placeholder(1) == p.Placeholder(2) {
		t.Error("distinct indices must not share a handle")
	}
}
