package engine_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/caf/internal/codec"
	"github.com/calvinalkan/caf/internal/engine"
	"github.com/calvinalkan/caf/internal/generator"
	"github.com/calvinalkan/caf/internal/pool"
	"github.com/calvinalkan/caf/internal/testcase"
	"github.com/calvinalkan/caf/internal/value"
)

const sampleCatalog = "../../testdata/catalogs/sample.json"

func TestInitFromPathLoadsCatalog(t *testing.T) {
	t.Parallel()
	st, err := engine.InitFromPath(sampleCatalog, 1, generator.DefaultOptions())
	if err != nil {
		t.Fatalf("InitFromPath: %v", err)
	}
	if st.Cat.Len() != 5 {
		t.Fatalf("Cat.Len() = %d, want 5", st.Cat.Len())
	}
}

func TestFuzzRoundTripsThroughCodec(t *testing.T) {
	t.Parallel()
	st, err := engine.InitFromPath(sampleCatalog, 1, generator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	p := pool.New()
	tc := &testcase.TestCase{Calls: []testcase.FunctionCall{
		{FuncID: 0, This: p.Undefined(), Args: []*value.Value{p.Integer(1)}},
	}}
	primary := codec.Encode(tc)

	out, err := st.Fuzz(primary, nil, 0)
	if err != nil {
		t.Fatalf("Fuzz: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("Fuzz returned an empty buffer")
	}

	// The output must itself be a well-formed, decodable test case.
	if _, err := codec.Decode(out, pool.New()); err != nil {
		t.Fatalf("Fuzz output does not decode: %v", err)
	}
}

func TestFuzzClearsPoolBetweenCalls(t *testing.T) {
	t.Parallel()
	st, err := engine.InitFromPath(sampleCatalog, 1, generator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	p := pool.New()
	tc := &testcase.TestCase{Calls: []testcase.FunctionCall{
		{FuncID: 0, This: p.Undefined(), Args: []*value.Value{p.String("this string is over ten bytes long")}},
	}}
	primary := codec.Encode(tc)

	if _, err := st.Fuzz(primary, nil, 0); err != nil {
		t.Fatal(err)
	}
	gen1 := st.Pool.Undefined()
	marker := st.Pool.String("minted between the two Fuzz calls")

	if _, err := st.Fuzz(primary, nil, 0); err != nil {
		t.Fatal(err)
	}
	gen2 := st.Pool.Undefined()

	if st.Pool.IsValid(marker) {
		t.Fatal("a fresh value minted before a Fuzz call must be invalidated by its Clear")
	}

	// The Undefined singleton survives Clear across both calls (generation
	// 0), so it must be the exact same handle both times even though the
	// pool was cleared in between.
	if gen1 != gen2 {
		t.Fatal("Undefined singleton must remain stable across Fuzz calls")
	}
}

func TestFuzzRejectsTruncatedPrimary(t *testing.T) {
	t.Parallel()
	st, err := engine.InitFromPath(sampleCatalog, 1, generator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Fuzz([]byte{1, 2}, nil, 0); err == nil {
		t.Fatal("expected an error decoding a truncated primary buffer")
	}
}

func TestPreSaveSynthesizesJS(t *testing.T) {
	t.Parallel()
	st, err := engine.InitFromPath(sampleCatalog, 1, generator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	p := pool.New()
	tc := &testcase.TestCase{Calls: []testcase.FunctionCall{
		{FuncID: 2, This: p.Undefined(), Args: []*value.Value{p.String("hi")}},
	}}
	primary := codec.Encode(tc)

	out, err := st.PreSave(primary)
	if err != nil {
		t.Fatalf("PreSave: %v", err)
	}
	if !strings.Contains(string(out), "JSON.stringify") {
		t.Fatalf("expected synthesized JS to call JSON.stringify, got:\n%s", out)
	}
}

func TestInitTrimAlwaysZero(t *testing.T) {
	t.Parallel()
	st, err := engine.InitFromPath(sampleCatalog, 1, generator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if n := st.InitTrim(nil); n != 0 {
		t.Fatalf("InitTrim = %d, want 0 (trim unsupported)", n)
	}
}

func TestInitMissingEnvVar(t *testing.T) {
	t.Setenv("CAF_STORE", "")
	_, err := engine.Init(1, generator.DefaultOptions())
	if err != engine.ErrStoreEnvMissing {
		t.Fatalf("err = %v, want ErrStoreEnvMissing", err)
	}
}
