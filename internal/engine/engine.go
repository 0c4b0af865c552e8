// Package engine wires the rest of CAF into the AFL custom_mutator /
// pre_save_handler contract. It owns
// the process-scoped CAFStore (catalog) and ObjectPool, the seeded RNG, and
// the single process-static return buffer AFL expects to remain stable
// between calls.
//
// The engine is single-threaded, cooperative, and blocking: AFL is the sole
// external scheduler, and every call here runs to completion before AFL
// invokes the engine again. No locking is required.
package engine

import (
	"fmt"
	"os"

	"github.com/calvinalkan/caf/internal/catalog"
	"github.com/calvinalkan/caf/internal/codec"
	"github.com/calvinalkan/caf/internal/generator"
	"github.com/calvinalkan/caf/internal/mutator"
	"github.com/calvinalkan/caf/internal/pool"
	"github.com/calvinalkan/caf/internal/rng"
	"github.com/calvinalkan/caf/internal/synth"
	"github.com/calvinalkan/caf/internal/testcase"
)

// StoreEnvVar is the environment variable naming the catalog file.
const StoreEnvVar = "CAF_STORE"

// State is the process-scoped state a single AFL child process owns for its
// entire lifetime: the immutable catalog, the object pool (cleared once per
// fuzz/pre_save call), the seeded RNG, and the process-static output buffer.
type State struct {
	Cat   *catalog.Catalog
	Pool  *pool.Pool
	RNG   *rng.Source
	Gen   *generator.Generator
	Mut   *mutator.Mutator
	Synth *synth.Synthesizer

	// outBuf is the single process-wide static buffer AFL expects: it may
	// grow but is never freed between calls, so the pointer AFL was handed
	// on a prior call remains valid until the next one.
	outBuf []byte
}

// Init implements custom_init: it loads the catalog from the path in
// CAF_STORE, initializes the object pool, and seeds the RNG using opts to
// size the generator. Any load failure is fatal — the caller is expected to
// report a one-line reason to stderr and exit(1).
func Init(seed uint32, opts generator.Options) (*State, error) {
	path := os.Getenv(StoreEnvVar)
	if path == "" {
		return nil, ErrStoreEnvMissing
	}
	return InitFromPath(path, seed, opts)
}

// InitFromPath is Init with an explicit catalog path, split out so
// cmd/caf-mutator's debug mode and tests can load a catalog without reading
// CAF_STORE here.
func InitFromPath(path string, seed uint32, opts generator.Options) (*State, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	p := pool.New()
	r := rng.New(int64(seed))
	gen := generator.New(cat, p, r, opts)

	return &State{
		Cat:   cat,
		Pool:  p,
		RNG:   r,
		Gen:   gen,
		Mut:   mutator.New(gen),
		Synth: synth.New(cat, synth.TargetPlainJS),
	}, nil
}

// Fuzz implements custom_fuzz: it clears the pool, deserializes the
// primary buffer, optionally deserializes a splice candidate, mutates, and
// serializes the result into the process-static output buffer, in that
// strict order: clear -> deserialize(primary) -> deserialize(splice)? ->
// mutate -> serialize.
//
// A decode error on the primary buffer is fatal to this single test case;
// the caller should abort the fuzz callback and let AFL discard it.
func (s *State) Fuzz(primary, addBuf []byte, maxSize int) ([]byte, error) {
	s.Pool.Clear()

	tc, err := codec.Decode(primary, s.Pool)
	if err != nil {
		return nil, fmt.Errorf("decode primary: %w", err)
	}

	var splice *testcase.TestCase
	if len(addBuf) > 0 {
		splice, err = codec.Decode(addBuf, s.Pool)
		if err != nil {
			return nil, fmt.Errorf("decode splice: %w", err)
		}
	}

	mutated := s.Mut.Mutate(tc, splice)
	out := codec.Encode(mutated)

	// Truncating a length-delimited frame produces bytes Decode can never
	// parse back into a test case, so an over-budget mutation is dropped in
	// favor of the unmutated primary rather than corrupted.
	if maxSize > 0 && len(out) > maxSize {
		out = codec.Encode(tc)
		if len(out) > maxSize {
			return nil, fmt.Errorf("primary encodes to %d bytes, over max_size %d", len(out), maxSize)
		}
	}

	s.outBuf = append(s.outBuf[:0], out...)
	return s.outBuf, nil
}

// PreSave implements pre_save_handler: it decodes
// data, synthesizes the equivalent JavaScript, and writes the script into
// the process-static buffer.
func (s *State) PreSave(data []byte) ([]byte, error) {
	s.Pool.Clear()

	tc, err := codec.Decode(data, s.Pool)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	script := s.Synth.Synthesize(tc)
	s.outBuf = append(s.outBuf[:0], script...)
	return s.outBuf, nil
}

// InitTrim implements custom_init_trim: trim is not supported, so it
// always reports zero trim iterations.
func (s *State) InitTrim(_ []byte) int { return 0 }

// Trim and PostTrim implement custom_trim/custom_post_trim. Since InitTrim
// always returns 0, AFL never calls these; they exist only so the ABI
// surface is complete.
func (s *State) Trim() ([]byte, error) {
	panic("engine: Trim is unreachable because InitTrim always returns 0")
}

func (s *State) PostTrim(_ bool) error {
	panic("engine: PostTrim is unreachable because InitTrim always returns 0")
}
