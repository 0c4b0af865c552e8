// Package catalog loads and validates the immutable API catalog: the dense
// [0, N) table of target-engine functions, plus an optional set of
// callback-signature groups used when the mutator needs a higher-order-
// argument-compatible replacement function id.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/tailscale/hujson"
	"golang.org/x/sys/unix"
)

// Function is one entry of the catalog: a dense id and its name as exposed
// by the engine under test.
type Function struct {
	ID   uint32
	Name string
}

// Catalog is immutable after Load. Functions is indexed by id (dense
// [0, N)); Callbacks maps a signature id to the set of function ids usable
// as a callable of that signature.
type Catalog struct {
	Functions []Function
	Callbacks map[int64][]uint32

	byName   map[string]uint32
	sigOrder []int64
}

// wireFunction and wireFile mirror the catalog file's JSON shape.
type wireFunction struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

type wireFile struct {
	APIs      []wireFunction      `json:"apis"`
	Callbacks map[string][]uint32 `json:"callbacks,omitempty"`
}

// mmapThreshold is the file size above which Load memory-maps the catalog
// file read-only instead of buffering it — catalogs extracted from large API
// surfaces (e.g. the full V8/Node global object) can run into the tens of
// megabytes.
const mmapThreshold = 1 << 20 // 1 MiB

// Load reads and validates a catalog file at path (the value of CAF_STORE).
// Duplicate ids, duplicate names, and non-dense id ranges are rejected with
// a descriptive error.
func Load(path string) (*Catalog, error) {
	raw, err := readCatalogFile(path)
	if err != nil {
		return nil, err
	}

	// hujson tolerates trailing commas and // comments in hand-edited
	// catalog fixtures.
	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreMalformed, err)
	}

	var wf wireFile
	if err := json.Unmarshal(standardized, &wf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreMalformed, err)
	}

	return fromWire(wf)
}

// readCatalogFile opens path and returns its contents, mmap'ing read-only
// when the file is large enough to make buffering wasteful.
func readCatalogFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnreadable, err)
	}

	size := info.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrStoreUnreadable)
	}
	if size < mmapThreshold {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnreadable, err)
		}
		return data, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %w", ErrStoreUnreadable, err)
	}
	// The catalog is parsed once at custom_init and never touched again, so
	// a copy that outlives the mapping is simpler than keeping the mapping
	// (and its fd) alive for the process lifetime.
	out := make([]byte, len(data))
	copy(out, data)
	_ = unix.Munmap(data)
	return out, nil
}

func fromWire(wf wireFile) (*Catalog, error) {
	cat := &Catalog{
		Functions: make([]Function, len(wf.APIs)),
		Callbacks: make(map[int64][]uint32, len(wf.Callbacks)),
		byName:    make(map[string]uint32, len(wf.APIs)),
	}

	seenID := make(map[uint32]bool, len(wf.APIs))
	seenName := make(map[string]bool, len(wf.APIs))
	maxID := uint32(0)

	for i, fn := range wf.APIs {
		if seenID[fn.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, fn.ID)
		}
		if seenName[fn.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, fn.Name)
		}
		seenID[fn.ID] = true
		seenName[fn.Name] = true
		if fn.ID > maxID {
			maxID = fn.ID
		}

		cat.Functions[i] = Function{ID: fn.ID, Name: fn.Name}
		cat.byName[fn.Name] = fn.ID
	}

	if len(wf.APIs) > 0 && int(maxID) != len(wf.APIs)-1 {
		return nil, fmt.Errorf("%w: max id %d, count %d", ErrIDsNotDense, maxID, len(wf.APIs))
	}
	// byID reorders Functions so that Functions[id] == that function,
	// matching the dense-id contract the rest of the engine relies on for
	// O(1) lookups (Synthesizer.funcName resolves a name by Functions[id]).
	byID := make([]Function, len(wf.APIs))
	for _, fn := range cat.Functions {
		byID[fn.ID] = fn
	}
	cat.Functions = byID

	for sig, ids := range wf.Callbacks {
		var sigID int64
		if _, err := fmt.Sscanf(sig, "%d", &sigID); err != nil {
			return nil, fmt.Errorf("%w: bad signature key %q", ErrStoreMalformed, sig)
		}
		for _, id := range ids {
			if int(id) >= len(cat.Functions) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownCallbackID, id)
			}
		}
		cat.Callbacks[sigID] = ids
		cat.sigOrder = append(cat.sigOrder, sigID)
	}
	slices.Sort(cat.sigOrder)

	return cat, nil
}

// Len returns the number of functions in the catalog.
func (c *Catalog) Len() int { return len(c.Functions) }

// ByName returns the function id registered under name, if any.
func (c *Catalog) ByName(name string) (uint32, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// CallbackGroup returns the function ids usable as a callable of the given
// signature id, or nil if no such group exists.
func (c *Catalog) CallbackGroup(signature int64) []uint32 {
	return c.Callbacks[signature]
}

// CallbackSignatures returns the signature ids of every callback group in
// ascending order. Callers that walk the groups (the mutator's Function
// replacement draw, caf-catalog inspect) iterate this instead of the
// Callbacks map so the walk order is stable run to run.
func (c *Catalog) CallbackSignatures() []int64 {
	return c.sigOrder
}
