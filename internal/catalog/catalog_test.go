package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/caf/internal/catalog"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidCatalog(t *testing.T) {
	t.Parallel()
	path := writeCatalog(t, `{
		"apis": [
			{"id": 0, "name": "foo"},
			{"id": 1, "name": "bar"}
		],
		"callbacks": {"1": [0, 1]}
	}`)

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("Len = %d, want 2", cat.Len())
	}
	id, ok := cat.ByName("bar")
	if !ok || id != 1 {
		t.Fatalf("ByName(bar) = (%d, %v), want (1, true)", id, ok)
	}
	if got := cat.CallbackGroup(1); len(got) != 2 {
		t.Fatalf("CallbackGroup(1) = %v, want 2 entries", got)
	}
}

func TestLoadTolerantOfComments(t *testing.T) {
	t.Parallel()
	// hujson must tolerate trailing commas and // comments in hand-edited
	// catalog fixtures.
	path := writeCatalog(t, `{
		"apis": [
			{"id": 0, "name": "foo"}, // a comment
		],
	}`)

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("Len = %d, want 1", cat.Len())
	}
}

func TestLoadRejectsDuplicateID(t *testing.T) {
	t.Parallel()
	path := writeCatalog(t, `{"apis": [{"id":0,"name":"a"},{"id":0,"name":"b"}]}`)

	_, err := catalog.Load(path)
	if !errors.Is(err, catalog.ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestLoadRejectsDuplicateName(t *testing.T) {
	t.Parallel()
	path := writeCatalog(t, `{"apis": [{"id":0,"name":"a"},{"id":1,"name":"a"}]}`)

	_, err := catalog.Load(path)
	if !errors.Is(err, catalog.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestLoadRejectsSparseIDs(t *testing.T) {
	t.Parallel()
	path := writeCatalog(t, `{"apis": [{"id":0,"name":"a"},{"id":2,"name":"b"}]}`)

	_, err := catalog.Load(path)
	if !errors.Is(err, catalog.ErrIDsNotDense) {
		t.Fatalf("err = %v, want ErrIDsNotDense", err)
	}
}

func TestLoadRejectsUnknownCallbackID(t *testing.T) {
	t.Parallel()
	path := writeCatalog(t, `{"apis": [{"id":0,"name":"a"}], "callbacks": {"0": [5]}}`)

	_, err := catalog.Load(path)
	if !errors.Is(err, catalog.ErrUnknownCallbackID) {
		t.Fatalf("err = %v, want ErrUnknownCallbackID", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := catalog.Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, catalog.ErrStoreUnreadable) {
		t.Fatalf("err = %v, want ErrStoreUnreadable", err)
	}
}

func TestSampleFixture(t *testing.T) {
	t.Parallel()
	cat, err := catalog.Load("../../testdata/catalogs/sample.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 5 {
		t.Fatalf("Len = %d, want 5", cat.Len())
	}
	if got := cat.CallbackGroup(1); len(got) != 1 || got[0] != 4 {
		t.Fatalf("CallbackGroup(1) = %v, want [4]", got)
	}
}
