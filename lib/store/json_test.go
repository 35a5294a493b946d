package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/tetralog/opengraph/lib/store"
	"github.com/tetralog/opengraph/lib/store/memory"
)

func TestJSON(t *testing.T) {
	type data struct {
		ID string `json:"id"`
	}

	st := memory.New(t.Context())
	db := store.JSON[data]{
		Underlying: st,
		Prefix:     "foo:",
	}

	if err := db.Set(t.Context(), "test", data{ID: t.Name()}, time.Minute); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Get(t.Context(), "foo:test"); err != nil {
		t.Fatalf("wanted value under prefixed key: %v", err)
	}

	got, err := db.Get(t.Context(), "test")
	if err != nil {
		t.Fatal(err)
	}

	if got.ID != t.Name() {
		t.Fatalf("got wrong data for key \"test\", wanted %q but got: %q", t.Name(), got.ID)
	}

	if err := db.Delete(t.Context(), "test"); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Get(t.Context(), "test"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("wanted %v after delete, got: %v", store.ErrNotFound, err)
	}

	if err := st.Set(t.Context(), "foo:test", []byte("}"), time.Minute); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Get(t.Context(), "test"); !errors.Is(err, store.ErrCantDecode) {
		t.Fatalf("wanted %v for garbage data, got: %v", store.ErrCantDecode, err)
	}
}

func TestBuildUnknownBackend(t *testing.T) {
	if _, err := store.Build(t.Context(), "taco salad", nil); !errors.Is(err, store.ErrBadConfig) {
		t.Fatalf("wanted %v, got: %v", store.ErrBadConfig, err)
	}
}
