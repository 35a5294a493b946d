package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tetralog/opengraph/lib/store"
	"github.com/tetralog/opengraph/lib/store/storetest"
)

func TestImpl(t *testing.T) {
	storetest.Common(t, factory{}, json.RawMessage(`{"size": 64}`))
}

func TestImplNoParameters(t *testing.T) {
	storetest.Common(t, factory{}, nil)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	st, err := NewSize(t.Context(), 2)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 3 {
		if err := st.Set(t.Context(), fmt.Sprint(i), []byte("x"), 0); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := st.Get(t.Context(), "0"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("wanted oldest key to be evicted, got err: %v", err)
	}

	for _, key := range []string{"1", "2"} {
		if _, err := st.Get(t.Context(), key); err != nil {
			t.Errorf("wanted key %s to survive eviction: %v", key, err)
		}
	}
}

func TestCleanupDropsExpired(t *testing.T) {
	st, err := NewSize(t.Context(), 8)
	if err != nil {
		t.Fatal(err)
	}
	i := st.(*impl)

	if err := st.Set(t.Context(), "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := st.Set(t.Context(), "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}

	//nosleep:bypass waiting out a 1ms expiry
	time.Sleep(5 * time.Millisecond)
	i.cleanup()

	if i.store.Contains("short") {
		t.Error("expired key survived cleanup")
	}
	if !i.store.Contains("forever") {
		t.Error("key without expiry was removed by cleanup")
	}
}

func TestFactoryValid(t *testing.T) {
	for _, tt := range []struct {
		name string
		data json.RawMessage
		err  error
	}{
		{name: "empty", data: nil},
		{name: "size", data: json.RawMessage(`{"size": 10}`)},
		{name: "negative size", data: json.RawMessage(`{"size": -1}`), err: ErrBadSize},
		{name: "garbage", data: json.RawMessage(`}`), err: store.ErrBadConfig},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if err := (factory{}).Valid(tt.data); !errors.Is(err, tt.err) {
				t.Logf("want: %v", tt.err)
				t.Logf("got:  %v", err)
				t.Error("wrong error")
			}
		})
	}
}
