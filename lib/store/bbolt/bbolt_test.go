package bbolt

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/tetralog/opengraph/lib/store/storetest"
)

func TestImpl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	t.Log(path)
	data, err := json.Marshal(Config{
		Path: path,
	})
	if err != nil {
		t.Fatal(err)
	}

	storetest.Common(t, Factory{}, json.RawMessage(data))
}

func TestCleanup(t *testing.T) {
	data, err := json.Marshal(Config{Path: filepath.Join(t.TempDir(), "db")})
	if err != nil {
		t.Fatal(err)
	}

	st, err := Factory{}.Build(t.Context(), json.RawMessage(data))
	if err != nil {
		t.Fatal(err)
	}
	s := st.(*Store)

	if err := s.Set(t.Context(), "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(t.Context(), "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}

	//nosleep:bypass waiting out a 1ms expiry
	time.Sleep(5 * time.Millisecond)

	if err := s.cleanup(); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(t.Context(), "short"); err == nil {
		t.Error("expired key survived cleanup")
	}
	if _, err := s.Get(t.Context(), "forever"); err != nil {
		t.Errorf("key without expiry was removed by cleanup: %v", err)
	}
}
