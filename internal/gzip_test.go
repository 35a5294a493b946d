package internal

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGzipMiddleware(t *testing.T) {
	const body = `{"title":"Test Title","desc":"","image":""}`

	h := GzipMiddleware(1, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/not-modified" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))

	t.Run("compresses when accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)

		resp := rw.Result()
		if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
			t.Fatalf("wanted Content-Encoding gzip, got %q", got)
		}

		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(gz)
		if err != nil {
			t.Fatal(err)
		}

		if string(data) != body {
			t.Errorf("wanted %q, got %q", body, string(data))
		}
	})

	t.Run("passes through otherwise", func(t *testing.T) {
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rw.Header().Get("Content-Encoding"); got != "" {
			t.Errorf("wanted no Content-Encoding, got %q", got)
		}
		if rw.Body.String() != body {
			t.Errorf("wanted %q, got %q", body, rw.Body.String())
		}
	})

	t.Run("no body statuses are not compressed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/not-modified", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)

		if rw.Code != http.StatusNotModified {
			t.Fatalf("wanted status %d, got %d", http.StatusNotModified, rw.Code)
		}
		if got := rw.Header().Get("Content-Encoding"); got != "" {
			t.Errorf("wanted no Content-Encoding on 304, got %q", got)
		}
		if rw.Body.Len() != 0 {
			t.Errorf("wanted empty body on 304, got %d bytes", rw.Body.Len())
		}
	})
}
