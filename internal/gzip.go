package internal

import (
	"compress/gzip"
	"net/http"
	"strings"
)

// GzipMiddleware compresses response bodies for clients that accept gzip.
// Responses whose status forbids a body (204, 304, 1xx) pass through
// untouched.
func GzipMiddleware(level int, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		grw := &gzipResponseWriter{ResponseWriter: w, level: level}
		defer grw.Close()

		next.ServeHTTP(grw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	level       int
	wroteHeader bool
	sink        *gzip.Writer
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if bodyAllowed(status) {
		h := w.Header()
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")

		gz, err := gzip.NewWriterLevel(w.ResponseWriter, w.level)
		if err != nil {
			panic(err)
		}
		w.sink = gz
	}

	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	if w.sink == nil {
		return w.ResponseWriter.Write(b)
	}

	return w.sink.Write(b)
}

func (w *gzipResponseWriter) Close() error {
	if w.sink == nil {
		return nil
	}

	return w.sink.Close()
}
