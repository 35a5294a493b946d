package internal

import (
	"bytes"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestErrorLogFilter(t *testing.T) {
	var buf bytes.Buffer
	testErrorLogger := log.New(&ErrorLogFilter{Unwrap: log.New(&buf, "", 0)}, "", 0)

	for _, tt := range []struct {
		name    string
		message string
		kept    bool
	}{
		{name: "context canceled", message: "http: proxy error: context canceled"},
		{name: "other error", message: "http: TLS handshake error from 127.0.0.1:1234: EOF", kept: true},
		{name: "embedded context canceled", message: "before context canceled after"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			testErrorLogger.Println(tt.message)

			switch {
			case tt.kept && !strings.HasSuffix(buf.String(), tt.message+"\n"):
				t.Errorf("message was not written to output, output: %q", buf.String())
			case !tt.kept && buf.Len() != 0:
				t.Errorf("message was not suppressed, output: %q", buf.String())
			}
		})
	}
}

func TestGetRequestLogger(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/opengraph?url=x", nil)
	req.Header.Set("Origin", "http://localhost:44")

	if lg := GetRequestLogger(req); lg == nil {
		t.Fatal("wanted a logger, got nil")
	}
}
