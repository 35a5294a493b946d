package lib

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tetralog/opengraph/internal"
	"github.com/tetralog/opengraph/internal/ogtags"
)

func respondWithStatus(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// encodeOGData renders data the way browsers' JSON.stringify would: no HTML
// escaping and no trailing newline.
func encodeOGData(data ogtags.OGData) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (s *Server) writeOGData(w http.ResponseWriter, r *http.Request, origin string, data ogtags.OGData) {
	body, err := encodeOGData(data)
	if err != nil {
		requests.WithLabelValues("error").Inc()
		internal.GetRequestLogger(r).Error("can't encode Open Graph data", "data", data, "err", err)
		respondWithStatus(w, "Error fetching Open Graph data", http.StatusInternalServerError)
		return
	}

	etag := `"` + internal.FastHashBytes(body) + `"`

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("ETag", etag)

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		requests.WithLabelValues("not_modified").Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	requests.WithLabelValues("ok").Inc()
	h.Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// etagMatches implements the weak comparison If-None-Match asks for.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}

	for candidate := range strings.SplitSeq(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}

	return false
}

// urlSearchParam returns the first value of name in rawQuery, parsed the way
// browsers' URLSearchParams does: pairs split on '&' only, '+' is a space and
// malformed percent escapes are kept as written.
func urlSearchParam(rawQuery, name string) string {
	for pair := range strings.SplitSeq(rawQuery, "&") {
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		if lenientUnescape(key) == name {
			return lenientUnescape(value)
		}
	}

	return ""
}

func lenientUnescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			sb.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			sb.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
