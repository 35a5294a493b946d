package ogtags

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html"
)

var (
	ErrEmptyURL        = errors.New("og: no URL given")
	ErrFetch           = errors.New("og: can't fetch page")
	ErrUpstreamStatus  = errors.New("og: page returned a non-2xx status")
	ErrContentTooLarge = errors.New("og: page is too large")
	ErrParse           = errors.New("og: can't parse page")
)

// fetchHTMLDocument GETs urlStr and parses the body as HTML. Any 2xx status
// counts as success. The content type is not checked.
func (c *OGTagCache) fetchHTMLDocument(ctx context.Context, urlStr string) (*html.Node, error) {
	start := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		fetchFailures.WithLabelValues("request").Inc()
		return nil, fmt.Errorf("%w: can't create request: %w", ErrFetch, err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		fetchFailures.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Debug("og: error closing response body", "url", urlStr, "err", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fetchFailures.WithLabelValues("status").Inc()
		slog.Debug("og: received non-2xx status code", "url", urlStr, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}

	body := http.MaxBytesReader(nil, resp.Body, c.maxContentLength)

	doc, err := html.Parse(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			fetchFailures.WithLabelValues("too_large").Inc()
			slog.Debug("og: content exceeded max length", "url", urlStr, "limit", c.maxContentLength)
			return nil, fmt.Errorf("%w: exceeded %d bytes", ErrContentTooLarge, c.maxContentLength)
		}

		fetchFailures.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return doc, nil
}
