package ogtags

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tetralog/opengraph/lib/store"
)

// GetOGData returns the metadata for the page at u, fetching it on a cache
// miss. The cache key is u exactly as given.
//
// Concurrent misses for the same URL share one fetch. That fetch is not
// cancelled when the caller that started it goes away; the fetch timeout
// bounds it instead.
func (c *OGTagCache) GetOGData(ctx context.Context, u string) (OGData, error) {
	if u == "" {
		return OGData{}, ErrEmptyURL
	}

	if data, ok := c.checkCache(ctx, u); ok {
		return data, nil
	}

	result, err, shared := c.group.Do(u, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		doc, err := c.fetchHTMLDocument(ctx, u)
		if err != nil {
			return OGData{}, err
		}

		data := extractOGData(doc)

		if err := c.cache.Set(ctx, u, data, c.ogTimeToLive); err != nil {
			slog.Warn("og: can't store result, it will be fetched again next time", "url", u, "err", err)
		}

		return data, nil
	})
	if err != nil {
		return OGData{}, err
	}

	if shared {
		slog.Debug("og: shared a fetch with a concurrent request", "url", u)
	}

	return result.(OGData), nil
}

// checkCache returns the stored metadata for u if there is any. Backend
// failures are logged and reported as a miss.
func (c *OGTagCache) checkCache(ctx context.Context, u string) (OGData, bool) {
	data, err := c.cache.Get(ctx, u)
	switch {
	case err == nil:
		cacheLookups.WithLabelValues("hit").Inc()
		slog.Debug("og: cache hit", "url", u, "data", data)
		return data, true
	case errors.Is(err, store.ErrNotFound):
	default:
		slog.Warn("og: can't read from cache, treating as a miss", "url", u, "err", err)
	}

	cacheLookups.WithLabelValues("miss").Inc()
	slog.Debug("og: cache miss", "url", u)
	return OGData{}, false
}
