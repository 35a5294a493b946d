package valkey

import (
	"context"
	"errors"
	"fmt"
	"time"

	valkey "github.com/redis/go-redis/v9"
	"github.com/tetralog/opengraph/lib/store"
)

// Store implements store.Interface on top of valkey. Several service
// instances can share one Store, which is what the edge runtime needs.
type Store struct {
	rdb *valkey.Client
}

func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("can't delete from valkey: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %q", store.ErrNotFound, key)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, valkey.Nil) {
			return nil, fmt.Errorf("%w: %q", store.ErrNotFound, key)
		}

		return nil, fmt.Errorf("can't fetch from valkey: %w", err)
	}

	return result, nil
}

// Set stores value under key. A non-positive expiry maps to valkey's "no
// expiration".
func (s *Store) Set(ctx context.Context, key string, value []byte, expiry time.Duration) error {
	if expiry < 0 {
		expiry = 0
	}

	if err := s.rdb.Set(ctx, key, value, expiry).Err(); err != nil {
		return fmt.Errorf("can't set %q in valkey: %w", key, err)
	}

	return nil
}
