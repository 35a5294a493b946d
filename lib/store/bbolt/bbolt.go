package bbolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tetralog/opengraph/lib/store"
	"go.etcd.io/bbolt"
)

var ErrNotExists = errors.New("bbolt: value does not exist in store")

var (
	dataKey   = []byte("data")
	expiryKey = []byte("expiry")
	never     = []byte("never")
)

// Store implements store.Interface backed by bbolt[1].
//
// Every value gets its own bucket holding two keys:
//
// 1. data - the raw value, usually JSON
// 2. expiry - a time.RFC3339Nano timestamp, or "never"
//
// Keeping expiry in a separate key lets cleanup scan every bucket without
// decoding the stored documents.
//
// A bbolt file can only be opened by one process at a time, so this backend
// suits a single long-running instance that wants its cache to survive
// restarts. Use valkey to share a cache between instances.
//
// [1]: https://github.com/etcd-io/bbolt
type Store struct {
	bdb *bbolt.DB
}

func parseExpiry(raw []byte) (time.Time, error) {
	if bytes.Equal(raw, never) {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339Nano, string(raw))
}

func expired(expiry time.Time, now time.Time) bool {
	return !expiry.IsZero() && now.After(expiry)
}

// Delete a key from the datastore. If the key does not exist, return an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.bdb.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(key)) == nil {
			return fmt.Errorf("%w: %w: %q", store.ErrNotFound, ErrNotExists, key)
		}

		return tx.DeleteBucket([]byte(key))
	})
}

// Get a value from the datastore. Expired values are deleted in the
// background and reported as not found.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte

	if err := s.bdb.View(func(tx *bbolt.Tx) error {
		itemBucket := tx.Bucket([]byte(key))
		if itemBucket == nil {
			return fmt.Errorf("%w: %q", store.ErrNotFound, key)
		}

		expiryStr := itemBucket.Get(expiryKey)
		if expiryStr == nil {
			return fmt.Errorf("[unexpected] %w: %q (expiry is nil)", store.ErrNotFound, key)
		}

		expiry, err := parseExpiry(expiryStr)
		if err != nil {
			return fmt.Errorf("[unexpected] %w: %w", store.ErrCantDecode, err)
		}

		if expired(expiry, time.Now()) {
			go s.Delete(context.Background(), key)
			return fmt.Errorf("%w: %q", store.ErrNotFound, key)
		}

		data := itemBucket.Get(dataKey)
		if data == nil {
			return fmt.Errorf("[unexpected] %w: %q (data is nil)", store.ErrNotFound, key)
		}

		// bbolt memory is only valid for the life of the transaction
		result = make([]byte, len(data))
		copy(result, data)

		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// Set a value into the store with a given expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte, expiry time.Duration) error {
	expires := never
	if expiry > 0 {
		expires = []byte(time.Now().Add(expiry).Format(time.RFC3339Nano))
	}

	return s.bdb.Update(func(tx *bbolt.Tx) error {
		valueBkt, err := tx.CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return fmt.Errorf("%w: %w: %q (create bucket)", store.ErrCantEncode, err, key)
		}

		if err := valueBkt.Put(expiryKey, expires); err != nil {
			return fmt.Errorf("%w: %w: %q (expiry)", store.ErrCantEncode, err, key)
		}

		if err := valueBkt.Put(dataKey, value); err != nil {
			return fmt.Errorf("%w: %w: %q (data)", store.ErrCantEncode, err, key)
		}

		return nil
	})
}

func (s *Store) cleanup() error {
	now := time.Now()

	return s.bdb.Update(func(tx *bbolt.Tx) error {
		var stale [][]byte

		if err := tx.ForEach(func(key []byte, valueBkt *bbolt.Bucket) error {
			expiryStr := valueBkt.Get(expiryKey)
			if expiryStr == nil {
				slog.Warn("while running cleanup, expiry is not set somehow, file a bug?", "key", string(key))
				return nil
			}

			expiry, err := parseExpiry(expiryStr)
			if err != nil {
				return fmt.Errorf("[unexpected] %w in bucket %q: %w", store.ErrCantDecode, string(key), err)
			}

			if expired(expiry, now) {
				stale = append(stale, append([]byte(nil), key...))
			}

			return nil
		}); err != nil {
			return err
		}

		for _, key := range stale {
			if err := tx.DeleteBucket(key); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Store) cleanupThread(ctx context.Context) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.bdb.Close(); err != nil {
				slog.Error("error closing bbolt database", "err", err)
			}
			return
		case <-t.C:
			if err := s.cleanup(); err != nil {
				slog.Error("error during bbolt cleanup", "err", err)
			}
		}
	}
}
