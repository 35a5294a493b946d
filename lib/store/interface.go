package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a backend has no live value for a key.
	ErrNotFound = errors.New("store: key not found")

	// ErrCantDecode is returned when a stored value cannot be turned back into
	// the type the caller asked for.
	ErrCantDecode = errors.New("store: can't decode value")

	// ErrCantEncode is returned when a value cannot be serialized into the
	// backend's storage format.
	ErrCantEncode = errors.New("store: can't encode value")

	// ErrBadConfig is returned when a backend's parameters are invalid.
	ErrBadConfig = errors.New("store: configuration is invalid")
)

// Interface is the storage contract used for memoized Open Graph results. It
// can be backed by process memory, a local database file or a shared remote
// datastore.
//
// An expiry of zero or less means the value never expires on its own; it may
// still be evicted by a capacity-bounded backend.
type Interface interface {
	// Delete removes a value from the store by key.
	Delete(ctx context.Context, key string) error

	// Get returns the value of a key assuming that value exists and has not expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set puts a value into the store that expires according to its expiry.
	Set(ctx context.Context, key string, value []byte, expiry time.Duration) error
}

func zero[T any]() T { return *new(T) }

// JSON stores values of type T as JSON documents in an Underlying store.
// Every key is prefixed with Prefix so several kinds of data can share one
// backend.
type JSON[T any] struct {
	Underlying Interface
	Prefix     string
}

func (j *JSON[T]) key(key string) string {
	return j.Prefix + key
}

func (j *JSON[T]) Delete(ctx context.Context, key string) error {
	return j.Underlying.Delete(ctx, j.key(key))
}

func (j *JSON[T]) Get(ctx context.Context, key string) (T, error) {
	data, err := j.Underlying.Get(ctx, j.key(key))
	if err != nil {
		return zero[T](), err
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return zero[T](), fmt.Errorf("%w: %w", ErrCantDecode, err)
	}

	return result, nil
}

func (j *JSON[T]) Set(ctx context.Context, key string, value T, expiry time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCantEncode, err)
	}

	return j.Underlying.Set(ctx, j.key(key), data, expiry)
}
