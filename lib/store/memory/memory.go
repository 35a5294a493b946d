package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tetralog/opengraph/lib/store"
)

// DefaultSize is the number of entries kept when no size is configured.
const DefaultSize = 4096

var ErrBadSize = errors.New("memory.Config: size must not be negative")

type factory struct{}

func (factory) Build(ctx context.Context, data json.RawMessage) (store.Interface, error) {
	config, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	return NewSize(ctx, config.Size)
}

func (factory) Valid(data json.RawMessage) error {
	_, err := parseConfig(data)
	return err
}

func init() {
	store.Register("memory", factory{})
}

// Config is the memory backend configuration. A zero Size selects DefaultSize.
type Config struct {
	Size int `json:"size"`
}

func (c Config) Valid() error {
	if c.Size < 0 {
		return ErrBadSize
	}

	return nil
}

func parseConfig(data json.RawMessage) (Config, error) {
	var config Config
	if len(data) != 0 {
		if err := json.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("%w: %w", store.ErrBadConfig, err)
		}
	}

	if err := config.Valid(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", store.ErrBadConfig, err)
	}

	return config, nil
}

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

type impl struct {
	store *lru.Cache[string, entry]
}

func (i *impl) Delete(_ context.Context, key string) error {
	if !i.store.Remove(key) {
		return fmt.Errorf("%w: %q", store.ErrNotFound, key)
	}

	return nil
}

func (i *impl) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := i.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, key)
	}

	if e.expired(time.Now()) {
		i.store.Remove(key)
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, key)
	}

	return e.value, nil
}

func (i *impl) Set(_ context.Context, key string, value []byte, expiry time.Duration) error {
	e := entry{value: value}
	if expiry > 0 {
		e.expires = time.Now().Add(expiry)
	}

	i.store.Add(key, e)
	return nil
}

func (i *impl) cleanup() {
	now := time.Now()
	for _, key := range i.store.Keys() {
		if e, ok := i.store.Peek(key); ok && e.expired(now) {
			i.store.Remove(key)
		}
	}
}

func (i *impl) cleanupThread(ctx context.Context) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			i.cleanup()
		}
	}
}

// New creates an in-memory store holding up to DefaultSize entries. It is
// local to one process.
func New(ctx context.Context) store.Interface {
	result, _ := NewSize(ctx, DefaultSize)
	return result
}

// NewSize creates an in-memory store that evicts the least recently used
// entry once size entries are held.
func NewSize(ctx context.Context, size int) (store.Interface, error) {
	if size == 0 {
		size = DefaultSize
	}

	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrBadConfig, err)
	}

	result := &impl{
		store: cache,
	}

	go result.cleanupThread(ctx)

	return result, nil
}
