package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

var (
	registry = map[string]Factory{}
	regLock  sync.RWMutex
)

// Factory validates backend parameters and builds configured backends.
type Factory interface {
	Build(ctx context.Context, config json.RawMessage) (Interface, error)
	Valid(config json.RawMessage) error
}

// Register makes a backend available under name. It is meant to be called
// from the init function of a backend package.
func Register(name string, impl Factory) {
	regLock.Lock()
	defer regLock.Unlock()

	registry[name] = impl
}

func Get(name string) (Factory, bool) {
	regLock.RLock()
	defer regLock.RUnlock()
	result, ok := registry[name]
	return result, ok
}

// Methods returns the sorted names of every registered backend.
func Methods() []string {
	regLock.RLock()
	defer regLock.RUnlock()
	result := make([]string, 0, len(registry))
	for method := range registry {
		result = append(result, method)
	}
	sort.Strings(result)
	return result
}

// Build looks up the named backend and builds it with the given parameters.
func Build(ctx context.Context, name string, config json.RawMessage) (Interface, error) {
	fac, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q, known backends: %v", ErrBadConfig, name, Methods())
	}

	return fac.Build(ctx, config)
}
