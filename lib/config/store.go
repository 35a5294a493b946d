package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tetralog/opengraph/lib/store"
	_ "github.com/tetralog/opengraph/lib/store/all"
)

var (
	ErrNoStoreBackend      = errors.New("config.Store: no backend defined")
	ErrUnknownStoreBackend = errors.New("config.Store: unknown backend")
)

// Store selects the cache backend and carries its backend-specific
// parameters.
type Store struct {
	Backend    string          `json:"backend"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

func (s *Store) Valid() error {
	if len(s.Backend) == 0 {
		return ErrNoStoreBackend
	}

	fac, ok := store.Get(s.Backend)
	if !ok {
		return fmt.Errorf("%w: %q, known backends: %v", ErrUnknownStoreBackend, s.Backend, store.Methods())
	}

	return fac.Valid(s.Parameters)
}
