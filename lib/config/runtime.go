package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownRuntime          = errors.New("config.Runtime: unknown runtime")
	ErrRuntimeNeedsSharedStore = errors.New("config.Runtime: the edge runtime needs a store backend shared between instances")
)

// Runtime names the kind of environment hosting the service.
type Runtime string

const (
	// RuntimeNode is a single long-running process. Any store backend works.
	RuntimeNode Runtime = "node"

	// RuntimeEdge is many short-lived instances that share no memory, so the
	// cache has to live in a shared backend.
	RuntimeEdge Runtime = "edge"
)

// sharedBackends are the store backends every instance of a deployment can
// reach at once.
var sharedBackends = []string{"valkey"}

func (r Runtime) Valid() error {
	switch r {
	case RuntimeNode, RuntimeEdge:
		return nil
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownRuntime, string(r), RuntimeNode, RuntimeEdge)
	}
}

// ValidStore reports whether backend can serve this runtime.
func (r Runtime) ValidStore(backend string) error {
	if r == RuntimeEdge && !slices.Contains(sharedBackends, backend) {
		return fmt.Errorf("%w: got %q, want one of %v", ErrRuntimeNeedsSharedStore, backend, sharedBackends)
	}

	return nil
}
