package config

import (
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/util/yaml"
)

type fileConfig struct {
	AllowedOrigins Origins             `json:"allowedOrigins"`
	Runtime        Runtime             `json:"runtime,omitempty"`
	Store          *Store              `json:"store,omitempty"`
	OpenGraph      openGraphFileConfig `json:"openGraph"`
}

func (c *fileConfig) Valid() error {
	var errs []error

	if err := c.AllowedOrigins.Valid(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Runtime.Valid(); err != nil {
		errs = append(errs, err)
	}

	if c.Store == nil {
		errs = append(errs, ErrNoStoreBackend)
	} else if err := c.Store.Valid(); err != nil {
		errs = append(errs, err)
	} else if err := c.Runtime.ValidStore(c.Store.Backend); err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return fmt.Errorf("config is not valid:\n%w", errors.Join(errs...))
	}

	return nil
}

// Load decodes a YAML or JSON configuration document. fname is only used in
// error messages. Missing runtime and store settings default to the node
// runtime with an in-memory store.
func Load(fin io.Reader, fname string) (*Config, error) {
	c := &fileConfig{
		Runtime: RuntimeNode,
		Store: &Store{
			Backend: "memory",
		},
	}

	if err := yaml.NewYAMLToJSONDecoder(fin).Decode(c); err != nil {
		return nil, fmt.Errorf("can't parse config YAML %s: %w", fname, err)
	}

	if err := c.Valid(); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}

	og, err := c.OpenGraph.parse()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}

	return &Config{
		AllowedOrigins: c.AllowedOrigins,
		Runtime:        c.Runtime,
		Store:          *c.Store,
		OpenGraph:      og,
	}, nil
}

// Config is the validated service configuration. It does not change after
// startup.
type Config struct {
	AllowedOrigins Origins
	Runtime        Runtime
	Store          Store
	OpenGraph      OpenGraph
}

// Valid re-checks a Config after flag overrides have been applied to it.
func (c Config) Valid() error {
	var errs []error

	if err := c.AllowedOrigins.Valid(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Runtime.Valid(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Store.Valid(); err != nil {
		errs = append(errs, err)
	} else if err := c.Runtime.ValidStore(c.Store.Backend); err != nil {
		errs = append(errs, err)
	}

	if err := c.OpenGraph.Valid(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return fmt.Errorf("config is not valid:\n%w", errors.Join(errs...))
	}

	return nil
}
