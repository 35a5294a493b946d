package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tetralog/opengraph/lib/store"
	"go.etcd.io/bbolt"
)

var (
	ErrMissingPath     = errors.New("bbolt: path is missing from config")
	ErrCantWriteToPath = errors.New("bbolt: can't write to path")
)

// openTimeout bounds how long Build waits for the file lock held by another
// process.
const openTimeout = 5 * time.Second

func init() {
	store.Register("bbolt", Factory{})
}

// Factory builds bbolt backends from a JSON-encoded Config.
type Factory struct{}

func (Factory) Build(ctx context.Context, data json.RawMessage) (store.Interface, error) {
	config, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	bdb, err := bbolt.Open(config.Path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("can't open bbolt database %s: %w", config.Path, err)
	}

	result := &Store{
		bdb: bdb,
	}

	go result.cleanupThread(ctx)

	return result, nil
}

func (Factory) Valid(data json.RawMessage) error {
	_, err := parseConfig(data)
	return err
}

func parseConfig(data json.RawMessage) (Config, error) {
	var config Config
	if err := json.Unmarshal([]byte(data), &config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", store.ErrBadConfig, err)
	}

	if err := config.Valid(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", store.ErrBadConfig, err)
	}

	return config, nil
}

// Config is the bbolt backend configuration.
type Config struct {
	// Path of the database file. Its folder must be writable by the service.
	Path string `json:"path"`
}

// Valid checks that Path is set and that its folder is writable.
func (c Config) Valid() error {
	var errs []error

	if c.Path == "" {
		errs = append(errs, ErrMissingPath)
	} else {
		probe := filepath.Join(filepath.Dir(c.Path), ".opengraph-write-test")
		if err := os.WriteFile(probe, []byte(""), 0600); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrCantWriteToPath, err))
		}
		os.Remove(probe)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}
