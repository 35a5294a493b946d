package lib

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/tetralog/opengraph"
	"github.com/tetralog/opengraph/data"
	"github.com/tetralog/opengraph/internal/ogtags"
	"github.com/tetralog/opengraph/lib/config"
	"github.com/tetralog/opengraph/lib/store"
)

type Options struct {
	Config *config.Config

	// Store holds memoized results. When nil, the backend named in
	// Config.Store is built.
	Store store.Interface

	// BasePrefix is the path the service is mounted under, e.g. /tetralog.
	BasePrefix string
}

// LoadConfigOrDefault reads the configuration in fname, or the built-in
// configuration when fname is empty.
func LoadConfigOrDefault(fname string) (*config.Config, error) {
	var fin io.ReadCloser
	var err error

	if fname != "" {
		fin, err = os.Open(fname)
		if err != nil {
			return nil, fmt.Errorf("can't open config file %s: %w", fname, err)
		}
	} else {
		fname = "(data)/config.yaml"
		fin, err = data.Config.Open("config.yaml")
		if err != nil {
			return nil, fmt.Errorf("[unexpected] can't open builtin config file %s: %w", fname, err)
		}
	}

	defer func(fin io.ReadCloser) {
		err := fin.Close()
		if err != nil {
			slog.Error("failed to close config file", "file", fname, "err", err)
		}
	}(fin)

	c, err := config.Load(fin, fname)
	if err != nil {
		return nil, fmt.Errorf("can't load config file %s: %w", fname, err)
	}

	return c, nil
}

// New validates opts and wires up a Server. ctx bounds the lifetime of the
// store backend's background work.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("lib: no config given")
	}

	if err := opts.Config.Valid(); err != nil {
		return nil, fmt.Errorf("lib: %w", err)
	}

	if opts.Store == nil {
		st, err := store.Build(ctx, opts.Config.Store.Backend, opts.Config.Store.Parameters)
		if err != nil {
			return nil, fmt.Errorf("lib: can't build %s store: %w", opts.Config.Store.Backend, err)
		}
		opts.Store = st
	}

	result := &Server{
		OGTags: ogtags.NewOGTagCache(opts.Config.OpenGraph, opts.Store),
		opts:   opts,
	}

	mux := http.NewServeMux()

	// Helper to add global prefix
	registerWithPrefix := func(pattern string, handler http.Handler, method string) {
		if method != "" {
			method = method + " " // methods must end with a space to register with them
		}

		// Ensure there's no double slash when concatenating BasePrefix and pattern
		basePrefix := strings.TrimSuffix(opts.BasePrefix, "/")
		prefix := method + basePrefix

		if !strings.HasPrefix(pattern, "/") {
			pattern = "/" + pattern
		}

		mux.Handle(prefix+pattern, handler)
	}

	registerWithPrefix(opengraph.APIPath, http.HandlerFunc(result.ServeOpenGraph), http.MethodGet)

	result.mux = mux

	return result, nil
}
