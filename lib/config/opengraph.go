package config

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMaxContentLength caps fetched page bodies at 16 MiB.
const DefaultMaxContentLength = 16 << 20

var (
	ErrInvalidOpenGraphConfig       = errors.New("config.OpenGraph: invalid OpenGraph configuration")
	ErrOpenGraphTTLDoesNotParse     = errors.New("config.OpenGraph: ttl does not parse as a Duration, see https://pkg.go.dev/time#ParseDuration (formatted like 5m -> 5 minutes, 2h -> 2 hours, etc)")
	ErrOpenGraphTimeoutDoesNotParse = errors.New("config.OpenGraph: fetchTimeout does not parse as a Duration")
	ErrOpenGraphNegativeDuration    = errors.New("config.OpenGraph: durations must not be negative")
	ErrOpenGraphBadMaxContentLength = errors.New("config.OpenGraph: maxContentLength must not be negative")
)

type openGraphFileConfig struct {
	TimeToLive       string `json:"ttl,omitempty"`
	FetchTimeout     string `json:"fetchTimeout,omitempty"`
	MaxContentLength int64  `json:"maxContentLength,omitempty"`
	UserAgent        string `json:"userAgent,omitempty"`
}

// OpenGraph controls how pages are fetched and how long results are kept.
type OpenGraph struct {
	// TimeToLive of a cached result. Zero keeps results until evicted.
	TimeToLive time.Duration
	// FetchTimeout bounds one outbound fetch. Zero means no timeout.
	FetchTimeout time.Duration
	// MaxContentLength is the largest page body that will be parsed.
	MaxContentLength int64
	// UserAgent sent on outbound fetches. Empty means the built-in default.
	UserAgent string
}

func parseDuration(val string, parseErr error) (time.Duration, error) {
	if val == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: ParseDuration(%q) returned: %w", parseErr, val, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("%w: %s", ErrOpenGraphNegativeDuration, val)
	}

	return d, nil
}

func (og *openGraphFileConfig) parse() (OpenGraph, error) {
	var errs []error

	ttl, err := parseDuration(og.TimeToLive, ErrOpenGraphTTLDoesNotParse)
	if err != nil {
		errs = append(errs, err)
	}

	timeout, err := parseDuration(og.FetchTimeout, ErrOpenGraphTimeoutDoesNotParse)
	if err != nil {
		errs = append(errs, err)
	}

	maxContentLength := og.MaxContentLength
	switch {
	case maxContentLength < 0:
		errs = append(errs, fmt.Errorf("%w: %d", ErrOpenGraphBadMaxContentLength, maxContentLength))
	case maxContentLength == 0:
		maxContentLength = DefaultMaxContentLength
	}

	if len(errs) != 0 {
		return OpenGraph{}, errors.Join(ErrInvalidOpenGraphConfig, errors.Join(errs...))
	}

	return OpenGraph{
		TimeToLive:       ttl,
		FetchTimeout:     timeout,
		MaxContentLength: maxContentLength,
		UserAgent:        og.UserAgent,
	}, nil
}

func (og OpenGraph) Valid() error {
	var errs []error

	if og.TimeToLive < 0 || og.FetchTimeout < 0 {
		errs = append(errs, ErrOpenGraphNegativeDuration)
	}

	if og.MaxContentLength <= 0 {
		errs = append(errs, ErrOpenGraphBadMaxContentLength)
	}

	if len(errs) != 0 {
		return errors.Join(ErrInvalidOpenGraphConfig, errors.Join(errs...))
	}

	return nil
}
