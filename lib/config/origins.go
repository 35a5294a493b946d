package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var (
	ErrNoAllowedOrigins = errors.New("config.Origins: at least one allowed origin is required")
	ErrInvalidOrigin    = errors.New("config.Origins: origin must be scheme://host[:port] with nothing after it")
)

// Origins is the allow-list of Origin header values that may call the API.
// Membership is exact string equality; nothing is normalized.
type Origins []string

// Allowed reports whether origin is present and is a member of the list.
func (o Origins) Allowed(origin string) bool {
	return origin != "" && slices.Contains(o, origin)
}

func (o Origins) Valid() error {
	if len(o) == 0 {
		return ErrNoAllowedOrigins
	}

	var errs []error
	for _, origin := range o {
		if err := validOrigin(origin); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validOrigin checks that origin looks like something a browser would put in
// an Origin header, so a typo such as a trailing slash fails at startup
// instead of silently rejecting every request.
func validOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidOrigin, origin, err)
	}

	if u.Scheme == "" || u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	return nil
}
