package config

import (
	"errors"
	"testing"
)

func TestOriginsAllowed(t *testing.T) {
	origins := Origins{"http://localhost:44", "https://tetralog.onrender.com"}

	for _, tt := range []struct {
		origin string
		want   bool
	}{
		{origin: "http://localhost:44", want: true},
		{origin: "https://tetralog.onrender.com", want: true},
		{origin: "", want: false},
		{origin: "null", want: false},
		{origin: "https://tetralog.onrender.com/", want: false},
		{origin: "HTTPS://TETRALOG.ONRENDER.COM", want: false},
		{origin: "http://localhost:4444", want: false},
		{origin: "https://evil.example", want: false},
	} {
		t.Run(tt.origin, func(t *testing.T) {
			if got := origins.Allowed(tt.origin); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestOriginsValid(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input Origins
		err   error
	}{
		{name: "defaults", input: Origins{"http://localhost:44", "https://tetralog.onrender.com"}},
		{name: "empty", input: Origins{}, err: ErrNoAllowedOrigins},
		{name: "trailing slash", input: Origins{"https://tetralog.onrender.com/"}, err: ErrInvalidOrigin},
		{name: "no scheme", input: Origins{"tetralog.onrender.com"}, err: ErrInvalidOrigin},
		{name: "path", input: Origins{"https://tetralog.onrender.com/app"}, err: ErrInvalidOrigin},
		{name: "one bad apple", input: Origins{"http://localhost:44", "*"}, err: ErrInvalidOrigin},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.input.Valid(); !errors.Is(err, tt.err) {
				t.Logf("want: %v", tt.err)
				t.Logf("got:  %v", err)
				t.Error("wrong error")
			}
		})
	}
}
