package internal

import (
	"net"
	"net/http"

	"github.com/sebest/xff"
)

// RealIP sets the X-Real-Ip header from the left-most public address in
// X-Forwarded-For, or from the connection's remote address when there is
// none. Request loggers read X-Real-Ip.
//
// When trustForwarded is false the forwarding headers are ignored, which is
// what you want when the service is exposed directly.
func RealIP(trustForwarded bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if trustForwarded {
			addr = xff.GetRemoteAddr(r)
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			// unix sockets have no port, and sometimes no address at all
			host = addr
		}

		if host != "" && host != "@" {
			r.Header.Set("X-Real-Ip", host)
		}

		next.ServeHTTP(w, r)
	})
}
