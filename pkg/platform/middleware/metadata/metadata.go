package metadata

import (
	"net"
	"net/http"
	"strings"

	"cartoes/pkg/requestcontext"
)

// ClientMetadata resolves the client IP once and stores it in the context.
// Apply it before any middleware that keys on the caller. Forwarding headers
// are honored only when trustProxy is set, that is when the service runs
// behind a proxy that overwrites them.
func ClientMetadata(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientIP(r.Context(), ClientIPFromRequest(r, trustProxy))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest extracts the originating client IP. With trustProxy the
// first X-Forwarded-For entry wins, then X-Real-IP; otherwise only the peer
// address counts.
func ClientIPFromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
