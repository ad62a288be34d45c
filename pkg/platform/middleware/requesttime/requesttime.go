// Package requesttime captures one "now" per request so the age check, the
// application timestamp and the logs agree on the same instant.
package requesttime

import (
	"net/http"
	"time"

	"cartoes/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
