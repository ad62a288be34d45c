// Package requestid propagates the chi request ID into requestcontext and
// echoes it back to the caller.
package requestid

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"cartoes/pkg/requestcontext"
)

// Header is the response header carrying the request ID.
const Header = "X-Request-ID"

// Middleware must run after chi's middleware.RequestID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID == "" {
			reqID = r.Header.Get(Header)
		}
		if reqID != "" {
			w.Header().Set(Header, reqID)
		}
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
