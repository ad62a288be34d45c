// Package httptransport assembles the public HTTP surface. Handlers own their
// routes; this package only decides middleware order and mounting.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	cardhandler "cartoes/internal/cardapplication/handler"
	"cartoes/internal/health"
	"cartoes/internal/platform/metrics"
	"cartoes/internal/platform/middleware"
	ratelimitmw "cartoes/internal/ratelimit/middleware"
	dErrors "cartoes/pkg/domain-errors"
	"cartoes/pkg/platform/httputil"
	"cartoes/pkg/platform/middleware/metadata"
	"cartoes/pkg/platform/middleware/requestid"
	"cartoes/pkg/platform/middleware/requesttime"
)

// Deps are the handlers and cross-cutting pieces the router mounts.
// RateLimit may be nil. TrustProxy makes client IPs come from forwarding
// headers.
type Deps struct {
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	Cards      *cardhandler.Handler
	Health     *health.Handler
	RateLimit  *ratelimitmw.Middleware
	TrustProxy bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requestid.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(metadata.ClientMetadata(d.TrustProxy))
	r.Use(requesttime.Middleware)
	r.Use(middleware.AccessLog(d.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "No handler for "+r.Method+" "+r.URL.Path))
	})

	r.Group(func(r chi.Router) {
		if d.RateLimit != nil {
			r.Use(d.RateLimit.RateLimit())
		}
		d.Cards.Register(r)
	})

	d.Health.Register(r)
	r.Handle("/metrics", metrics.Handler(d.Registry))
	return r
}
