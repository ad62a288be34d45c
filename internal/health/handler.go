// Package health serves liveness, readiness and component health. The
// service keeps answering when a dependency is down (registration falls back,
// rate limiting degrades to memory), so failing components are reported as
// DEGRADED rather than taking the instance out of rotation.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"cartoes/pkg/platform/httputil"
)

const (
	StatusUp       = "UP"
	StatusDown     = "DOWN"
	StatusDegraded = "DEGRADED"
)

const defaultCheckTimeout = 2 * time.Second

// Checker is a dependency that can report its health.
type Checker interface {
	Name() string
	Health(ctx context.Context) error
}

type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components,omitempty"`
}

type Component struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Handler struct {
	checkers []Checker
	timeout  time.Duration
	logger   *slog.Logger
}

func New(logger *slog.Logger, checkers ...Checker) *Handler {
	return &Handler{
		checkers: checkers,
		timeout:  defaultCheckTimeout,
		logger:   logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/liveness", h.HandleUp)
	r.Get("/health/readiness", h.HandleUp)
}

// HandleUp answers liveness and readiness probes.
func (h *Handler) HandleUp(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, Response{Status: StatusUp})
}

// HandleHealth runs every checker concurrently under a shared timeout.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.Check(r.Context()))
}

func (h *Handler) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]Component, len(h.checkers))
	var g errgroup.Group
	for i, c := range h.checkers {
		g.Go(func() error {
			results[i] = Component{Status: StatusUp}
			if err := c.Health(ctx); err != nil {
				h.logger.WarnContext(ctx, "health check failed", "component", c.Name(), "error", err)
				results[i] = Component{Status: StatusDown, Error: err.Error()}
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := Response{Status: StatusUp, Components: make(map[string]Component, len(h.checkers))}
	for i, c := range h.checkers {
		resp.Components[c.Name()] = results[i]
		if results[i].Status != StatusUp {
			resp.Status = StatusDegraded
		}
	}
	return resp
}
