package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"cartoes/internal/platform/logger"
	"cartoes/internal/ratelimit/metrics"
	"cartoes/internal/ratelimit/models"
	dErrors "cartoes/pkg/domain-errors"
	"cartoes/pkg/platform/circuit"
	"cartoes/pkg/platform/httputil"
	"cartoes/pkg/requestcontext"
)

// Limiter takes one unit from the bucket identified by key.
type Limiter interface {
	Allow(ctx context.Context, key string) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback serves checks from fallback while breaker is open. Without a
// fallback, limiter errors let the request through.
func WithFallback(fallback Limiter, breaker *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.fallback = fallback
		m.breaker = breaker
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fallback != nil && m.breaker == nil {
		m.breaker = circuit.New("ratelimit")
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP as resolved by the metadata
// middleware.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, degraded, err := m.check(ctx, models.NewIPKey(ip))
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check IP rate limit",
					"error", err,
					"ip_prefix", logger.AnonymizeIP(ip),
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}

			if !result.Allowed {
				m.metrics.IncrementRateLimited()
				m.logger.InfoContext(ctx, "rate limit exceeded",
					"ip_prefix", logger.AnonymizeIP(ip),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check consults the primary limiter, switching to the fallback while the
// breaker is open. degraded reports whether the fallback answered.
func (m *Middleware) check(ctx context.Context, key string) (result *models.RateLimitResult, degraded bool, err error) {
	if m.fallback == nil {
		result, err = m.limiter.Allow(ctx, key)
		if err != nil {
			m.metrics.IncrementLimiterErrors()
		}
		return result, false, err
	}

	if !m.breaker.Allow() {
		result, err = m.fallback.Allow(ctx, key)
		return result, true, err
	}

	result, err = m.limiter.Allow(ctx, key)
	if err == nil {
		if _, change := m.breaker.RecordSuccess(); change.Closed {
			m.logger.InfoContext(ctx, "primary rate limiter recovered")
			m.metrics.SetDegraded(false)
		}
		return result, false, nil
	}

	m.metrics.IncrementLimiterErrors()
	if _, change := m.breaker.RecordFailure(); change.Opened {
		m.logger.WarnContext(ctx, "primary rate limiter unavailable, switching to fallback", "error", err)
		m.metrics.SetDegraded(true)
	}
	result, err = m.fallback.Allow(ctx, key)
	return result, true, err
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
		"Too many requests from this IP address. Please try again later."))
}
