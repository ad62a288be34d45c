package registration

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cartoes/internal/registration/metrics"
	"cartoes/pkg/platform/circuit"
)

type options struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	breaker    *circuit.Breaker
	httpClient *http.Client
	newID      func() uuid.UUID
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithBreaker replaces the breaker built from Config.
func WithBreaker(b *circuit.Breaker) Option {
	return func(o *options) {
		o.breaker = b
	}
}

// WithHTTPClient replaces the client built from Config timeouts.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithIDGenerator sets the source of locally generated identifiers.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(o *options) {
		o.newID = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("cartoes/internal/registration"),
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
