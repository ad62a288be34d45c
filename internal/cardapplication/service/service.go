// Package service orchestrates a card application: it validates the
// submitted client, registers the application and resolves the offers.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cartoes/internal/cardapplication/metrics"
	"cartoes/internal/cardapplication/ports"
	"cartoes/internal/eligibility"
	"cartoes/internal/platform/logger"
	dErrors "cartoes/pkg/domain-errors"
	"cartoes/pkg/requestcontext"
)

// Submission is an accepted application with its offers. Offers may be empty.
type Submission struct {
	ID          uuid.UUID
	RequestedAt time.Time
	Client      eligibility.Profile
	Rule        string
	Offers      []eligibility.Offer
}

type Service struct {
	evaluator *eligibility.Evaluator
	registrar ports.Registrar
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(evaluator *eligibility.Evaluator, registrar ports.Registrar, opts ...Option) *Service {
	s := &Service{
		evaluator: evaluator,
		registrar: registrar,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer("cartoes/internal/cardapplication"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates data, registers the application and evaluates it. The
// reference time for age checks is the request-scoped clock.
func (s *Service) Submit(ctx context.Context, data ClientData) (*Submission, error) {
	ctx, span := s.tracer.Start(ctx, "cardapplication.Submit")
	defer span.End()

	start := time.Now()
	requestID := requestcontext.RequestID(ctx)
	now := requestcontext.Now(ctx)
	defer func() {
		s.metrics.ObserveEvaluateLatency(time.Since(start))
	}()

	profile, err := data.Profile()
	if err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeInvalid)
		return nil, err
	}

	if err := s.evaluator.Validate(profile, now); err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeRejected)
		s.logger.InfoContext(ctx, "application rejected",
			"request_id", requestID,
			"cpf", logger.MaskCPF(profile.CPF),
			"error", err,
		)
		return nil, err
	}

	applicationID, err := s.registrar.Register(ctx, profile)
	if err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register application")
	}

	result, err := s.evaluator.Evaluate(profile)
	if err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeRejected)
		return nil, err
	}

	s.metrics.IncrementRule(result.Rule)
	for _, offer := range result.Offers {
		s.metrics.IncrementOffer(string(offer.Card))
	}
	if len(result.Offers) == 0 {
		s.metrics.IncrementOutcome(metrics.OutcomeNoOffers)
	} else {
		s.metrics.IncrementOutcome(metrics.OutcomeOffered)
	}

	span.SetAttributes(
		attribute.String("application.id", applicationID.String()),
		attribute.String("eligibility.rule", result.Rule),
		attribute.Int("eligibility.offers", len(result.Offers)),
	)
	s.logger.InfoContext(ctx, "application processed",
		"request_id", requestID,
		"application_id", applicationID,
		"rule", result.Rule,
		"offers", len(result.Offers),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Submission{
		ID:          applicationID,
		RequestedAt: now,
		Client:      profile,
		Rule:        result.Rule,
		Offers:      result.Offers,
	}, nil
}
