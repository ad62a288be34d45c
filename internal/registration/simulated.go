package registration

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cartoes/internal/eligibility"
	"cartoes/internal/platform/logger"
	"cartoes/internal/registration/metrics"
)

// Simulated stands in for the remote registry when none is configured. It
// logs the registration and returns a locally generated identifier.
type Simulated struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	newID   func() uuid.UUID
}

func NewSimulated(opts ...Option) *Simulated {
	o := buildOptions(opts)
	return &Simulated{logger: o.logger, metrics: o.metrics, newID: o.newID}
}

func (s *Simulated) Register(ctx context.Context, profile eligibility.Profile) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	start := time.Now()
	id := s.newID()
	s.logger.InfoContext(ctx, "registration simulated",
		"application_id", id,
		"cpf", logger.MaskCPF(profile.CPF),
	)
	s.metrics.ObserveRegistration(metrics.ResultSimulated, time.Since(start))
	return id, nil
}

func (s *Simulated) Name() string { return "registration" }

// Health always passes; there is no remote dependency.
func (s *Simulated) Health(context.Context) error { return nil }
