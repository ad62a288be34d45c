package ports

import (
	"context"

	"github.com/google/uuid"

	"cartoes/internal/eligibility"
)

//go:generate mockgen -source=registrar.go -destination=mocks/mocks.go -package=mocks Registrar

// Registrar assigns the application identifier. Implementations own their
// retry, circuit breaking and fallback; an error means the caller gave up.
type Registrar interface {
	Register(ctx context.Context, profile eligibility.Profile) (uuid.UUID, error)
}
