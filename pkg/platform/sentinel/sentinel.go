package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Adapters return these (wrapped) so
// services can decide between recovery and translation into domain errors.
// Validation failures belong to pkg/domain-errors.
var (
	ErrUnavailable     = errors.New("unavailable")
	ErrInvalidResponse = errors.New("invalid response")
	ErrRejected        = errors.New("rejected")
)
