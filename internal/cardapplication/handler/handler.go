package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cartoes/internal/cardapplication/service"
	dErrors "cartoes/pkg/domain-errors"
	"cartoes/pkg/platform/httputil"
	"cartoes/pkg/requestcontext"
)

// Service defines the interface for card application operations.
type Service interface {
	Submit(ctx context.Context, data service.ClientData) (*service.Submission, error)
}

// Handler wires card application endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the card application endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cartoes", h.HandleSubmit)
}

// HandleSubmit handles POST /cartoes. An application that qualifies for no
// card is answered with 204.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.Submit(ctx, req.ClientData())
	if err != nil {
		status := httputil.StatusFor(dErrors.CodeOf(err))
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "card application failed",
			"request_id", requestID,
			"status", status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if len(sub.Offers) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}
