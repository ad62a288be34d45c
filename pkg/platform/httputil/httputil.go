// Package httputil holds the JSON and error-writing helpers shared by handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "cartoes/pkg/domain-errors"
)

const (
	// ProblemTypeBase prefixes every problem "type" URI.
	ProblemTypeBase = "https://api.cartoes.com/problems/"
	// AppName is reported in every problem document.
	AppName = "cartoes-api"

	maxBodyBytes = 1 << 20
)

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Status     int               `json:"status"`
	Detail     string            `json:"detail"`
	Instance   string            `json:"instance"`
	Extensions ProblemExtensions `json:"extensions"`
}

type ProblemExtensions struct {
	App       string            `json:"app"`
	ErrorType string            `json:"tipoErro"`
	Code      string            `json:"codigo"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type problemKind struct {
	status    int
	slug      string
	title     string
	errorType string
}

var problemKinds = map[dErrors.Code]problemKind{
	dErrors.CodeBadRequest:   {http.StatusBadRequest, "validation-error", "Invalid request", "VALIDACAO"},
	dErrors.CodeValidation:   {http.StatusBadRequest, "validation-error", "Invalid request", "VALIDACAO"},
	dErrors.CodeBusinessRule: {http.StatusUnprocessableEntity, "business-rule-violation", "Business rule violation", "REGRA_NEGOCIO"},
	dErrors.CodeNotFound:     {http.StatusNotFound, "resource-not-found", "Resource not found", "RECURSO_NAO_ENCONTRADO"},
	dErrors.CodeRateLimited:  {http.StatusTooManyRequests, "rate-limit-exceeded", "Too many requests", "LIMITE_REQUISICOES"},
	dErrors.CodeUnavailable:  {http.StatusServiceUnavailable, "service-unavailable", "Service unavailable", "SERVICO_INDISPONIVEL"},
	dErrors.CodeInternal:     {http.StatusInternalServerError, "internal-server-error", "Internal server error", "SERVICO_INDISPONIVEL"},
}

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	if k, ok := problemKinds[code]; ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a problem document. Internal errors never
// expose their message.
func WriteError(w http.ResponseWriter, err error) {
	problem := ProblemFor(err)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// ProblemFor builds the problem document for err.
func ProblemFor(err error) Problem {
	code := dErrors.CodeOf(err)
	kind, ok := problemKinds[code]
	if !ok {
		code = dErrors.CodeInternal
		kind = problemKinds[code]
	}

	detail := "An unexpected error occurred. Please try again later."
	fields := dErrors.FieldsOf(err)
	switch {
	case code == dErrors.CodeInternal:
	case len(fields) > 0:
		detail = dErrors.MessageOf(err) + ": " + joinFields(fields)
	default:
		detail = dErrors.MessageOf(err)
	}

	return Problem{
		Type:     ProblemTypeBase + kind.slug,
		Title:    kind.title,
		Status:   kind.status,
		Detail:   detail,
		Instance: "/errors/" + uuid.NewString(),
		Extensions: ProblemExtensions{
			App:       AppName,
			ErrorType: kind.errorType,
			Code:      strconv.Itoa(kind.status),
			Errors:    fields,
		},
	}
}

func joinFields(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+fields[name])
	}
	return strings.Join(parts, "; ")
}

// Validatable is implemented by request DTOs that check their own shape.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the JSON body into T and runs its Validate. On
// failure it writes the problem document and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := new(T)
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, decodeMessage(err)))
		return nil, false
	}

	if err := PT(req).Validate(); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return "Malformed JSON request: invalid value for " + typeErr.Field
	case errors.As(err, &maxErr):
		return "Request body too large"
	default:
		return "Malformed JSON request"
	}
}
