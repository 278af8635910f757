package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"rateio/internal/core"
	"rateio/internal/log"
	"rateio/internal/services"
	"rateio/internal/storage"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// classify maps a service error onto a status code, a short message and
// the error type used in logs.
func classify(err error) (int, string, string) {
	var (
		validation *core.ValidationError
		reference  *services.ReferenceError
		frequency  *core.UnknownFrequencyError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &reference), errors.As(err, &frequency):
		return http.StatusUnprocessableEntity, "validation failed", log.ErrorTypeValidation
	case errors.Is(err, core.ErrInvalidSplit),
		errors.Is(err, core.ErrRuleInactive),
		errors.Is(err, services.ErrNoTemplate):
		return http.StatusBadRequest, "request cannot be applied", log.ErrorTypeValidation
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found", log.ErrorTypeNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, "conflict", log.ErrorTypeConflict
	default:
		return http.StatusInternalServerError, "internal server error", log.ErrorTypeInternal
	}
}

// writeServiceError logs err and replies with its mapped status. Internal
// errors are not echoed to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message, errorType := classify(err)
	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithOperation(op).WithErrorType(errorType).WithError(err)

	if status == http.StatusInternalServerError {
		logger.LogFields(r.Context(), slog.LevelError, "Request failed", fields)
		writeError(w, r, status, message, nil)
		return
	}
	logger.LogFields(r.Context(), slog.LevelDebug, "Request rejected", fields)
	writeError(w, r, status, message, err)
}
