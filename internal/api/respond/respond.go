// Package respond writes JSON responses and maps domain errors to HTTP
// status codes. Middleware and handlers share it so every error body has
// the same shape.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coachhub/coachapi/internal/domain"
)

// ErrorBody is the envelope for every non-validation error.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ValidationBody is the envelope for 400 validation failures.
type ValidationBody struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": <status text>, "message": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: http.StatusText(status), Message: msg})
}

// Validation writes the 400 body listing every violation.
func Validation(w http.ResponseWriter, ve *domain.ValidationError) {
	details := ve.Details
	if details == nil {
		details = []domain.FieldError{}
	}
	JSON(w, http.StatusBadRequest, ValidationBody{Error: "Validation Error", Details: details})
}

// MapError translates domain errors to HTTP responses.
// All mapping lives here so individual handlers stay concise.
func MapError(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		Validation(w, ve)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbiddenOrigin):
		Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrEmptyFile):
		Validation(w, domain.NewValidationError(domain.FieldError{Field: fieldFor(err), Message: err.Error()}))
	case errors.Is(err, domain.ErrPayloadTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		Error(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrQueueFull):
		Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func fieldFor(err error) string {
	if errors.Is(err, domain.ErrInvalidKind) {
		return "kind"
	}
	return "file"
}
