package domain

import (
	"errors"
	"strings"
)

// Sentinel errors used throughout the application.
// Handlers and middleware translate these to HTTP status codes via respond.MapError.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbiddenOrigin = errors.New("origin not allowed by CORS policy")
	ErrRateLimited     = errors.New("too many requests, slow down")
	ErrQueueFull       = errors.New("audit queue is at capacity")
	ErrInvalidKind     = errors.New("invalid kind: must be worksheet, article, video, or note")
	ErrEmptyFile       = errors.New("uploaded file is empty")
	ErrPayloadTooLarge = errors.New("request payload exceeds the size limit")
)

// FieldError is a single field-level violation reported back to the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in one pass over the input.
type ValidationError struct {
	Details []FieldError
}

func NewValidationError(details ...FieldError) *ValidationError {
	return &ValidationError{Details: details}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError reports whether err wraps a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
