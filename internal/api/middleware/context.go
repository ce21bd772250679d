package middleware

import (
	"context"
	"time"

	"github.com/coachhub/coachapi/internal/domain"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
	requestStartKey  contextKey = "request_start"
	accessReasonKey  contextKey = "access_reason"
	resourceKey      contextKey = "resource"
)

// validatedKey scopes a validated payload by the request part it came from.
type validatedKey struct{ source Source }

// GetCorrelationID retrieves the correlation ID stored by the middleware.
// Returns an empty string if the middleware was not applied.
func GetCorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationIDKey).(string)
	return v
}

// GetRequestID retrieves the request ID stored by the middleware.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// GetAccessReason returns the trimmed justification accepted by
// RequireAccessReason, or "" when the resource was not gated.
func GetAccessReason(ctx context.Context) string {
	v, _ := ctx.Value(accessReasonKey).(string)
	return v
}

// RequestStart returns the time ResponseTime started measuring.
func RequestStart(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(requestStartKey).(time.Time)
	return t, ok
}

// WithResource attaches the resolved target resource to ctx.
func WithResource(ctx context.Context, res *domain.Resource) context.Context {
	return context.WithValue(ctx, resourceKey, res)
}

// ResourceFrom returns the resource attached by LoadResource, or nil.
func ResourceFrom(ctx context.Context) *domain.Resource {
	res, _ := ctx.Value(resourceKey).(*domain.Resource)
	return res
}
