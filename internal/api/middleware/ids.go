package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/logging"
)

const (
	HeaderCorrelationID       = "X-Correlation-ID"
	HeaderAPICorrelationID    = "X-API-Correlation-ID"
	HeaderUploadCorrelationID = "X-Upload-Correlation-ID"
	HeaderRequestID           = "X-Request-ID"
	HeaderAPIRequestID        = "X-API-Request-ID"
	HeaderUploadRequestID     = "X-Upload-Request-ID"
)

// IDOptions configures an identifier stage. The zero value uses the
// stage's default header and UUID v4 generation.
type IDOptions struct {
	Header    string
	Generator func() string
}

// CorrelationID reuses a non-empty inbound correlation header or generates a
// new ID. The value is echoed on the response, stored on the request context
// and attached to the request's logger as correlation_id.
func CorrelationID(opts IDOptions) func(http.Handler) http.Handler {
	return assignID(opts, HeaderCorrelationID, correlationIDKey)
}

// RequestID behaves like CorrelationID for the per-request identifier.
func RequestID(opts IDOptions) func(http.Handler) http.Handler {
	return assignID(opts, HeaderRequestID, requestIDKey)
}

func APICorrelationID() func(http.Handler) http.Handler {
	return CorrelationID(IDOptions{Header: HeaderAPICorrelationID})
}

func APIRequestID() func(http.Handler) http.Handler {
	return RequestID(IDOptions{Header: HeaderAPIRequestID})
}

func UploadCorrelationID() func(http.Handler) http.Handler {
	return CorrelationID(IDOptions{Header: HeaderUploadCorrelationID})
}

func UploadRequestID() func(http.Handler) http.Handler {
	return RequestID(IDOptions{Header: HeaderUploadRequestID})
}

func assignID(opts IDOptions, defaultHeader string, key contextKey) func(http.Handler) http.Handler {
	header := opts.Header
	if header == "" {
		header = defaultHeader
	}
	generate := opts.Generator
	if generate == nil {
		generate = uuid.NewString
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if id == "" {
				id = generate()
			}
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(header, id)
			ctx := context.WithValue(r.Context(), key, id)
			ctx = logging.With(ctx, zap.String(string(key), id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
