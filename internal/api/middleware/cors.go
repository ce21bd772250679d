package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/api/respond"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/logging"
)

const corsMaxAge = 24 * 60 * 60

var (
	corsAllowedMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}
	corsAllowedHeaders = []string{
		"Content-Type",
		"Authorization",
		HeaderAccessReason,
		HeaderCorrelationID,
		HeaderRequestID,
	}
	corsExposedHeaders = []string{
		HeaderCorrelationID, HeaderAPICorrelationID, HeaderUploadCorrelationID,
		HeaderRequestID, HeaderAPIRequestID, HeaderUploadRequestID,
		HeaderResponseTime,
	}
)

// CORSOptions configures the CORS stage.
type CORSOptions struct {
	// AllowedOrigins are matched literally, ignoring case. Wildcards are
	// rejected by config validation.
	AllowedOrigins []string
	// OnReject, when set, is called for every rejected origin.
	OnReject func(r *http.Request, origin string)
}

// CORS allows requests without an Origin header and requests from
// allow-listed origins (with credentials). Any other origin is answered
// with 403 before reaching the rest of the chain.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   corsAllowedMethods,
		AllowedHeaders:   corsAllowedHeaders,
		ExposedHeaders:   corsExposedHeaders,
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})

	return func(next http.Handler) http.Handler {
		h := c.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[strings.ToLower(origin)]; !ok {
					logging.FromContext(r.Context()).Warn("origin rejected",
						zap.String("origin", origin),
						zap.String("path", r.URL.Path),
					)
					if opts.OnReject != nil {
						opts.OnReject(r, origin)
					}
					respond.MapError(w, domain.ErrForbiddenOrigin)
					return
				}
			}
			h.ServeHTTP(w, r)
		})
	}
}
