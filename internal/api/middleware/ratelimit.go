package middleware

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/api/respond"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/logging"
)

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit answers 429 once a client exhausts its budget. Clients are keyed
// by IP, so chimw.RealIP should run first when behind a proxy.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !l.Allow(key) {
				logging.FromContext(r.Context()).Info("rate limited", zap.String("client", key))
				w.Header().Set("Retry-After", "1")
				respond.MapError(w, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
