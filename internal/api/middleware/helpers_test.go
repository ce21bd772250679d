package middleware_test

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coachhub/coachapi/internal/logging"
)

// capture records the context the final handler saw.
type capture struct {
	called bool
	ctx    context.Context
	r      *http.Request
}

func (c *capture) handler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.ctx = r.Context()
		c.r = r
		w.WriteHeader(status)
	})
}

// observedRequest returns r carrying a logger whose output lands in logs.
func observedRequest(t *testing.T, r *http.Request) (*http.Request, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return r.WithContext(logging.WithLogger(r.Context(), zap.New(core))), logs
}
