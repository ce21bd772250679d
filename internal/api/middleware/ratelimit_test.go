package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coachhub/coachapi/internal/api/middleware"
)

// budgetLimiter allows n requests per key and records the keys it saw.
type budgetLimiter struct {
	n    int
	used map[string]int
}

func (b *budgetLimiter) Allow(key string) bool {
	if b.used == nil {
		b.used = make(map[string]int)
	}
	b.used[key]++
	return b.used[key] <= b.n
}

func TestRateLimit(t *testing.T) {
	l := &budgetLimiter{n: 1}
	h := middleware.RateLimit(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000").Code)

	rec := send("10.0.0.1:6000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code, "other clients keep their budget")
	assert.Equal(t, 2, l.used["10.0.0.1"], "clients are keyed by host, not port")
}
