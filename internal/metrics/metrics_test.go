package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/coachhub/coachapi/internal/api/middleware"
	"github.com/coachhub/coachapi/internal/metrics"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	depth := 3
	m := metrics.New(reg, func() int { return depth })

	req := httptest.NewRequest("GET", "/api/v1/resources", nil)

	m.ObserveRequest("GET", "/api/v1/resources", 200, 10*time.Millisecond)
	m.ObserveTiming(req, 600*time.Millisecond, true)
	m.ObserveTiming(req, 10*time.Millisecond, false)
	m.OnCORSReject(req, "https://evil.example")
	m.OnValidationFailure(req, middleware.SourceBody)
	m.OnAccessReasonDenied(req)
	onWritten, onFailed := m.WorkerHooks()
	onWritten()
	onWritten()
	onFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/resources", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlowRequests.WithLabelValues("GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CORSRejections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("body")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessReasonDenials))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuditWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditFailed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AuditQueueDepth))
}
