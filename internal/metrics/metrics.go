package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coachhub/coachapi/internal/api/middleware"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SlowRequests        *prometheus.CounterVec
	CORSRejections      prometheus.Counter
	ValidationFailures  *prometheus.CounterVec
	AccessReasonDenials prometheus.Counter
	AuditWritten        prometheus.Counter
	AuditFailed         prometheus.Counter
	AuditQueueDepth     prometheus.GaugeFunc
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct. queueDepth feeds the audit queue
// gauge at scrape time.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer, queueDepth func() int) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		SlowRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_slow_requests_total",
			Help: "Requests that exceeded their slow-request threshold.",
		}, []string{"method"}),

		CORSRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cors_rejections_total",
			Help: "Requests rejected because their origin is not allow-listed.",
		}),

		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Requests rejected by schema validation, by request part.",
		}, []string{"source"}),

		AccessReasonDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "access_reason_denials_total",
			Help: "Requests to gated resources rejected for a missing or short reason.",
		}),

		AuditWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_records_written_total",
			Help: "Access audit records persisted.",
		}),
		AuditFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_records_failed_total",
			Help: "Access audit records dropped after exhausting retries.",
		}),

		AuditQueueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Current number of audit records waiting to be written.",
		}, func() float64 { return float64(queueDepth()) }),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.SlowRequests,
		m.CORSRejections,
		m.ValidationFailures,
		m.AccessReasonDenials,
		m.AuditWritten,
		m.AuditFailed,
		m.AuditQueueDepth,
	)

	return m
}

// ObserveRequest is the callback for middleware.Instrument.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveTiming is the callback for middleware.TimingOptions.Observe.
func (m *Metrics) ObserveTiming(r *http.Request, _ time.Duration, slow bool) {
	if slow {
		m.SlowRequests.WithLabelValues(r.Method).Inc()
	}
}

func (m *Metrics) OnCORSReject(*http.Request, string) { m.CORSRejections.Inc() }

func (m *Metrics) OnValidationFailure(_ *http.Request, src middleware.Source) {
	m.ValidationFailures.WithLabelValues(string(src)).Inc()
}

func (m *Metrics) OnAccessReasonDenied(*http.Request) { m.AccessReasonDenials.Inc() }

// WorkerHooks returns the metric callback functions expected by worker.MetricHooks.
// Keeps the worker package free of prometheus imports.
func (m *Metrics) WorkerHooks() (onWritten func(), onFailed func()) {
	return m.AuditWritten.Inc, m.AuditFailed.Inc
}
