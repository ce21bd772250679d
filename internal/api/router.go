package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/api/handler"
	apimw "github.com/coachhub/coachapi/internal/api/middleware"
	"github.com/coachhub/coachapi/internal/config"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/metrics"
	"github.com/coachhub/coachapi/internal/service"
)

// maxJSONBody caps API request bodies.
const maxJSONBody = 1 << 20

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Service  *service.ResourceService
	Queue    handler.QueueStats
	Limiter  apimw.Limiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	Version  string
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
//
// Identifier, timing and CORS stages are mounted per route group so API and
// upload traffic get their own headers and slow-request thresholds.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	m := d.Metrics

	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(apimw.InjectLogger(d.Logger))
	r.Use(apimw.Instrument(m.ObserveRequest))

	// --- handler instances ---
	v := apimw.NewValidator(m.OnValidationFailure)
	rh := handler.NewResourceHandler(d.Service)
	uh := handler.NewUploadHandler(d.Service)
	mh := handler.NewMetricsHandler(d.Queue)
	hh := handler.NewHealthHandler(d.Version)

	cors := apimw.CORS(apimw.CORSOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		OnReject:       m.OnCORSReject,
	})
	accessReason := apimw.RequireAccessReason(apimw.AccessReasonOptions{
		MinLength: cfg.MinAccessReasonLength,
		OnDenied:  m.OnAccessReasonDenied,
	})
	// gated resolves {id}, then demands a justification when the resource
	// asks for one.
	gated := []func(http.Handler) http.Handler{
		apimw.ValidateParams[domain.ResourceParams](v),
		apimw.LoadResource(d.Service),
		accessReason,
	}

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.APICorrelationID())
		r.Use(apimw.APIRequestID())
		r.Use(apimw.RequestLogger())
		r.Use(apimw.ResponseTime(apimw.TimingOptions{
			Threshold:      cfg.APISlowThreshold,
			DisableSlowLog: !cfg.LogSlowRequests,
			Observe:        m.ObserveTiming,
		}))
		r.Use(cors)
		r.Use(apimw.RateLimit(d.Limiter))
		r.Use(chimw.RequestSize(maxJSONBody))

		r.With(apimw.ValidateBody[domain.CreateResourceRequest](v)).Post("/resources", rh.Create)
		r.With(apimw.ValidateQuery[domain.ListResourcesQuery](v)).Get("/resources", rh.List)

		r.Route("/resources/{id}", func(r chi.Router) {
			r.Use(gated...)
			r.Get("/", rh.Get)
			r.Get("/files", rh.Files)
			r.Get("/access-log", rh.AccessLog)
		})

		r.Get("/audit/queue", mh.AuditQueue)
	})

	r.Route("/uploads", func(r chi.Router) {
		r.Use(apimw.UploadCorrelationID())
		r.Use(apimw.UploadRequestID())
		r.Use(apimw.RequestLogger())
		r.Use(apimw.ResponseTime(apimw.TimingOptions{
			Threshold:      cfg.UploadSlowThreshold,
			DisableSlowLog: !cfg.LogSlowRequests,
			Observe:        m.ObserveTiming,
		}))
		r.Use(cors)
		r.Use(apimw.RateLimit(d.Limiter))
		r.Use(chimw.RequestSize(cfg.MaxUploadBytes))

		r.With(gated...).Post("/resources/{id}/files", uh.Upload)
	})

	return r
}
