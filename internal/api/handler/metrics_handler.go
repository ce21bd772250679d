package handler

import (
	"net/http"

	"github.com/coachhub/coachapi/internal/api/respond"
)

// QueueStats reports the audit queue's fill level.
type QueueStats interface {
	Depth() int
	Capacity() int
}

// MetricsHandler serves a human-readable JSON snapshot of the audit queue.
// Raw Prometheus metrics are available at /metrics via promhttp and are
// separate from this endpoint.
type MetricsHandler struct {
	q QueueStats
}

func NewMetricsHandler(q QueueStats) *MetricsHandler {
	return &MetricsHandler{q: q}
}

// AuditQueue handles GET /api/v1/audit/queue
func (h *MetricsHandler) AuditQueue(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"audit_queue": map[string]int{
			"depth":    h.q.Depth(),
			"capacity": h.q.Capacity(),
		},
	})
}
