package handler

import (
	"net/http"

	"github.com/coachhub/coachapi/internal/api/respond"
)

// HealthHandler serves the liveness probe endpoint.
type HealthHandler struct {
	version string
}

func NewHealthHandler(version string) *HealthHandler { return &HealthHandler{version: version} }

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if h.version != "" {
		body["version"] = h.version
	}
	respond.JSON(w, http.StatusOK, body)
}
