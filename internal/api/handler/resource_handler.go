package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apimw "github.com/coachhub/coachapi/internal/api/middleware"
	"github.com/coachhub/coachapi/internal/api/respond"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/logging"
	"github.com/coachhub/coachapi/internal/service"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ResourceHandler serves the coaching resource endpoints. Request parts are
// validated and the target resource is loaded by middleware before any of
// these methods run.
type ResourceHandler struct {
	svc *service.ResourceService
}

func NewResourceHandler(svc *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

// Create handles POST /api/v1/resources
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := apimw.ValidatedBody[domain.CreateResourceRequest](r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "request body was not validated")
		return
	}

	res, err := h.svc.Create(r.Context(), req)
	if err != nil {
		logging.FromContext(r.Context()).Warn("create resource failed", zap.Error(err))
		respond.MapError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, res)
}

// List handles GET /api/v1/resources
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	q, _ := apimw.ValidatedQuery[domain.ListResourcesQuery](r.Context())
	filter := listFilter(q)

	resources, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("list resources failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list resources")
		return
	}
	if resources == nil {
		resources = []*domain.Resource{}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"data":  resources,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// Get handles GET /api/v1/resources/{id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	res := apimw.ResourceFrom(r.Context())
	if !auditAccess(h.svc, w, r, res) {
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// Files handles GET /api/v1/resources/{id}/files
func (h *ResourceHandler) Files(w http.ResponseWriter, r *http.Request) {
	res := apimw.ResourceFrom(r.Context())
	if !auditAccess(h.svc, w, r, res) {
		return
	}

	files, err := h.svc.ListFiles(r.Context(), res.ID)
	if err != nil {
		respond.MapError(w, err)
		return
	}
	if files == nil {
		files = []*domain.ResourceFile{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"data": files})
}

// AccessLog handles GET /api/v1/resources/{id}/access-log
func (h *ResourceHandler) AccessLog(w http.ResponseWriter, r *http.Request) {
	res := apimw.ResourceFrom(r.Context())
	if !auditAccess(h.svc, w, r, res) {
		return
	}

	entries, err := h.svc.AccessLog(r.Context(), res.ID)
	if err != nil {
		respond.MapError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.AccessAudit{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// auditAccess records a justified access before the resource is served.
// It reports false once it has written an error response.
func auditAccess(svc *service.ResourceService, w http.ResponseWriter, r *http.Request, res *domain.Resource) bool {
	if res == nil {
		respond.MapError(w, domain.ErrNotFound)
		return false
	}
	reason := apimw.GetAccessReason(r.Context())
	if reason == "" {
		return true
	}

	err := svc.RecordAccess(r.Context(), service.AccessRecord{
		ResourceID:    res.ID,
		Reason:        reason,
		CorrelationID: apimw.GetCorrelationID(r.Context()),
		RequestID:     apimw.GetRequestID(r.Context()),
		Method:        r.Method,
		Path:          r.URL.Path,
		RemoteAddr:    r.RemoteAddr,
	})
	if err != nil {
		respond.MapError(w, err)
		return false
	}
	return true
}

// listFilter turns the validated query into a filter, clamping page and
// limit to sane values.
func listFilter(q domain.ListResourcesQuery) domain.ListFilter {
	filter := domain.ListFilter{Page: 1, Limit: defaultPageLimit}

	if p, err := strconv.Atoi(q.Page); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Limit); err == nil && l > 0 {
		filter.Limit = min(l, maxPageLimit)
	}
	if q.Kind != "" {
		k := domain.Kind(q.Kind)
		filter.Kind = &k
	}
	return filter
}
