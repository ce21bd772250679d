package handler

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/coachhub/coachapi/internal/api/middleware"
	"github.com/coachhub/coachapi/internal/api/respond"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/logging"
	"github.com/coachhub/coachapi/internal/service"
)

// UploadFormField is the multipart field carrying the file.
const UploadFormField = "file"

// UploadHandler accepts file uploads for existing resources.
type UploadHandler struct {
	svc *service.ResourceService
}

func NewUploadHandler(svc *service.ResourceService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload handles POST /uploads/resources/{id}/files
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	res := apimw.ResourceFrom(r.Context())
	log := logging.FromContext(r.Context())

	if err := apimw.ParseForm(r); err != nil || r.MultipartForm == nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.MapError(w, domain.ErrPayloadTooLarge)
			return
		}
		respond.Validation(w, domain.NewValidationError(domain.FieldError{
			Field:   UploadFormField,
			Message: "request must be multipart/form-data with a file field",
		}))
		return
	}

	file, header, err := r.FormFile(UploadFormField)
	if err != nil {
		respond.Validation(w, domain.NewValidationError(domain.FieldError{
			Field:   UploadFormField,
			Message: "file is required",
		}))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Warn("read upload failed", zap.Error(err))
		respond.Error(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	if !auditAccess(h.svc, w, r, res) {
		return
	}

	stored, err := h.svc.AttachFile(r.Context(), res.ID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		log.Warn("attach file failed", zap.String("resource_id", res.ID), zap.Error(err))
		respond.MapError(w, err)
		return
	}

	log.Info("file uploaded",
		zap.String("resource_id", res.ID),
		zap.String("file_id", stored.ID),
		zap.Int64("size", stored.Size),
	)
	respond.JSON(w, http.StatusCreated, stored)
}
