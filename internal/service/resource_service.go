package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/logging"
	"github.com/coachhub/coachapi/internal/repository"
)

const defaultAccessLogLimit = 50

// AuditSink accepts access audit records for asynchronous persistence.
type AuditSink interface {
	Enqueue(entry domain.AccessAudit) error
}

// ResourceService coordinates the resource store and the access audit trail.
// HTTP handlers depend on this service, not on the repositories.
type ResourceService struct {
	repo   repository.ResourceRepository
	audits repository.AuditRepository
	sink   AuditSink
	now    func() time.Time
}

func NewResourceService(
	repo repository.ResourceRepository,
	audits repository.AuditRepository,
	sink AuditSink,
) *ResourceService {
	return &ResourceService{repo: repo, audits: audits, sink: sink, now: time.Now}
}

// Create persists a new resource. The request has already passed schema
// validation; Create re-checks the kind so the service is safe to call
// directly.
func (s *ResourceService) Create(ctx context.Context, req domain.CreateResourceRequest) (*domain.Resource, error) {
	if !req.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}

	now := s.now().UTC()
	res := &domain.Resource{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Kind:      req.Kind,
		Body:      req.Body,
		Privacy:   req.Privacy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("persist resource: %w", err)
	}

	logging.FromContext(ctx).Info("resource created",
		zap.String("resource_id", res.ID),
		zap.Bool("gated", res.RequiresAccessReason()),
	)
	return res, nil
}

// Get satisfies middleware.ResourceFinder.
func (s *ResourceService) Get(ctx context.Context, id string) (*domain.Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ResourceService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Resource, int, error) {
	resources, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	return resources, total, nil
}

// AttachFile stores an uploaded file against an existing resource.
func (s *ResourceService) AttachFile(ctx context.Context, resourceID, filename, contentType string, data []byte) (*domain.ResourceFile, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	f := &domain.ResourceFile{
		ID:          uuid.New().String(),
		ResourceID:  resourceID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.AddFile(ctx, f); err != nil {
		return nil, fmt.Errorf("persist resource file: %w", err)
	}
	return f, nil
}

func (s *ResourceService) ListFiles(ctx context.Context, resourceID string) ([]*domain.ResourceFile, error) {
	return s.repo.ListFiles(ctx, resourceID)
}

// AccessLog returns the most recent justified accesses to a resource.
func (s *ResourceService) AccessLog(ctx context.Context, resourceID string) ([]*domain.AccessAudit, error) {
	entries, err := s.audits.ListByResource(ctx, resourceID, defaultAccessLogLimit)
	if err != nil {
		return nil, fmt.Errorf("access log: %w", err)
	}
	return entries, nil
}

// AccessRecord describes one justified access, as seen by the HTTP layer.
type AccessRecord struct {
	ResourceID    string
	Reason        string
	CorrelationID string
	RequestID     string
	Method        string
	Path          string
	RemoteAddr    string
}

// RecordAccess hands an audit record to the sink. Handlers call it before
// serving a gated resource, so a saturated sink (ErrQueueFull) denies the
// access instead of letting it go unaudited.
func (s *ResourceService) RecordAccess(ctx context.Context, rec AccessRecord) error {
	entry := domain.AccessAudit{
		ID:            uuid.New().String(),
		ResourceID:    rec.ResourceID,
		Reason:        rec.Reason,
		CorrelationID: rec.CorrelationID,
		RequestID:     rec.RequestID,
		Method:        rec.Method,
		Path:          rec.Path,
		RemoteAddr:    rec.RemoteAddr,
		AccessedAt:    s.now().UTC(),
	}
	if err := s.sink.Enqueue(entry); err != nil {
		logging.FromContext(ctx).Warn("access audit not queued",
			zap.String("resource_id", rec.ResourceID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
