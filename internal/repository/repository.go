package repository

import (
	"context"

	"github.com/coachhub/coachapi/internal/domain"
)

// ResourceRepository defines all persistence operations for resources and
// their attachments. The pgx implementation is in pg_resource_repo.go.
// Tests use a hand-written mock (mock_resource_repo.go).
type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Resource, int, error)

	AddFile(ctx context.Context, f *domain.ResourceFile) error
	ListFiles(ctx context.Context, resourceID string) ([]*domain.ResourceFile, error)
}

// AuditRepository persists access audit records.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AccessAudit) error
	ListByResource(ctx context.Context, resourceID string, limit int) ([]*domain.AccessAudit, error)
}
