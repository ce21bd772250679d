package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/queue"
	"github.com/coachhub/coachapi/internal/repository"
	"github.com/coachhub/coachapi/internal/service"
)

func newService(queueSize int) (*service.ResourceService, *repository.MockResourceRepository, *repository.MockAuditRepository, *queue.AuditQueue) {
	repo := repository.NewMockResourceRepository()
	audits := repository.NewMockAuditRepository()
	q := queue.New(queueSize)
	return service.NewResourceService(repo, audits, q), repo, audits, q
}

var validReq = domain.CreateResourceRequest{
	Title: "Values clarification worksheet",
	Kind:  domain.KindWorksheet,
	Body:  "List five things you value most.",
}

func TestResourceService_Create(t *testing.T) {
	svc, repo, _, _ := newService(1)
	ctx := context.Background()

	res, err := svc.Create(ctx, validReq)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.CreatedAt.IsZero())

	stored, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, validReq.Title, stored.Title)
}

func TestResourceService_Create_InvalidKind(t *testing.T) {
	svc, _, _, _ := newService(1)

	bad := validReq
	bad.Kind = "podcast"
	_, err := svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

func TestResourceService_Create_StoreError(t *testing.T) {
	svc, repo, _, _ := newService(1)
	repo.CreateErr = errors.New("db down")

	_, err := svc.Create(context.Background(), validReq)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist resource")
}

func TestResourceService_Get_NotFound(t *testing.T) {
	svc, _, _, _ := newService(1)

	_, err := svc.Get(context.Background(), "8f9b7c1e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceService_ListFiltersAndPaginates(t *testing.T) {
	svc, _, _, _ := newService(1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, validReq)
		require.NoError(t, err)
	}
	video := validReq
	video.Kind = domain.KindVideo
	_, err := svc.Create(ctx, video)
	require.NoError(t, err)

	kind := domain.KindWorksheet
	page, total, err := svc.List(ctx, domain.ListFilter{Kind: &kind, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)
}

func TestResourceService_AttachFile(t *testing.T) {
	svc, _, _, _ := newService(1)
	ctx := context.Background()

	res, err := svc.Create(ctx, validReq)
	require.NoError(t, err)

	_, err = svc.AttachFile(ctx, res.ID, "empty.txt", "text/plain", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyFile)

	f, err := svc.AttachFile(ctx, res.ID, "notes.bin", "", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", f.ContentType)
	assert.Equal(t, int64(3), f.Size)

	files, err := svc.ListFiles(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Nil(t, files[0].Data, "listing must not carry file content")
}

func TestResourceService_RecordAccess(t *testing.T) {
	svc, _, _, q := newService(1)
	ctx := context.Background()

	rec := service.AccessRecord{ResourceID: "r1", Reason: "audit review", CorrelationID: "c1", Method: "GET", Path: "/x"}
	require.NoError(t, svc.RecordAccess(ctx, rec))

	entry, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "audit review", entry.Reason)
	assert.Equal(t, "c1", entry.CorrelationID)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.AccessedAt.IsZero())

	// Saturate the one-slot queue.
	require.NoError(t, svc.RecordAccess(ctx, rec))
	assert.ErrorIs(t, svc.RecordAccess(ctx, rec), domain.ErrQueueFull)
}

func TestResourceService_AccessLog(t *testing.T) {
	svc, _, audits, _ := newService(1)
	ctx := context.Background()

	require.NoError(t, audits.Record(ctx, &domain.AccessAudit{ID: "a1", ResourceID: "r1", Reason: "first"}))
	require.NoError(t, audits.Record(ctx, &domain.AccessAudit{ID: "a2", ResourceID: "r2", Reason: "other"}))
	require.NoError(t, audits.Record(ctx, &domain.AccessAudit{ID: "a3", ResourceID: "r1", Reason: "second"}))

	entries, err := svc.AccessLog(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Reason, "newest first")
}
