package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coachhub/coachapi/internal/domain"
)

const resourceColumns = `id, title, kind, body,
	privacy_require_reason, privacy_sensitive_content,
	created_at, updated_at`

type pgResourceRepository struct {
	pool *pgxpool.Pool
}

// NewPgResourceRepository returns a ResourceRepository backed by PostgreSQL.
func NewPgResourceRepository(pool *pgxpool.Pool) ResourceRepository {
	return &pgResourceRepository{pool: pool}
}

func (r *pgResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	requireReason, sensitive := privacyColumns(res.Privacy)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO resources
			(id, title, kind, body, privacy_require_reason, privacy_sensitive_content, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		res.ID, res.Title, res.Kind, res.Body, requireReason, sensitive, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

func (r *pgResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)

	res, err := scanResource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

func (r *pgResourceRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Resource, int, error) {
	where, args := buildListWhere(f)
	offset := (f.Page - 1) * f.Limit

	// Count total matching rows for pagination metadata.
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM resources"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}

	// Append pagination args after the WHERE args.
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM resources%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, resourceColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []*domain.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		resources = append(resources, res)
	}
	return resources, total, rows.Err()
}

func (r *pgResourceRepository) AddFile(ctx context.Context, f *domain.ResourceFile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO resource_files (id, resource_id, filename, content_type, size, data, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.ResourceID, f.Filename, f.ContentType, f.Size, f.Data, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resource file: %w", err)
	}
	return nil
}

func (r *pgResourceRepository) ListFiles(ctx context.Context, resourceID string) ([]*domain.ResourceFile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, resource_id, filename, content_type, size, created_at
		FROM resource_files WHERE resource_id = $1
		ORDER BY created_at ASC`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list resource files: %w", err)
	}
	defer rows.Close()

	var files []*domain.ResourceFile
	for rows.Next() {
		var f domain.ResourceFile
		if err := rows.Scan(&f.ID, &f.ResourceID, &f.Filename, &f.ContentType, &f.Size, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// ---- helpers ----

// scanResource reads a single resource row from any pgx row type.
// Both privacy columns NULL means the resource has no privacy block.
func scanResource(row pgx.Row) (*domain.Resource, error) {
	var (
		res           domain.Resource
		requireReason *bool
		sensitive     *bool
	)
	err := row.Scan(
		&res.ID, &res.Title, &res.Kind, &res.Body,
		&requireReason, &sensitive,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if requireReason != nil || sensitive != nil {
		res.Privacy = &domain.Privacy{
			RequireReasonForAccess: requireReason != nil && *requireReason,
			SensitiveContent:       sensitive != nil && *sensitive,
		}
	}
	return &res, nil
}

func privacyColumns(p *domain.Privacy) (requireReason, sensitive *bool) {
	if p == nil {
		return nil, nil
	}
	return &p.RequireReasonForAccess, &p.SensitiveContent
}

// buildListWhere builds a parameterised WHERE clause from a ListFilter.
func buildListWhere(f domain.ListFilter) (string, []any) {
	if f.Kind == nil {
		return "", nil
	}
	return " WHERE kind = $1", []any{*f.Kind}
}
