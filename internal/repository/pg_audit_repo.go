package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coachhub/coachapi/internal/domain"
)

type pgAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPgAuditRepository returns an AuditRepository backed by PostgreSQL.
func NewPgAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &pgAuditRepository{pool: pool}
}

// Record is idempotent on the entry ID so a retried write after a lost
// acknowledgement does not duplicate the row.
func (r *pgAuditRepository) Record(ctx context.Context, e *domain.AccessAudit) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO access_audit
			(id, resource_id, reason, correlation_id, request_id, method, path, remote_addr, accessed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.ResourceID, e.Reason, e.CorrelationID, e.RequestID, e.Method, e.Path, e.RemoteAddr, e.AccessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert access audit: %w", err)
	}
	return nil
}

func (r *pgAuditRepository) ListByResource(ctx context.Context, resourceID string, limit int) ([]*domain.AccessAudit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, resource_id, reason, correlation_id, request_id, method, path, remote_addr, accessed_at
		FROM access_audit WHERE resource_id = $1
		ORDER BY accessed_at DESC
		LIMIT $2`, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list access audit: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AccessAudit
	for rows.Next() {
		var e domain.AccessAudit
		if err := rows.Scan(
			&e.ID, &e.ResourceID, &e.Reason, &e.CorrelationID, &e.RequestID,
			&e.Method, &e.Path, &e.RemoteAddr, &e.AccessedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
