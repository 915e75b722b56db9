package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/usly-events/server/internal/audit"
)

var _ audit.Store = (*AuditRepository)(nil)

type AuditRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *AuditRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *AuditRepository) Insert(ctx context.Context, entry audit.Entry) error {
	return insertAuditEntry(ctx, r.queryer(), entry)
}

func insertAuditEntry(ctx context.Context, q queryer, entry audit.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx, `
INSERT INTO audit_log (actor_id, action, ip, user_agent, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`,
		entry.ActorID,
		entry.Action,
		nullIfEmpty(entry.IP),
		nullIfEmpty(entry.UserAgent),
		nullIfEmpty(entry.Details),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
