package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"security-code-service/internal/audit/domain"
)

// PostgresRepository persists audit events in the audit_events table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns an audit repository backed by the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	const query = `
        INSERT INTO audit_events (id, action, subject, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query, e.ID, e.Action, e.Subject, e.Metadata, e.CreatedAt)
	return err
}

// ListBySubject returns events for subject, newest first, up to limit.
func (r *PostgresRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.Event, error) {
	const query = `
        SELECT id, action, subject, metadata, created_at
        FROM audit_events
        WHERE subject = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, subject, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Action, &e.Subject, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
