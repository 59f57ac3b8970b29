package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"security-code-service/internal/challenge/domain"
)

// PostgresRepository persists challenges in the security_challenges table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a challenge repository backed by the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the challenge for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	const query = `
        SELECT id, answer, display, created_at, expires_at, attempts, is_used
        FROM security_challenges
        WHERE id = $1
    `
	var c domain.Challenge
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Answer, &c.Display, &c.CreatedAt, &c.ExpiresAt, &c.Attempts, &c.IsUsed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Save creates or overwrites the challenge keyed by its ID.
func (r *PostgresRepository) Save(ctx context.Context, c *domain.Challenge) error {
	const query = `
        INSERT INTO security_challenges (id, answer, display, created_at, expires_at, attempts, is_used)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET
            answer = EXCLUDED.answer,
            display = EXCLUDED.display,
            created_at = EXCLUDED.created_at,
            expires_at = EXCLUDED.expires_at,
            attempts = EXCLUDED.attempts,
            is_used = EXCLUDED.is_used
    `
	_, err := r.db.Exec(ctx, query,
		c.ID, c.Answer, c.Display, c.CreatedAt, c.ExpiresAt, c.Attempts, c.IsUsed,
	)
	return err
}

// Delete removes the challenge by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM security_challenges WHERE id = $1`, id)
	return err
}

// DeleteExpired removes every challenge whose expiry is before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM security_challenges WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
