package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"security-code-service/internal/verification/domain"
)

// PostgresRepository persists verification codes in the verification_codes table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a verification repository backed by the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEmail returns the record for email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Record, error) {
	const query = `
        SELECT email, code, created_at, expires_at, attempts, is_used
        FROM verification_codes
        WHERE email = $1
    `
	var rec domain.Record
	err := r.db.QueryRow(ctx, query, email).Scan(
		&rec.Email, &rec.Code, &rec.CreatedAt, &rec.ExpiresAt, &rec.Attempts, &rec.IsUsed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Save creates or overwrites the record keyed by its Email.
func (r *PostgresRepository) Save(ctx context.Context, rec *domain.Record) error {
	const query = `
        INSERT INTO verification_codes (email, code, created_at, expires_at, attempts, is_used)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (email) DO UPDATE SET
            code = EXCLUDED.code,
            created_at = EXCLUDED.created_at,
            expires_at = EXCLUDED.expires_at,
            attempts = EXCLUDED.attempts,
            is_used = EXCLUDED.is_used
    `
	_, err := r.db.Exec(ctx, query,
		rec.Email, rec.Code, rec.CreatedAt, rec.ExpiresAt, rec.Attempts, rec.IsUsed,
	)
	return err
}

// Delete removes the record for email.
func (r *PostgresRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE email = $1`, email)
	return err
}

// DeleteExpired removes every record whose expiry is before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
