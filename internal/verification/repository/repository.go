package repository

import (
	"context"
	"time"

	"security-code-service/internal/verification/domain"
)

// Repository defines persistence for verification-code records, keyed by email.
// Implementations must be safe for concurrent use.
type Repository interface {
	// GetByEmail returns the record for email, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.Record, error)
	// Save creates or overwrites the record keyed by its Email. A later Save
	// for the same email replaces the earlier record entirely.
	Save(ctx context.Context, r *domain.Record) error
	// Delete removes the record for email. Deleting a missing email is not an error.
	Delete(ctx context.Context, email string) error
	// DeleteExpired removes every record with ExpiresAt before now, regardless
	// of IsUsed, and returns the number removed. Idempotent.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DefaultTTL is the verification-code expiry window (expiresAt = createdAt + 5m).
const DefaultTTL = 5 * time.Minute
