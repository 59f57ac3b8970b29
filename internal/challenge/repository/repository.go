package repository

import (
	"context"
	"time"

	"security-code-service/internal/challenge/domain"
)

// Repository defines persistence for security challenges. Implementations must
// be safe for concurrent use; read-check-write serialization is the service's
// responsibility.
type Repository interface {
	// GetByID returns the challenge for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Challenge, error)
	// Save creates or overwrites the challenge keyed by its ID.
	Save(ctx context.Context, c *domain.Challenge) error
	// Delete removes the challenge by id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every challenge with ExpiresAt before now,
	// regardless of IsUsed, and returns the number removed. Idempotent.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DefaultTTL is the challenge expiry window (expiresAt = createdAt + 10m).
const DefaultTTL = 10 * time.Minute
