package repository

import (
	"context"

	"security-code-service/internal/audit/domain"
)

// Repository defines persistence for audit events.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	// ListBySubject returns events for a subject, newest first, up to limit.
	ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.Event, error)
}
