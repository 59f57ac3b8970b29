package repository

import (
	"context"
	"sync"

	"security-code-service/internal/audit/domain"
)

// MemoryRepository keeps audit events in memory, newest last.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewMemoryRepository returns an empty in-memory audit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create appends the event.
func (r *MemoryRepository) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

// ListBySubject returns events for subject, newest first, up to limit.
func (r *MemoryRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Event, 0, limit)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].Subject == subject {
			e := r.events[i]
			out = append(out, &e)
		}
	}
	return out, nil
}
