package repository

import (
	"context"
	"sync"
	"time"

	"security-code-service/internal/challenge/domain"
)

// MemoryRepository is an in-memory Repository for session-scoped deployments
// and tests. Records are stored by value so callers cannot mutate stored state
// without going through Save.
type MemoryRepository struct {
	mu sync.RWMutex
	m  map[string]domain.Challenge
}

// NewMemoryRepository returns an empty in-memory challenge repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Challenge)}
}

// GetByID returns the challenge for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Save creates or overwrites the challenge keyed by its ID.
func (r *MemoryRepository) Save(ctx context.Context, c *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[c.ID] = *c
	return nil
}

// Delete removes the challenge by id.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

// DeleteExpired removes every challenge whose expiry is before now.
func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, c := range r.m {
		if c.ExpiresAt.Before(now) {
			delete(r.m, id)
			removed++
		}
	}
	return removed, nil
}
