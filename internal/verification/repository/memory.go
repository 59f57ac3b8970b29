package repository

import (
	"context"
	"sync"
	"time"

	"security-code-service/internal/verification/domain"
)

// MemoryRepository is an in-memory Repository for device-scoped deployments
// and tests.
type MemoryRepository struct {
	mu sync.RWMutex
	m  map[string]domain.Record
}

// NewMemoryRepository returns an empty in-memory verification repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Record)}
}

// GetByEmail returns the record for email, or nil if not found.
func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.m[email]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Save creates or overwrites the record keyed by its Email.
func (r *MemoryRepository) Save(ctx context.Context, rec *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[rec.Email] = *rec
	return nil
}

// Delete removes the record for email.
func (r *MemoryRepository) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, email)
	return nil
}

// DeleteExpired removes every record whose expiry is before now.
func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for email, rec := range r.m {
		if rec.ExpiresAt.Before(now) {
			delete(r.m, email)
			removed++
		}
	}
	return removed, nil
}
