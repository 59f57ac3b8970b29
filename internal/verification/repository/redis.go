package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"security-code-service/internal/verification/domain"
)

const verificationKeyPrefix = "verification:"

// expiryGrace keeps a record physically present past its logical expiry so a
// late verify sees "expired" rather than "not found".
const expiryGrace = 24 * time.Hour

// RedisRepository persists verification codes as JSON under verification:<email>.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository returns a verification repository backed by the given client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

type redisRecord struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	IsUsed    bool      `json:"is_used"`
}

// GetByEmail returns the record for email, or nil if not found.
func (r *RedisRepository) GetByEmail(ctx context.Context, email string) (*domain.Record, error) {
	raw, err := r.client.Get(ctx, verificationKeyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rr redisRecord
	if err := json.Unmarshal([]byte(raw), &rr); err != nil {
		return nil, err
	}
	return &domain.Record{
		Email: rr.Email, Code: rr.Code,
		CreatedAt: rr.CreatedAt, ExpiresAt: rr.ExpiresAt,
		Attempts: rr.Attempts, IsUsed: rr.IsUsed,
	}, nil
}

// Save creates or overwrites the record keyed by its Email.
func (r *RedisRepository) Save(ctx context.Context, rec *domain.Record) error {
	raw, err := json.Marshal(redisRecord{
		Email: rec.Email, Code: rec.Code,
		CreatedAt: rec.CreatedAt, ExpiresAt: rec.ExpiresAt,
		Attempts: rec.Attempts, IsUsed: rec.IsUsed,
	})
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt) + expiryGrace
	return r.client.Set(ctx, verificationKeyPrefix+rec.Email, raw, ttl).Err()
}

// Delete removes the record for email.
func (r *RedisRepository) Delete(ctx context.Context, email string) error {
	return r.client.Del(ctx, verificationKeyPrefix+email).Err()
}

// DeleteExpired scans the verification namespace and removes logically expired
// records. Returns the number removed.
func (r *RedisRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, verificationKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return removed, err
		}
		var rr redisRecord
		if err := json.Unmarshal([]byte(raw), &rr); err != nil {
			return removed, err
		}
		if rr.ExpiresAt.Before(now) {
			if err := r.client.Del(ctx, key).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}
