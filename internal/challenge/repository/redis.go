package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"security-code-service/internal/challenge/domain"
)

const challengeKeyPrefix = "challenge:"

// expiryGrace keeps a record physically present past its logical expiry so a
// late verify sees "expired" rather than "not found". Expired records are
// reclaimed by DeleteExpired or by Redis once the grace lapses.
const expiryGrace = 24 * time.Hour

// RedisRepository persists challenges as JSON values under challenge:<id>.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository returns a challenge repository backed by the given client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

type redisChallenge struct {
	ID        string    `json:"id"`
	Answer    string    `json:"answer"`
	Display   string    `json:"display"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	IsUsed    bool      `json:"is_used"`
}

// GetByID returns the challenge for id, or nil if not found.
func (r *RedisRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	raw, err := r.client.Get(ctx, challengeKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rc redisChallenge
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return nil, err
	}
	return &domain.Challenge{
		ID: rc.ID, Answer: rc.Answer, Display: rc.Display,
		CreatedAt: rc.CreatedAt, ExpiresAt: rc.ExpiresAt,
		Attempts: rc.Attempts, IsUsed: rc.IsUsed,
	}, nil
}

// Save creates or overwrites the challenge keyed by its ID.
func (r *RedisRepository) Save(ctx context.Context, c *domain.Challenge) error {
	raw, err := json.Marshal(redisChallenge{
		ID: c.ID, Answer: c.Answer, Display: c.Display,
		CreatedAt: c.CreatedAt, ExpiresAt: c.ExpiresAt,
		Attempts: c.Attempts, IsUsed: c.IsUsed,
	})
	if err != nil {
		return err
	}
	ttl := time.Until(c.ExpiresAt) + expiryGrace
	return r.client.Set(ctx, challengeKeyPrefix+c.ID, raw, ttl).Err()
}

// Delete removes the challenge by id.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, challengeKeyPrefix+id).Err()
}

// DeleteExpired scans the challenge namespace and removes logically expired
// records. Returns the number removed.
func (r *RedisRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, challengeKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return removed, err
		}
		var rc redisChallenge
		if err := json.Unmarshal([]byte(raw), &rc); err != nil {
			return removed, err
		}
		if rc.ExpiresAt.Before(now) {
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
