package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisRepo(t *testing.T) *RedisRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client)
}

func TestRedisRepository_SaveAndGet(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	c := testChallenge("ch-1", time.Now().UTC().Add(10*time.Minute))

	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.GetByID(ctx, "ch-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.Answer, got.Answer)
	assert.Equal(t, c.Display, got.Display)
	assert.WithinDuration(t, c.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestRedisRepository_GetMissingReturnsNil(t *testing.T) {
	repo := newTestRedisRepo(t)
	got, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisRepository_LogicallyExpiredRecordStillReadable(t *testing.T) {
	// A record past its logical expiry must still be found so verify can
	// answer "expired" instead of "not found".
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	c := testChallenge("ch-1", time.Now().UTC().Add(-time.Minute))

	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.GetByID(ctx, "ch-1")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestRedisRepository_Delete(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	c := testChallenge("ch-1", time.Now().UTC().Add(10*time.Minute))
	require.NoError(t, repo.Save(ctx, c))

	require.NoError(t, repo.Delete(ctx, "ch-1"))

	got, err := repo.GetByID(ctx, "ch-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisRepository_DeleteExpired(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, testChallenge("old", now.Add(-time.Minute))))
	require.NoError(t, repo.Save(ctx, testChallenge("live", now.Add(time.Minute))))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByID(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, got)

	n, err = repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
