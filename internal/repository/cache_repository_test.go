package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

func TestCacheRepositoryRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewCacheRepository(client, "civic")
	ctx := context.Background()

	var out map[string]int
	require.ErrorIs(t, repo.Get(ctx, "dashboard:admin", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "dashboard:admin", map[string]int{"pending": 2}, time.Minute))
	require.True(t, mr.Exists("civic:dashboard:admin"))
	require.NoError(t, repo.Get(ctx, "dashboard:admin", &out))
	require.Equal(t, 2, out["pending"])

	mr.FastForward(2 * time.Minute)
	require.ErrorIs(t, repo.Get(ctx, "dashboard:admin", &out), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewCacheRepository(client, "civic")
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "dashboard:city:a", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "dashboard:barangay:b", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "other", 1, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "dashboard:*"))
	require.False(t, mr.Exists("civic:dashboard:city:a"))
	require.False(t, mr.Exists("civic:dashboard:barangay:b"))
	require.True(t, mr.Exists("civic:other"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "")
	var out int
	require.ErrorIs(t, repo.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	require.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}
