package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/repository"
)

type cachedTotals struct {
	Pending int `json:"pending"`
}

func TestRememberLoadsOnceAndServesHits(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCacheService(repository.NewCacheRepository(client, "civic"), NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()

	loads := 0
	load := func() (*cachedTotals, error) {
		loads++
		return &cachedTotals{Pending: 4}, nil
	}

	first, hit, err := Remember(ctx, cache, "totals", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 4, first.Pending)

	second, hit, err := Remember(ctx, cache, "totals", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 4, second.Pending)
	assert.Equal(t, 1, loads)

	mr.FastForward(2 * time.Minute)
	_, hit, err = Remember(ctx, cache, "totals", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, loads)
}

func TestRememberWithoutCacheAndOnLoadError(t *testing.T) {
	ctx := context.Background()
	disabled := NewCacheService(nil, nil, 0, nil, false)

	loads := 0
	for i := 0; i < 2; i++ {
		_, hit, err := Remember(ctx, disabled, "totals", 0, func() (*cachedTotals, error) {
			loads++
			return &cachedTotals{}, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, loads)

	boom := errors.New("boom")
	_, _, err := Remember(ctx, (*CacheService)(nil), "totals", 0, func() (*cachedTotals, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
