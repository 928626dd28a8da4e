package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
)

func newRedisCacheService(t *testing.T, enabled bool) (*CacheService, *miniredis.Miniredis, *MetricsService) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	metrics := NewMetricsService()
	return NewCacheService(repository.NewCacheRepository(client, nil), metrics, time.Minute, nil, enabled), server, metrics
}

func TestCacheServiceRoundTrip(t *testing.T) {
	svc, server, metrics := newRedisCacheService(t, true)
	ctx := context.Background()

	var snapshot models.Snapshot
	hit, err := svc.Get(ctx, snapshotCacheKey, &snapshot)
	require.NoError(t, err)
	assert.False(t, hit)

	stored := models.Snapshot{Students: []models.Student{{ID: "1", FirstName: "Ana", LastName: "Cruz"}}}
	require.NoError(t, svc.Set(ctx, snapshotCacheKey, stored, 0))
	assert.True(t, server.Exists(snapshotCacheKey))
	assert.Equal(t, time.Minute, server.TTL(snapshotCacheKey))

	hit, err = svc.Get(ctx, snapshotCacheKey, &snapshot)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Ana", snapshot.Students[0].FirstName)

	require.NoError(t, svc.Invalidate(ctx, gradebookCachePattern))
	assert.False(t, server.Exists(snapshotCacheKey))

	summary := metrics.Snapshot()
	assert.Equal(t, uint64(1), summary.CacheHits)
	assert.Equal(t, uint64(1), summary.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	svc, server, _ := newRedisCacheService(t, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, snapshotCacheKey, models.Snapshot{}, time.Minute))
	assert.False(t, server.Exists(snapshotCacheKey))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}
