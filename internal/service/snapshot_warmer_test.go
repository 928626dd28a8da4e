package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

func TestSnapshotWarmerReloadsAfterInvalidate(t *testing.T) {
	students, subjects, grades := gradebookFixture()
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	gradebook := NewGradebookService(students, subjects, grades, cache, nil, GradebookConfig{}, nil)
	warmer := NewSnapshotWarmer(cache, gradebook, nil)
	warmer.Start(context.Background())
	defer warmer.Stop()

	svc := NewStudentService(&mockStudentRepo{numbers: map[string]string{}}, warmer, nil, nil)
	_, err := svc.Create(context.Background(), sampleStudentRequest())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		var snapshot models.Snapshot
		hit, err := cache.Get(context.Background(), snapshotCacheKey, &snapshot)
		return err == nil && hit
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, students.listCalls)
}

func TestSnapshotWarmerWithoutWorker(t *testing.T) {
	invalidator := &recordingInvalidator{}
	warmer := NewSnapshotWarmer(invalidator, nil, nil)

	require.NoError(t, warmer.Invalidate(context.Background(), gradebookCachePattern))
	assert.Equal(t, []string{gradebookCachePattern}, invalidator.patterns)
}

// lateWriter re-caches a stale snapshot right after invalidation, as a reader
// that loaded before the write would.
type lateWriter struct {
	cache *CacheService
	stale models.Snapshot
}

func (l lateWriter) Invalidate(ctx context.Context, pattern string) error {
	if err := l.cache.Invalidate(ctx, pattern); err != nil {
		return err
	}
	return l.cache.Set(ctx, snapshotCacheKey, l.stale, time.Minute)
}

func TestSnapshotWarmerOverwritesStaleSnapshot(t *testing.T) {
	students, subjects, grades := gradebookFixture()
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	gradebook := NewGradebookService(students, subjects, grades, cache, nil, GradebookConfig{}, nil)
	stale := models.Snapshot{Students: []models.Student{{ID: "old"}}}
	warmer := NewSnapshotWarmer(lateWriter{cache: cache, stale: stale}, gradebook, nil)
	warmer.Start(context.Background())
	defer warmer.Stop()

	require.NoError(t, warmer.Invalidate(context.Background(), gradebookCachePattern))

	require.Eventually(t, func() bool {
		var snapshot models.Snapshot
		hit, err := cache.Get(context.Background(), snapshotCacheKey, &snapshot)
		return err == nil && hit && len(snapshot.Students) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGradebookRefreshSkipsCache(t *testing.T) {
	students, subjects, grades := gradebookFixture()
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	require.NoError(t, cache.Set(context.Background(), snapshotCacheKey, models.Snapshot{}, time.Minute))
	svc := NewGradebookService(students, subjects, grades, cache, nil, GradebookConfig{}, nil)

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Students, 2)
	assert.Equal(t, 1, students.listCalls)

	cached, hit, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, cached.Grades, 2)
}
