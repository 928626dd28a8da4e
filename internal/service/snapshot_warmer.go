package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/pkg/jobs"
)

const snapshotRefreshJob = "snapshot_refresh"

type snapshotLoader interface {
	Refresh(ctx context.Context) (models.Snapshot, error)
}

// SnapshotWarmer invalidates the gradebook cache after writes and reloads the
// snapshot in the background so the next table request is served warm. A
// single worker with a one-slot buffer collapses write bursts into one reload
// that always runs after the latest invalidation. The reload bypasses the
// cache, so a stale snapshot written by a concurrent reader is overwritten.
type SnapshotWarmer struct {
	cache  cacheInvalidator
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewSnapshotWarmer wires the reload job to loader.
func NewSnapshotWarmer(cache cacheInvalidator, loader snapshotLoader, logger *zap.Logger) *SnapshotWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &SnapshotWarmer{cache: cache, logger: logger}
	w.queue = jobs.NewQueue("snapshot-warmer", func(ctx context.Context, job jobs.Job) error {
		start := time.Now()
		if _, err := loader.Refresh(ctx); err != nil {
			return err
		}
		logger.Debug("snapshot cache warmed", zap.Duration("took", time.Since(start)))
		return nil
	}, jobs.QueueConfig{Workers: 1, BufferSize: 1, MaxRetries: 2, Logger: logger})
	return w
}

// Start runs the background worker until ctx is done or Stop is called.
func (w *SnapshotWarmer) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Stop waits for the worker to exit.
func (w *SnapshotWarmer) Stop() {
	w.queue.Stop()
}

// Invalidate drops cached entries matching pattern and schedules a reload.
func (w *SnapshotWarmer) Invalidate(ctx context.Context, pattern string) error {
	if w.cache != nil {
		if err := w.cache.Invalidate(ctx, pattern); err != nil {
			return err
		}
	}
	err := w.queue.TryEnqueue(jobs.Job{ID: pattern, Type: snapshotRefreshJob})
	if err != nil && !errors.Is(err, jobs.ErrQueueFull) {
		w.logger.Debug("snapshot reload not scheduled", zap.Error(err))
	}
	return nil
}
