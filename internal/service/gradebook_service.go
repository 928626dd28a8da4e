package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type studentLister interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type subjectLister interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type gradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// GradebookConfig tunes snapshot caching and report defaults.
type GradebookConfig struct {
	SnapshotTTL  time.Duration
	DefaultTitle string
}

// GradebookService loads the stored collections and runs them through the
// grading engine. The live table and every report share this path.
type GradebookService struct {
	students studentLister
	subjects subjectLister
	grades   gradeLister
	cache    snapshotCache
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      GradebookConfig
	now      func() time.Time
}

// NewGradebookService constructs the gradebook service. cache and metrics may be nil.
func NewGradebookService(students studentLister, subjects subjectLister, grades gradeLister, cache snapshotCache, metrics *MetricsService, cfg GradebookConfig, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = grading.DefaultTitle
	}
	return &GradebookService{
		students: students,
		subjects: subjects,
		grades:   grades,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Snapshot fetches students, subjects and grades, preferring the cache. The
// boolean reports a cache hit.
func (s *GradebookService) Snapshot(ctx context.Context) (models.Snapshot, bool, error) {
	var snapshot models.Snapshot
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, snapshotCacheKey, &snapshot)
		if err == nil && hit {
			return snapshot, true, nil
		}
	}
	snapshot, err := s.Refresh(ctx)
	return snapshot, false, err
}

// Refresh reloads the snapshot from the database, skipping any cached copy,
// and stores the result in the cache.
func (s *GradebookService) Refresh(ctx context.Context) (models.Snapshot, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotCacheKey, snapshot, s.cfg.SnapshotTTL); err != nil {
			s.logger.Debug("snapshot not cached", zap.Error(err))
		}
	}
	return snapshot, nil
}

func (s *GradebookService) load(ctx context.Context) (models.Snapshot, error) {
	var (
		snapshot models.Snapshot
		err      error
	)
	start := time.Now()
	if snapshot.Students, err = s.students.ListAll(ctx); err != nil {
		return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	s.metrics.ObserveDBQuery("snapshot_students", time.Since(start))

	start = time.Now()
	if snapshot.Subjects, err = s.subjects.ListAll(ctx); err != nil {
		return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	s.metrics.ObserveDBQuery("snapshot_subjects", time.Since(start))

	start = time.Now()
	if snapshot.Grades, err = s.grades.List(ctx, models.GradeFilter{}); err != nil {
		return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	s.metrics.ObserveDBQuery("snapshot_grades", time.Since(start))
	return snapshot, nil
}

// Table evaluates the live grades table for the search query.
func (s *GradebookService) Table(ctx context.Context, query string) (grading.Evaluation, bool, error) {
	snapshot, hit, err := s.Snapshot(ctx)
	if err != nil {
		return grading.Evaluation{}, false, err
	}
	evaluation := grading.Evaluate(snapshot, query)
	if query == "" {
		s.metrics.ObserveCohort(evaluation.Stats)
	}
	return evaluation, hit, nil
}

// Report assembles the printable grades report for the search query.
func (s *GradebookService) Report(ctx context.Context, query, title string) (grading.Report, error) {
	snapshot, _, err := s.Snapshot(ctx)
	if err != nil {
		return grading.Report{}, err
	}
	if title == "" {
		title = s.cfg.DefaultTitle
	}
	return grading.BuildReport(snapshot, query, grading.AssembleOptions{
		Title:       title,
		GeneratedAt: s.now().UTC(),
	}), nil
}

// Students returns the roster filtered by the search query.
func (s *GradebookService) Students(ctx context.Context, query string) ([]models.Student, error) {
	snapshot, _, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return grading.FilterStudents(snapshot.Students, query), nil
}
