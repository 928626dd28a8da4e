package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
	FindByID(ctx context.Context, id string) (*models.GradeRecord, error)
	Create(ctx context.Context, grade *models.GradeRecord) error
	Update(ctx context.Context, grade *models.GradeRecord) error
	Delete(ctx context.Context, id string) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type subjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// GradeService manages grade records. Writes are validated strictly while
// reads hand stored values to the grading engine untouched.
type GradeService struct {
	repo      gradeRepository
	students  studentLookup
	subjects  subjectLookup
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, students studentLookup, subjects subjectLookup, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerScoreValidation(validate)
	return &GradeService{repo: repo, students: students, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// List returns stored grade records matching the filter.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	grades, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Get returns a grade record by ID.
func (s *GradeService) Get(ctx context.Context, id string) (*models.GradeRecord, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// Create stores a new grade record.
func (s *GradeService) Create(ctx context.Context, req dto.GradeRequest) (*models.GradeRecord, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	grade := &models.GradeRecord{}
	applyGrade(grade, req)
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	return grade, nil
}

// Update replaces a grade record's references and scores.
func (s *GradeService) Update(ctx context.Context, id string, req dto.GradeRequest) (*models.GradeRecord, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	grade, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyGrade(grade, req)
	if err := s.repo.Update(ctx, grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	return grade, nil
}

// Delete removes a grade record.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	return nil
}

func (s *GradeService) validate(ctx context.Context, req dto.GradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "grade")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "student_id does not reference a student")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "subject_id does not reference a subject")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate subject")
	}
	return nil
}

func applyGrade(grade *models.GradeRecord, req dto.GradeRequest) {
	grade.StudentID = req.StudentID
	grade.SubjectID = req.SubjectID
	grade.Prelim = req.Prelim
	grade.Midterm = req.Midterm
	grade.Semifinal = req.Semifinal
	grade.Final = req.Final
}
