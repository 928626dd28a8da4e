package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

const maxPageSize = 100

type studentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByStudentNumber(ctx context.Context, number string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns students matching the search, optionally paginated. A zero
// page size returns every match.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	matches := grading.FilterStudents(students, filter.Search)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size > maxPageSize {
		size = maxPageSize
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: len(matches)}
	if size <= 0 {
		pagination.PageSize = len(matches)
		return matches, pagination, nil
	}
	start := (page - 1) * size
	if start >= len(matches) {
		return []models.Student{}, pagination, nil
	}
	end := start + size
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req dto.StudentRequest) (*models.Student, error) {
	req = normalizeStudent(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "student")
	}
	if err := s.ensureUniqueNumber(ctx, req.StudentNumber, ""); err != nil {
		return nil, err
	}
	student := &models.Student{
		StudentNumber: req.StudentNumber,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Course:        req.Course,
		YearLevel:     req.YearLevel,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req dto.StudentRequest) (*models.Student, error) {
	req = normalizeStudent(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "student")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueNumber(ctx, req.StudentNumber, id); err != nil {
		return nil, err
	}
	student.StudentNumber = req.StudentNumber
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Course = req.Course
	student.YearLevel = req.YearLevel
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	return student, nil
}

// Delete removes a student. Their grade records remain and show as "Unknown".
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

func (s *StudentService) ensureUniqueNumber(ctx context.Context, number, excludeID string) error {
	exists, err := s.repo.ExistsByStudentNumber(ctx, number, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "student number already used")
	}
	return nil
}

func normalizeStudent(req dto.StudentRequest) dto.StudentRequest {
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Course = strings.TrimSpace(req.Course)
	return req
}
