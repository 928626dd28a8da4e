package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type subjectRepository interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// SubjectService provides subject CRUD operations.
type SubjectService struct {
	repo      subjectRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService builds a SubjectService.
func NewSubjectService(repo subjectRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every subject.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject by ID.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create registers a new subject.
func (s *SubjectService) Create(ctx context.Context, req dto.SubjectRequest) (*models.Subject, error) {
	req.SubjectCode = strings.TrimSpace(req.SubjectCode)
	req.SubjectName = strings.TrimSpace(req.SubjectName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "subject")
	}
	if err := s.ensureUniqueCode(ctx, req.SubjectCode, ""); err != nil {
		return nil, err
	}
	subject := &models.Subject{SubjectCode: req.SubjectCode, SubjectName: req.SubjectName}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	return subject, nil
}

// Update modifies a subject.
func (s *SubjectService) Update(ctx context.Context, id string, req dto.SubjectRequest) (*models.Subject, error) {
	req.SubjectCode = strings.TrimSpace(req.SubjectCode)
	req.SubjectName = strings.TrimSpace(req.SubjectName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "subject")
	}
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCode(ctx, req.SubjectCode, id); err != nil {
		return nil, err
	}
	subject.SubjectCode = req.SubjectCode
	subject.SubjectName = req.SubjectName
	if err := s.repo.Update(ctx, subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	return subject, nil
}

// Delete removes a subject. Grades that reference it remain.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	invalidateGradebook(ctx, s.cache, s.logger)
	return nil
}

func (s *SubjectService) ensureUniqueCode(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate subject code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "subject code already used")
	}
	return nil
}
