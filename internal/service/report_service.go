package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/storage"
)

const studentsReportTitle = "Students Report"

type reportSource interface {
	Report(ctx context.Context, query, title string) (grading.Report, error)
	Students(ctx context.Context, query string) ([]models.Student, error)
}

// ReportServiceConfig governs file retention.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload is an opened report file ready to stream.
type ReportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	Size        int64
	ExpiresAt   time.Time
}

// ReportService renders report files on demand and serves them back through
// signed links.
type ReportService struct {
	source    reportSource
	exporter  *ExportService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(source reportSource, exporter *ExportService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		source:    source,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Export renders the requested report, stores it and returns its download link.
func (s *ReportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "export")
	}

	var (
		payload []byte
		err     error
	)
	switch req.Type {
	case models.ExportTypeGrades:
		var report grading.Report
		report, err = s.source.Report(ctx, req.Search, req.Title)
		if err != nil {
			return nil, err
		}
		payload, err = s.exporter.RenderGrades(report, req.Format)
	case models.ExportTypeStudents:
		var students []models.Student
		students, err = s.source.Students(ctx, req.Search)
		if err != nil {
			return nil, err
		}
		title := req.Title
		if title == "" {
			title = studentsReportTitle
		}
		payload, err = s.exporter.RenderStudents(students, title, req.Format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	result, err := s.exporter.Store(uuid.NewString(), req.Type, req.Format, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}
	s.metrics.RecordReport(req.Type, req.Format)
	s.logger.Info("report exported",
		zap.String("export_id", result.ID),
		zap.String("type", string(req.Type)),
		zap.String("format", string(req.Format)),
		zap.Int("bytes", len(payload)),
	)
	return &dto.ExportResponse{
		ID:        result.ID,
		Type:      req.Type,
		Format:    req.Format,
		URL:       result.URL,
		ExpiresAt: result.ExpiresAt,
	}, nil
}

// ResolveDownload validates token and opens the stored report file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	claims, err := s.exporter.ParseToken(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrGone, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invalid download link")
	}
	file, err := s.exporter.Open(claims.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrGone, "report file no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report file")
	}
	filename := filepath.Base(claims.Path)
	return &ReportDownload{
		File:        file,
		Filename:    filename,
		ContentType: formatOf(filename).ContentType(),
		Size:        info.Size(),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// StartCleanup purges expired report files periodically until ctx is done.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *ReportService) cleanupExpired() {
	deleted, err := s.exporter.Cleanup(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired reports removed", zap.Int("count", len(deleted)))
	}
}

func formatOf(filename string) models.ExportFormat {
	switch filepath.Ext(filename) {
	case ".pdf":
		return models.ExportFormatPDF
	case ".csv":
		return models.ExportFormatCSV
	default:
		return ""
	}
}
