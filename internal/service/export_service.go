package service

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/pkg/export"
	"github.com/noah-isme/sma-gradebook-api/pkg/storage"
)

// studentColumns are the headers of the students report.
var studentColumns = []string{"Student Number", "Name", "Course", "Year"}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderReport(report grading.Report) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures a stored report file and its download link.
type ExportResult struct {
	ID           string
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders report content, persists the file and signs a download link.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// RenderGrades encodes an assembled grades report.
func (s *ExportService) RenderGrades(report grading.Report, format models.ExportFormat) ([]byte, error) {
	switch format {
	case models.ExportFormatPDF:
		return s.pdf.RenderReport(report)
	case models.ExportFormatCSV:
		return s.csv.Render(GradesDataset(report))
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// RenderStudents encodes the students report.
func (s *ExportService) RenderStudents(students []models.Student, title string, format models.ExportFormat) ([]byte, error) {
	dataset := StudentsDataset(students)
	switch format {
	case models.ExportFormatPDF:
		return s.pdf.Render(dataset, title)
	case models.ExportFormatCSV:
		return s.csv.Render(dataset)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// Store saves payload and returns a signed download link for it.
func (s *ExportService) Store(id string, kind models.ExportType, format models.ExportFormat, payload []byte) (*ExportResult, error) {
	relPath, err := s.storage.Save(s.buildFilename(id, kind, format), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		ID:           id,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Claims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl, or the configured result TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(id string, kind models.ExportType, format models.ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	short := sanitizeFilename(id)
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s/%s_%s_%s.%s", kind, kind, timestamp, short, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	return replacer.Replace(raw)
}

// GradesDataset flattens the report detail table for tabular encoders.
func GradesDataset(report grading.Report) export.Dataset {
	rows := make([][]string, 0, len(report.Table.Rows))
	for _, row := range report.Table.Rows {
		rows = append(rows, row.Cells)
	}
	return export.Dataset{Headers: report.Table.Columns, Rows: rows}
}

// StudentsDataset lists students as Student Number, Name, Course, Year.
func StudentsDataset(students []models.Student) export.Dataset {
	rows := make([][]string, 0, len(students))
	for _, student := range students {
		rows = append(rows, []string{
			student.StudentNumber,
			student.FullName(),
			student.Course,
			"Year " + strconv.Itoa(student.YearLevel),
		})
	}
	return export.Dataset{Headers: studentColumns, Rows: rows}
}
