package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/storage"
)

func newReportServiceFixture(t *testing.T) (*ReportService, string, *MetricsService) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	exporter := NewExportService(store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)

	students, subjects, grades := gradebookFixture()
	gradebook := NewGradebookService(students, subjects, grades, nil, nil, GradebookConfig{}, nil)
	metrics := NewMetricsService()
	svc := NewReportService(gradebook, exporter, metrics, nil, nil, ReportServiceConfig{ResultTTL: time.Hour})
	return svc, dir, metrics
}

func readDownload(t *testing.T, download *ReportDownload) string {
	t.Helper()
	defer download.File.Close()
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	return string(body)
}

func TestReportServiceExportGradesCSV(t *testing.T) {
	svc, dir, metrics := newReportServiceFixture(t)

	resp, err := svc.Export(context.Background(), dto.ExportRequest{Type: "grades", Format: "csv", Search: "cruz"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.True(t, strings.HasPrefix(resp.URL, "/api/v1/export/"))
	assert.Equal(t, uint64(1), metrics.Snapshot().ReportsGenerated)

	token := strings.TrimPrefix(resp.URL, "/api/v1/export/")
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", download.ContentType)
	assert.True(t, strings.HasPrefix(download.Filename, "grades_"))
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))

	body := readDownload(t, download)
	assert.Contains(t, body, "Student,Subject,Prelim,Midterm,Semi-final,Final,Grade,Status")
	assert.Contains(t, body, "Ana Cruz,CS101,80,85,90,95,89.0,PASS")
	assert.NotContains(t, body, "Ben Reyes")

	entries, err := os.ReadDir(filepath.Join(dir, "grades"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReportServiceExportStudentsPDF(t *testing.T) {
	svc, _, _ := newReportServiceFixture(t)

	resp, err := svc.Export(context.Background(), dto.ExportRequest{Type: "students", Format: "pdf"})
	require.NoError(t, err)

	download, err := svc.ResolveDownload(context.Background(), strings.TrimPrefix(resp.URL, "/api/v1/export/"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", download.ContentType)
	assert.True(t, strings.HasPrefix(readDownload(t, download), "%PDF"))
}

func TestReportServiceExportValidation(t *testing.T) {
	svc, _, _ := newReportServiceFixture(t)

	_, err := svc.Export(context.Background(), dto.ExportRequest{Type: "grades", Format: "xlsx"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "format must be one of [pdf csv]")
}

func TestReportServiceResolveDownloadErrors(t *testing.T) {
	svc, dir, _ := newReportServiceFixture(t)

	_, err := svc.ResolveDownload(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	resp, err := svc.Export(context.Background(), dto.ExportRequest{Type: models.ExportTypeGrades, Format: models.ExportFormatCSV})
	require.NoError(t, err)
	token := strings.TrimPrefix(resp.URL, "/api/v1/export/")

	tampered := token[:len(token)-1] + "0"
	if tampered == token {
		tampered = token[:len(token)-1] + "1"
	}
	_, err = svc.ResolveDownload(context.Background(), tampered)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "grades")))
	_, err = svc.ResolveDownload(context.Background(), token)
	assert.True(t, errors.Is(err, appErrors.ErrGone))
}

func TestReportServiceCleanupRemovesExpiredFiles(t *testing.T) {
	svc, dir, _ := newReportServiceFixture(t)

	_, err := svc.Export(context.Background(), dto.ExportRequest{Type: "grades", Format: "csv"})
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, "grades"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	old := time.Now().Add(-2 * time.Hour)
	path := filepath.Join(dir, "grades", entries[0].Name())
	require.NoError(t, os.Chtimes(path, old, old))

	svc.cleanupExpired()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStudentsDataset(t *testing.T) {
	dataset := StudentsDataset(sampleStudents()[:1])
	assert.Equal(t, []string{"Student Number", "Name", "Course", "Year"}, dataset.Headers)
	assert.Equal(t, [][]string{{"2024-001", "Ana Cruz", "BSCS", "Year 1"}}, dataset.Rows)
}
