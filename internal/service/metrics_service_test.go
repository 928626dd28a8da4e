package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/grades/table", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/grades/table", http.StatusOK, 40*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveDBQuery("snapshot_grades", 10*time.Millisecond)
	m.RecordReport(models.ExportTypeGrades, models.ExportFormatPDF)

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30.0, snapshot.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snapshot.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
	assert.Equal(t, uint64(1), snapshot.ReportsGenerated)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsTotal.WithLabelValues("grades", "pdf")))
}

func TestMetricsServiceObserveCohort(t *testing.T) {
	m := NewMetricsService()
	m.ObserveCohort(grading.CohortStats{TotalCount: 3, PassRate: "66.7"})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.evaluatedRecords))
	assert.Equal(t, 66.7, testutil.ToFloat64(m.passRate))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordReport(models.ExportTypeStudents, models.ExportFormatCSV)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gradebook_reports_generated_total{format="csv",type="students"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordReport(models.ExportTypeGrades, models.ExportFormatCSV)
	m.ObserveCohort(grading.CohortStats{})
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
