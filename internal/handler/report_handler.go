package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

type reportBuilder interface {
	Report(ctx context.Context, query, title string) (grading.Report, error)
}

type reportExporter interface {
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes the grades report and report file downloads.
type ReportHandler struct {
	reports  reportBuilder
	exporter reportExporter
	logger   *zap.Logger
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportBuilder, exporter reportExporter, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, exporter: exporter, logger: logger}
}

// GradesReport godoc
// @Summary Assembled grades report
// @Description Header, stat tiles, detail table, insights and capped student lists for the rows matching search.
// @Tags Reports
// @Produce json
// @Param search query string false "Match student name, subject name or subject code"
// @Param title query string false "Report title"
// @Success 200 {object} response.Envelope
// @Router /reports/grades [get]
func (h *ReportHandler) GradesReport(c *gin.Context) {
	report, err := h.reports.Report(c.Request.Context(), searchQuery(c), c.Query("title"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Render a report file
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export payload"
// @Success 201 {object} response.Envelope
// @Router /reports/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a rendered report file
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.exporter.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		if cerr := download.File.Close(); cerr != nil {
			h.logger.Warn("failed to close report file", zap.String("file", download.Filename), zap.Error(cerr))
		}
	}()
	response.Attachment(c, download.Filename, download.ContentType, download.Size, download.File)
}
