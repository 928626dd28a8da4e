package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/middleware"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

type gradeService interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
	Get(ctx context.Context, id string) (*models.GradeRecord, error)
	Create(ctx context.Context, req dto.GradeRequest) (*models.GradeRecord, error)
	Update(ctx context.Context, id string, req dto.GradeRequest) (*models.GradeRecord, error)
	Delete(ctx context.Context, id string) error
}

type gradeTable interface {
	Table(ctx context.Context, query string) (grading.Evaluation, bool, error)
}

// GradeHandler exposes grade record endpoints and the live grades table.
type GradeHandler struct {
	grades gradeService
	table  gradeTable
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService, table gradeTable) *GradeHandler {
	return &GradeHandler{grades: grades, table: table}
}

// List godoc
// @Summary List stored grade records
// @Tags Grades
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param subject_id query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{StudentID: c.Query("student_id"), SubjectID: c.Query("subject_id")}
	grades, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Table godoc
// @Summary Live grades table
// @Description Computed final grades, PASS/FAIL, bands and cohort statistics for the rows matching search.
// @Tags Grades
// @Produce json
// @Param search query string false "Match student name, subject name or subject code"
// @Success 200 {object} response.Envelope
// @Router /grades/table [get]
func (h *GradeHandler) Table(c *gin.Context) {
	search := searchQuery(c)
	evaluation, hit, err := h.table.Table(c.Request.Context(), search)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, dto.GradeTableResponse{
		Search: search,
		Rows:   evaluation.Rows,
		Stats:  evaluation.Stats,
	}, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get grade record
// @Tags Grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	grade, err := h.grades.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Create godoc
// @Summary Create grade record
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.GradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req dto.GradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update grade record
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body dto.GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req dto.GradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.grades.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete grade record
// @Tags Grades
// @Param id path string true "Grade ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	if err := h.grades.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
