package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

const gradeColumns = "id, student_id, subject_id, prelim, midterm, semifinal, final, created_at, updated_at"

// GradeRepository handles grade record persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grade records matching the filter in insertion order.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE 1=1", gradeColumns)
	var args []interface{}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	query += " ORDER BY created_at, id"
	grades := make([]models.GradeRecord, 0)
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindByID fetches a single grade record.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.GradeRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE id = $1", gradeColumns)
	var grade models.GradeRecord
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// Create inserts a grade record.
func (r *GradeRepository) Create(ctx context.Context, grade *models.GradeRecord) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, subject_id, prelim, midterm, semifinal, final, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :prelim, :midterm, :semifinal, :final, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update replaces the references and component scores of a grade record.
func (r *GradeRepository) Update(ctx context.Context, grade *models.GradeRecord) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET student_id = :student_id, subject_id = :subject_id, prelim = :prelim, midterm = :midterm,
        semifinal = :semifinal, final = :final, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return expectAffected(result, "update grade")
}

// Delete removes a grade record.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM grades WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return expectAffected(result, "delete grade")
}
