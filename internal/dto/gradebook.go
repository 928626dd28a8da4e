package dto

import (
	"github.com/noah-isme/sma-gradebook-api/internal/grading"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// StudentRequest is the payload for creating or updating a student.
type StudentRequest struct {
	StudentNumber string `json:"student_number" validate:"required,max=32"`
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Course        string `json:"course" validate:"max=100"`
	YearLevel     int    `json:"year_level" validate:"required,min=1,max=4"`
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	SubjectCode string `json:"subject_code" validate:"required,max=32"`
	SubjectName string `json:"subject_name" validate:"required,max=150"`
}

// GradeRequest is the payload for creating or updating a grade record.
// Each component may be null, an empty string or a number.
type GradeRequest struct {
	StudentID string       `json:"student_id" validate:"required"`
	SubjectID string       `json:"subject_id" validate:"required"`
	Prelim    models.Score `json:"prelim" validate:"score"`
	Midterm   models.Score `json:"midterm" validate:"score"`
	Semifinal models.Score `json:"semifinal" validate:"score"`
	Final     models.Score `json:"final" validate:"score"`
}

// GradeTableResponse is the live grades table.
type GradeTableResponse struct {
	Search string                  `json:"search"`
	Rows   []grading.ComputedGrade `json:"rows"`
	Stats  grading.CohortStats     `json:"stats"`
}
