package models

import "time"

// Subject represents an academic subject.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	SubjectCode string    `db:"subject_code" json:"subject_code"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
