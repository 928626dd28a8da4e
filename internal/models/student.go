package models

import "time"

// Student represents a learner whose grades are tracked.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Course        string    `db:"course" json:"course"`
	YearLevel     int       `db:"year_level" json:"year_level"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name the way rosters display them.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}
