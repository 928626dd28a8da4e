package grading

import (
	"strings"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// Filter keeps rows whose student name, subject name or subject code contains
// the query, ignoring case. An empty query keeps every row. Order is preserved.
func Filter(rows []ComputedGrade, query string) []ComputedGrade {
	needle := strings.ToLower(query)
	filtered := make([]ComputedGrade, 0, len(rows))
	for _, row := range rows {
		if needle == "" || rowMatches(row, needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func rowMatches(row ComputedGrade, needle string) bool {
	return strings.Contains(strings.ToLower(row.StudentName), needle) ||
		strings.Contains(strings.ToLower(row.SubjectName), needle) ||
		strings.Contains(strings.ToLower(row.SubjectCode), needle)
}

// FilterStudents applies the roster search: first name, last name, student
// number or course, case-insensitive.
func FilterStudents(students []models.Student, query string) []models.Student {
	needle := strings.ToLower(query)
	filtered := make([]models.Student, 0, len(students))
	for _, student := range students {
		if needle == "" ||
			strings.Contains(strings.ToLower(student.FirstName), needle) ||
			strings.Contains(strings.ToLower(student.LastName), needle) ||
			strings.Contains(strings.ToLower(student.StudentNumber), needle) ||
			strings.Contains(strings.ToLower(student.Course), needle) {
			filtered = append(filtered, student)
		}
	}
	return filtered
}
