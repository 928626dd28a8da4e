package grading

import "github.com/noah-isme/sma-gradebook-api/internal/models"

// Unknown is shown when a foreign key does not resolve.
const Unknown = "Unknown"

// Joined holds the display fields resolved for a grade record.
type Joined struct {
	StudentName string
	SubjectCode string
	SubjectName string
}

// Joiner resolves student and subject references through indexes built once
// per pipeline run. When an id occurs twice the first entity wins, matching a
// front-to-back scan.
type Joiner struct {
	students map[string]models.Student
	subjects map[string]models.Subject
}

// NewJoiner indexes the given collections.
func NewJoiner(students []models.Student, subjects []models.Subject) *Joiner {
	j := &Joiner{
		students: make(map[string]models.Student, len(students)),
		subjects: make(map[string]models.Subject, len(subjects)),
	}
	for _, student := range students {
		if _, ok := j.students[student.ID]; !ok {
			j.students[student.ID] = student
		}
	}
	for _, subject := range subjects {
		if _, ok := j.subjects[subject.ID]; !ok {
			j.subjects[subject.ID] = subject
		}
	}
	return j
}

// StudentName returns "first last" or Unknown.
func (j *Joiner) StudentName(id string) string {
	student, ok := j.students[id]
	if !ok {
		return Unknown
	}
	return student.FullName()
}

// SubjectCode returns the subject code or Unknown.
func (j *Joiner) SubjectCode(id string) string {
	subject, ok := j.subjects[id]
	if !ok {
		return Unknown
	}
	return subject.SubjectCode
}

// SubjectName returns the subject name or Unknown.
func (j *Joiner) SubjectName(id string) string {
	subject, ok := j.subjects[id]
	if !ok {
		return Unknown
	}
	return subject.SubjectName
}

// Join resolves every display field of a record.
func (j *Joiner) Join(record models.GradeRecord) Joined {
	return Joined{
		StudentName: j.StudentName(record.StudentID),
		SubjectCode: j.SubjectCode(record.SubjectID),
		SubjectName: j.SubjectName(record.SubjectID),
	}
}
