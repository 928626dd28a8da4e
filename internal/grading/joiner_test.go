package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

func TestJoinerResolvesDisplayFields(t *testing.T) {
	joiner := NewJoiner(
		[]models.Student{{ID: "s1", FirstName: "Ana", LastName: "Cruz"}},
		[]models.Subject{{ID: "sub1", SubjectCode: "CS101", SubjectName: "Intro"}},
	)

	joined := joiner.Join(models.GradeRecord{StudentID: "s1", SubjectID: "sub1"})
	assert.Equal(t, Joined{StudentName: "Ana Cruz", SubjectCode: "CS101", SubjectName: "Intro"}, joined)
}

func TestJoinerUnknownReferences(t *testing.T) {
	joiner := NewJoiner(nil, nil)

	joined := joiner.Join(models.GradeRecord{StudentID: "missing", SubjectID: "missing"})
	assert.Equal(t, Unknown, joined.StudentName)
	assert.Equal(t, Unknown, joined.SubjectCode)
	assert.Equal(t, Unknown, joined.SubjectName)
}

func TestJoinerFirstDuplicateWins(t *testing.T) {
	joiner := NewJoiner(
		[]models.Student{
			{ID: "s1", FirstName: "Ana", LastName: "Cruz"},
			{ID: "s1", FirstName: "Ben", LastName: "Reyes"},
		},
		[]models.Subject{
			{ID: "sub1", SubjectCode: "CS101", SubjectName: "Intro"},
			{ID: "sub1", SubjectCode: "CS102", SubjectName: "Data Structures"},
		},
	)

	assert.Equal(t, "Ana Cruz", joiner.StudentName("s1"))
	assert.Equal(t, "CS101", joiner.SubjectCode("sub1"))
	assert.Equal(t, "Intro", joiner.SubjectName("sub1"))
}
