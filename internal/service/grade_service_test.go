package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

func newGradeServiceFixture() (*GradeService, *mockGradeRepo, *recordingInvalidator) {
	grades := &mockGradeRepo{}
	students := &mockStudentRepo{students: sampleStudents()}
	subjects := &mockSubjectRepo{subjects: []models.Subject{{ID: "s1", SubjectCode: "CS101", SubjectName: "Intro"}}}
	cache := &recordingInvalidator{}
	return NewGradeService(grades, students, subjects, cache, nil, nil), grades, cache
}

func TestGradeServiceCreate(t *testing.T) {
	svc, repo, cache := newGradeServiceFixture()

	grade, err := svc.Create(context.Background(), dto.GradeRequest{
		StudentID: "1",
		SubjectID: "s1",
		Prelim:    models.NewScore(85),
		Midterm:   models.NewScore(88),
		Semifinal: models.ParseScore(""),
		Final:     models.NewScore(92),
	})
	require.NoError(t, err)
	assert.Equal(t, "grade-generated", grade.ID)
	assert.True(t, grade.Semifinal.IsBlank())
	assert.Len(t, repo.grades, 1)
	assert.Equal(t, []string{"gradebook:*"}, cache.patterns)
}

func TestGradeServiceRejectsOutOfRangeScores(t *testing.T) {
	svc, repo, _ := newGradeServiceFixture()

	for _, raw := range []string{"101", "-1", "abc", "NaN"} {
		_, err := svc.Create(context.Background(), dto.GradeRequest{StudentID: "1", SubjectID: "s1", Final: models.ParseScore(raw)})
		require.Error(t, err, raw)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidScore.Code, appErr.Code, raw)
		assert.Contains(t, appErr.Message, "final")
	}
	assert.Empty(t, repo.grades)
}

func TestGradeServiceScoreTagReportsEveryField(t *testing.T) {
	svc, repo, _ := newGradeServiceFixture()

	_, err := svc.Create(context.Background(), dto.GradeRequest{
		SubjectID: "s1",
		Prelim:    models.ParseScore("120"),
		Midterm:   models.ParseScore("  "),
		Final:     models.ParseScore("x"),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "student_id is required")
	assert.Contains(t, appErr.Message, "prelim must be blank or a number between 0 and 100")
	assert.Contains(t, appErr.Message, "final must be blank or a number between 0 and 100")
	assert.NotContains(t, appErr.Message, "midterm")
	assert.Empty(t, repo.grades)

	grade, err := svc.Create(context.Background(), dto.GradeRequest{
		StudentID: "1",
		SubjectID: "s1",
		Prelim:    models.ParseScore("0"),
		Final:     models.ParseScore("100"),
	})
	require.NoError(t, err)
	assert.True(t, grade.Midterm.IsBlank())
}

func TestGradeServiceRejectsUnknownReferences(t *testing.T) {
	svc, _, _ := newGradeServiceFixture()

	_, err := svc.Create(context.Background(), dto.GradeRequest{StudentID: "ghost", SubjectID: "s1"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "student_id")

	_, err = svc.Create(context.Background(), dto.GradeRequest{StudentID: "1", SubjectID: "ghost"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "subject_id")

	_, err = svc.Create(context.Background(), dto.GradeRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceUpdateAndDelete(t *testing.T) {
	svc, repo, _ := newGradeServiceFixture()
	repo.grades = []models.GradeRecord{{ID: "g1", StudentID: "1", SubjectID: "s1", Final: models.NewScore(60)}}

	updated, err := svc.Update(context.Background(), "g1", dto.GradeRequest{StudentID: "1", SubjectID: "s1", Final: models.NewScore(95)})
	require.NoError(t, err)
	v, ok := updated.Final.Float()
	require.True(t, ok)
	assert.Equal(t, 95.0, v)

	_, err = svc.Update(context.Background(), "g2", dto.GradeRequest{StudentID: "1", SubjectID: "s1"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(context.Background(), "g1"))
	assert.True(t, errors.Is(svc.Delete(context.Background(), "g1"), appErrors.ErrNotFound))
}
