package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type mockStudentRepo struct {
	students  []models.Student
	numbers   map[string]string
	created   []models.Student
	deleted   []string
	listCalls int
	err       error
}

func (m *mockStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Student(nil), m.students...), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByStudentNumber(ctx context.Context, number string, excludeID string) (bool, error) {
	if id, ok := m.numbers[number]; ok && id != excludeID {
		return true, nil
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "generated"
	}
	m.created = append(m.created, *student)
	m.students = append(m.students, *student)
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	for i, s := range m.students {
		if s.ID == student.ID {
			m.students[i] = *student
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	for i, s := range m.students {
		if s.ID == id {
			m.students = append(m.students[:i], m.students[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockSubjectRepo struct {
	subjects []models.Subject
	codes    map[string]string
	err      error
}

func (m *mockSubjectRepo) ListAll(ctx context.Context) ([]models.Subject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Subject(nil), m.subjects...), nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	for _, s := range m.subjects {
		if s.ID == id {
			subject := s
			return &subject, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	if id, ok := m.codes[code]; ok && id != excludeID {
		return true, nil
	}
	return false, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = "subject-generated"
	}
	m.subjects = append(m.subjects, *subject)
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	for i, s := range m.subjects {
		if s.ID == subject.ID {
			m.subjects[i] = *subject
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	for i, s := range m.subjects {
		if s.ID == id {
			m.subjects = append(m.subjects[:i], m.subjects[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockGradeRepo struct {
	grades     []models.GradeRecord
	lastFilter models.GradeFilter
	err        error
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.GradeRecord(nil), m.grades...), nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.GradeRecord, error) {
	for _, g := range m.grades {
		if g.ID == id {
			grade := g
			return &grade, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.GradeRecord) error {
	if grade.ID == "" {
		grade.ID = "grade-generated"
	}
	m.grades = append(m.grades, *grade)
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.GradeRecord) error {
	for i, g := range m.grades {
		if g.ID == grade.ID {
			m.grades[i] = *grade
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	for i, g := range m.grades {
		if g.ID == id {
			m.grades = append(m.grades[:i], m.grades[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type recordingInvalidator struct {
	patterns []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, pattern string) error {
	r.patterns = append(r.patterns, pattern)
	return nil
}

// memoryCacheRepo is an in-process CacheRepository keyed by string.
type memoryCacheRepo struct {
	mu     sync.Mutex
	values map[string]interface{}
	setErr error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string]interface{}{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if snapshot, ok := value.(models.Snapshot); ok {
		if target, ok := dest.(*models.Snapshot); ok {
			*target = snapshot
			return nil
		}
	}
	return appErrors.ErrCacheMiss
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.values {
		delete(m.values, key)
	}
	return nil
}
