package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Score is one optional component score as it was stored. The raw value is
// kept verbatim so callers can distinguish an absent entry from a zero.
type Score struct {
	Raw   string
	Valid bool
}

// NewScore builds a present score from a number.
func NewScore(v float64) Score {
	return Score{Raw: strconv.FormatFloat(v, 'f', -1, 64), Valid: true}
}

// ParseScore wraps a raw form value; an empty string stays blank.
func ParseScore(raw string) Score {
	return Score{Raw: raw, Valid: true}
}

// IsBlank reports whether the score is absent or empty.
func (s Score) IsBlank() bool {
	return !s.Valid || strings.TrimSpace(s.Raw) == ""
}

// Float parses the score. ok is false when the score is blank or not a finite number.
func (s Score) Float() (value float64, ok bool) {
	if s.IsBlank() {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s.Raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Value stores blank scores as NULL.
func (s Score) Value() (driver.Value, error) {
	if s.IsBlank() {
		return nil, nil
	}
	return strings.TrimSpace(s.Raw), nil
}

// Scan accepts NULL, text and numeric columns.
func (s *Score) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = Score{}
	case []byte:
		*s = Score{Raw: string(v), Valid: true}
	case string:
		*s = Score{Raw: v, Valid: true}
	case float64:
		*s = NewScore(v)
	case int64:
		*s = Score{Raw: strconv.FormatInt(v, 10), Valid: true}
	default:
		return fmt.Errorf("unsupported type %T for Score", value)
	}
	return nil
}

// MarshalJSON emits null for blank scores, a number when numeric and the raw text otherwise.
func (s Score) MarshalJSON() ([]byte, error) {
	if s.IsBlank() {
		return []byte("null"), nil
	}
	if v, ok := s.Float(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(s.Raw)
}

// UnmarshalJSON accepts null, numbers and strings.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode score: %w", err)
		}
		*s = ParseScore(raw)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode score: %w", err)
	}
	*s = Score{Raw: n.String(), Valid: true}
	return nil
}

// GradeRecord is one student's component scores for a subject.
type GradeRecord struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Prelim    Score     `db:"prelim" json:"prelim"`
	Midterm   Score     `db:"midterm" json:"midterm"`
	Semifinal Score     `db:"semifinal" json:"semifinal"`
	Final     Score     `db:"final" json:"final"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter scopes grade listings.
type GradeFilter struct {
	StudentID string
	SubjectID string
}
