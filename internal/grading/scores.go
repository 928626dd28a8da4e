package grading

import (
	"strconv"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// Components holds the four sanitized component scores of a record.
type Components struct {
	Prelim    float64 `json:"prelim"`
	Midterm   float64 `json:"midterm"`
	Semifinal float64 `json:"semifinal"`
	Final     float64 `json:"final"`
}

// ResolveScores extracts the component scores of a record. Absent, empty or
// non-numeric entries count as 0.
func ResolveScores(record models.GradeRecord) Components {
	return Components{
		Prelim:    resolve(record.Prelim),
		Midterm:   resolve(record.Midterm),
		Semifinal: resolve(record.Semifinal),
		Final:     resolve(record.Final),
	}
}

func resolve(score models.Score) float64 {
	v, ok := score.Float()
	if !ok {
		return 0
	}
	return v
}

// ScoreCell renders a component for display, "-" when it has no usable value.
func ScoreCell(score models.Score) string {
	v, ok := score.Float()
	if !ok {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
