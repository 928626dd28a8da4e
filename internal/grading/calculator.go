package grading

import "github.com/noah-isme/sma-gradebook-api/internal/models"

// Component weights; they sum to 1.
const (
	PrelimWeight    = 0.20
	MidtermWeight   = 0.20
	SemifinalWeight = 0.20
	FinalWeight     = 0.40
)

// PassingThreshold is the inclusive final score needed to pass.
const PassingThreshold = 75.0

// Status labels.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Band is the display treatment of a final score.
type Band string

const (
	BandExcellent Band = "EXCELLENT"
	BandVeryGood  Band = "VERY_GOOD"
	BandPassing   Band = "PASSING"
	BandFailing   Band = "FAILING"
)

// FinalScore computes the weighted final score of a record rounded to one decimal.
func FinalScore(record models.GradeRecord) float64 {
	return Weighted(ResolveScores(record))
}

// Weighted combines sanitized component scores.
func Weighted(c Components) float64 {
	sum := c.Prelim*PrelimWeight + c.Midterm*MidtermWeight + c.Semifinal*SemifinalWeight + c.Final*FinalWeight
	return round(sum, 1)
}

// Passed reports whether a final score meets the threshold.
func Passed(score float64) bool {
	return score >= PassingThreshold
}

// Status returns the PASS/FAIL label for a final score.
func Status(score float64) string {
	if Passed(score) {
		return StatusPass
	}
	return StatusFail
}

// Classify maps a final score to its badge band.
func Classify(score float64) Band {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 80:
		return BandVeryGood
	case score >= PassingThreshold:
		return BandPassing
	default:
		return BandFailing
	}
}
