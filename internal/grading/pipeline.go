package grading

import "github.com/noah-isme/sma-gradebook-api/internal/models"

// ComputedGrade is a joined record with its final score and classification.
type ComputedGrade struct {
	Record      models.GradeRecord `json:"record"`
	Scores      Components         `json:"scores"`
	FinalScore  float64            `json:"final_score"`
	Passed      bool               `json:"passed"`
	Band        Band               `json:"band"`
	StudentName string             `json:"student_name"`
	SubjectCode string             `json:"subject_code"`
	SubjectName string             `json:"subject_name"`
}

// Evaluation is the live-table view of a snapshot: filtered rows plus stats.
type Evaluation struct {
	Rows  []ComputedGrade `json:"rows"`
	Stats CohortStats     `json:"stats"`
}

// Compute joins and scores a single record.
func Compute(record models.GradeRecord, joiner *Joiner) ComputedGrade {
	scores := ResolveScores(record)
	final := Weighted(scores)
	joined := joiner.Join(record)
	return ComputedGrade{
		Record:      record,
		Scores:      scores,
		FinalScore:  final,
		Passed:      Passed(final),
		Band:        Classify(final),
		StudentName: joined.StudentName,
		SubjectCode: joined.SubjectCode,
		SubjectName: joined.SubjectName,
	}
}

// ComputeAll scores every grade of the snapshot in stored order.
func ComputeAll(snapshot models.Snapshot) []ComputedGrade {
	joiner := NewJoiner(snapshot.Students, snapshot.Subjects)
	rows := make([]ComputedGrade, 0, len(snapshot.Grades))
	for _, record := range snapshot.Grades {
		rows = append(rows, Compute(record, joiner))
	}
	return rows
}

// Evaluate runs join, scoring, search and aggregation over a snapshot.
func Evaluate(snapshot models.Snapshot, query string) Evaluation {
	rows := Filter(ComputeAll(snapshot), query)
	return Evaluation{Rows: rows, Stats: Aggregate(rows)}
}

// BuildReport evaluates a snapshot and assembles the printable report from
// the same rows the live table shows.
func BuildReport(snapshot models.Snapshot, query string, opts AssembleOptions) Report {
	evaluation := Evaluate(snapshot, query)
	return Assemble(evaluation.Rows, evaluation.Stats, opts)
}
