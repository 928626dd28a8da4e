package grading

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// DefaultTitle heads a grades report when no title is given.
	DefaultTitle = "Grades Report"
	// Subtitle is printed under every grades report title.
	Subtitle = "Comprehensive Grades Report"
	// DisplayCap limits each student list in the printable report.
	DisplayCap = 10
	// Placeholder fills a component cell that has no value.
	Placeholder = "-"
	// ExcellenceThreshold is the cohort average that earns the excellence note.
	ExcellenceThreshold = 85.0

	footerBrand = "Grade Management System"
)

// DetailColumns are the headers of the report detail table.
var DetailColumns = []string{"Student", "Subject", "Prelim", "Midterm", "Semi-final", "Final", "Grade", "Status"}

// Report is a renderer-neutral grades report.
type Report struct {
	Header   ReportHeader `json:"header"`
	Stats    StatsBlock   `json:"stats"`
	Table    DetailTable  `json:"table"`
	Insights []string     `json:"insights"`
	Lists    StudentLists `json:"lists"`
}

// ReportHeader carries the document title block and footer.
type ReportHeader struct {
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	GeneratedAt time.Time `json:"generated_at"`
	Footer      string    `json:"footer"`
}

// StatTile is one headline number.
type StatTile struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// StatsBlock lists the headline numbers in display order.
type StatsBlock struct {
	Tiles    []StatTile `json:"tiles"`
	PassRate string     `json:"pass_rate"`
}

// DetailTable is the per-record breakdown.
type DetailTable struct {
	Columns []string    `json:"columns"`
	Rows    []DetailRow `json:"rows"`
}

// DetailRow holds the rendered cells of one record.
type DetailRow struct {
	Cells  []string `json:"cells"`
	Passed bool     `json:"passed"`
	Band   Band     `json:"band"`
}

// NameList is a capped list of student names.
type NameList struct {
	Title        string   `json:"title"`
	Total        int      `json:"total"`
	Names        []string `json:"names"`
	Remaining    int      `json:"remaining"`
	Continuation string   `json:"continuation,omitempty"`
}

// StudentLists splits students by outcome.
type StudentLists struct {
	Passed NameList `json:"passed"`
	Failed NameList `json:"failed"`
}

// AssembleOptions tunes the report header.
type AssembleOptions struct {
	Title       string
	GeneratedAt time.Time
}

// Assemble builds the report for already filtered rows and their stats.
func Assemble(rows []ComputedGrade, stats CohortStats, opts AssembleOptions) Report {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	return Report{
		Header: ReportHeader{
			Title:       title,
			Subtitle:    Subtitle,
			GeneratedAt: opts.GeneratedAt,
			Footer:      footer(opts.GeneratedAt),
		},
		Stats:    statsBlock(stats),
		Table:    Detail(rows),
		Insights: Insights(stats),
		Lists: StudentLists{
			Passed: capNames("PASSED STUDENTS", stats.PassedNames),
			Failed: capNames("NEEDS ATTENTION", stats.FailedNames),
		},
	}
}

// Insights derives the narrative lines from cohort stats.
func Insights(stats CohortStats) []string {
	verdict := "NEEDS IMPROVEMENT"
	if stats.AverageValue >= PassingThreshold {
		verdict = "GOOD"
	}
	noun := "students"
	if stats.FailedCount == 1 {
		noun = "student"
	}
	threshold := strconv.FormatFloat(PassingThreshold, 'f', -1, 64)
	insights := []string{
		fmt.Sprintf("Overall Performance: %s (Average: %s)", verdict, stats.AverageScore),
		fmt.Sprintf("Pass Rate: %s%% of students met the passing requirement (≥%s)", stats.PassRate, threshold),
		fmt.Sprintf("Students Needing Attention: %d %s below passing grade", stats.FailedCount, noun),
	}
	if stats.FailedCount > 0 {
		insights = append(insights, "Recommendation: Implement additional support programs and tutoring sessions for struggling students")
	}
	if stats.AverageValue >= ExcellenceThreshold {
		insights = append(insights, "Excellence: Class performance exceeds expectations! Keep up the great work!")
	}
	return insights
}

func statsBlock(stats CohortStats) StatsBlock {
	return StatsBlock{
		Tiles: []StatTile{
			{Label: "Total Students", Value: strconv.Itoa(stats.TotalCount)},
			{Label: "Average Grade", Value: stats.AverageScore},
			{Label: "Passed", Value: strconv.Itoa(stats.PassedCount)},
			{Label: "Failed", Value: strconv.Itoa(stats.FailedCount)},
		},
		PassRate: stats.PassRate,
	}
}

// Detail renders computed rows as the report's detail table. The CLI table
// prints the same cells.
func Detail(rows []ComputedGrade) DetailTable {
	table := DetailTable{Columns: append([]string(nil), DetailColumns...), Rows: make([]DetailRow, 0, len(rows))}
	for _, row := range rows {
		table.Rows = append(table.Rows, DetailRow{
			Cells: []string{
				row.StudentName,
				row.SubjectCode,
				ScoreCell(row.Record.Prelim),
				ScoreCell(row.Record.Midterm),
				ScoreCell(row.Record.Semifinal),
				ScoreCell(row.Record.Final),
				FormatScore(row.FinalScore),
				Status(row.FinalScore),
			},
			Passed: row.Passed,
			Band:   row.Band,
		})
	}
	return table
}

func capNames(title string, names []string) NameList {
	list := NameList{Title: title, Total: len(names)}
	if len(names) <= DisplayCap {
		list.Names = append([]string{}, names...)
		return list
	}
	list.Names = append([]string{}, names[:DisplayCap]...)
	list.Remaining = len(names) - DisplayCap
	list.Continuation = fmt.Sprintf("... and %d more", list.Remaining)
	return list
}

func footer(generatedAt time.Time) string {
	if generatedAt.IsZero() {
		return footerBrand
	}
	return fmt.Sprintf("Generated on %s | %s", generatedAt.Format("2006-01-02"), footerBrand)
}
