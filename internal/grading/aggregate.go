package grading

// CohortStats summarises a filtered set of computed grades.
type CohortStats struct {
	TotalCount   int      `json:"total_count"`
	PassedCount  int      `json:"passed_count"`
	FailedCount  int      `json:"failed_count"`
	AverageScore string   `json:"average_score"`
	AverageValue float64  `json:"average_value"`
	PassRate     string   `json:"pass_rate"`
	PassedNames  []string `json:"passed_names"`
	FailedNames  []string `json:"failed_names"`
}

// Aggregate folds rows into cohort statistics in a single pass. Name lists
// keep input order and are not deduplicated.
func Aggregate(rows []ComputedGrade) CohortStats {
	stats := CohortStats{
		AverageScore: "0.00",
		PassRate:     "0.0",
		PassedNames:  []string{},
		FailedNames:  []string{},
	}
	var sum float64
	for _, row := range rows {
		sum += row.FinalScore
		if row.Passed {
			stats.PassedCount++
			stats.PassedNames = append(stats.PassedNames, row.StudentName)
		} else {
			stats.FailedCount++
			stats.FailedNames = append(stats.FailedNames, row.StudentName)
		}
	}
	stats.TotalCount = len(rows)
	if stats.TotalCount == 0 {
		return stats
	}
	stats.AverageValue = round(sum/float64(stats.TotalCount), 2)
	stats.AverageScore = formatFixed(stats.AverageValue, 2)
	stats.PassRate = formatFixed(float64(stats.PassedCount)/float64(stats.TotalCount)*100, 1)
	return stats
}
