package dataset

import (
	"bookbridge/domain/activity"
)

// presentColumns returns the numeric columns present anywhere in the row set
func presentColumns(rows []Row) map[string]bool {
	present := make(map[string]bool)
	for i := range rows {
		for name := range rows[i].Counts {
			present[name] = true
		}
	}
	return present
}

// cohortColumns filters each cohort's candidate source columns down to the
// ones the row set actually carries. A cohort with no backing column present
// is skipped entirely for this dataset.
func cohortColumns(present map[string]bool) map[string][]string {
	sources := make(map[string][]string, len(activity.CohortSources))
	for metric, candidates := range activity.CohortSources {
		var existing []string
		for _, col := range candidates {
			if present[col] {
				existing = append(existing, col)
			}
		}
		if len(existing) > 0 {
			sources[metric] = existing
		}
	}
	return sources
}

// sumColumns totals the given columns on one row. Alternate source columns
// that both carry data are added together.
func sumColumns(row *Row, cols []string) float64 {
	var total float64
	for _, col := range cols {
		total += row.Counts[col]
	}
	return total
}

// addDerivedMetrics computes the per-row books-per-child metrics after the
// exclusion pass, so both books and children exclude previously served rows.
// The denominator is the sum of whichever cohort source columns the dataset
// carries, tolerant of the legacy/current column drift. A zero denominator
// yields 0, never NaN.
func addDerivedMetrics(rows []Row) {
	present := presentColumns(rows)
	if !present[activity.FieldBooksDistributed] {
		return
	}
	sources := cohortColumns(present)

	allSourceCols := make([]string, 0)
	seen := make(map[string]bool)
	for _, cols := range sources {
		for _, col := range cols {
			if !seen[col] {
				seen[col] = true
				allSourceCols = append(allSourceCols, col)
			}
		}
	}
	if len(allSourceCols) == 0 {
		return
	}

	for i := range rows {
		row := &rows[i]
		books := row.Counts[activity.FieldBooksDistributed]
		totalChildren := sumColumns(row, allSourceCols)

		for metric, cols := range sources {
			// A row with no children in this cohort gets 0: its
			// denominator contribution is also 0 when aggregated
			if totalChildren > 0 && sumColumns(row, cols) > 0 {
				row.Counts[metric] = books / totalChildren
			} else {
				row.Counts[metric] = 0
			}
		}
		row.Counts[activity.MetricAvgBooksPerChild] = safeDivide(books, totalChildren)
	}
}
