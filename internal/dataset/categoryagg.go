package dataset

import (
	"sort"
	"time"

	"bookbridge/domain/activity"
)

// CategoryRow is one category bucket with summed metric values and the
// number of activity rows that fell into it
type CategoryRow struct {
	Category      string             `json:"category"`
	Values        map[string]float64 `json:"values"`
	ActivityCount int                `json:"activity_count"`
}

// AggregateByCategory groups rows by the distinct values of a categorical
// column and computes the requested metrics per group plus a row count.
// Rows with a missing/empty category value are excluded from grouping; an
// absent column yields an empty result. Ratio metrics are recomputed per
// group from live numerator/denominator sums rather than summed. A nil
// metric list aggregates every numeric column. Groups are returned sorted by
// category value for stable output.
func (d *Dataset) AggregateByCategory(column string, metrics []string) []CategoryRow {
	if metrics == nil {
		metrics = d.NumericColumns()
	}

	groups := make(map[string][]*Row)
	for i := range d.rows {
		row := &d.rows[i]
		value, ok := row.Categories[column]
		if !ok || value == "" {
			continue
		}
		groups[value] = append(groups[value], row)
	}
	if len(groups) == 0 {
		return nil
	}

	result := make([]CategoryRow, 0, len(groups))
	for value, rows := range groups {
		out := CategoryRow{
			Category:      value,
			Values:        make(map[string]float64),
			ActivityCount: len(rows),
		}
		for _, m := range metrics {
			if !d.HasColumn(m) {
				continue
			}
			if activity.IsRatioMetric(m) {
				out.Values[m] = round2(d.groupRatio(rows))
				continue
			}
			var sum float64
			for _, r := range rows {
				if v, present := r.Metric(m); present {
					sum += v
				}
			}
			out.Values[m] = sum
		}
		result = append(result, out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result
}

// groupRatio recomputes books-per-child over a group from live sums
func (d *Dataset) groupRatio(rows []*Row) float64 {
	col, fallback := d.denominatorSpec(false)
	var books, children float64
	for _, r := range rows {
		books += r.Counts[activity.FieldBooksDistributed]
		children += rowDenominator(r, col, fallback, false)
	}
	return safeDivide(books, children)
}

// ComparisonRow reports one metric across two periods
type ComparisonRow struct {
	Metric        string  `json:"metric"`
	Period1       float64 `json:"period_1"`
	Period2       float64 `json:"period_2"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
}

// ComparePeriods filters the dataset to two date ranges independently and
// totals each requested metric per period: additive metrics by summation,
// ratio metrics by the same weighted recomputation rule the time aggregator
// uses, applied to the whole period. Percent change is 0 when the first
// period's value is 0; division by zero never raises.
func (d *Dataset) ComparePeriods(p1Start, p1End, p2Start, p2End time.Time, metrics []string) []ComparisonRow {
	if metrics == nil {
		metrics = d.NumericColumns()
	}
	p1 := d.FilterByDateRange(p1Start, p1End)
	p2 := d.FilterByDateRange(p2Start, p2End)

	result := make([]ComparisonRow, 0, len(metrics))
	for _, m := range metrics {
		val1 := periodTotal(p1, m)
		val2 := periodTotal(p2, m)
		change := val2 - val1
		var pct float64
		if val1 != 0 {
			pct = change / val1 * 100
		}
		result = append(result, ComparisonRow{
			Metric:        m,
			Period1:       val1,
			Period2:       val2,
			Change:        change,
			PercentChange: round2(pct),
		})
	}
	return result
}

// periodTotal computes a metric's whole-period value: weighted ratio from
// live sums for ratio metrics, plain sum otherwise
func periodTotal(d *Dataset, metric string) float64 {
	if activity.IsRatioMetric(metric) {
		return d.weightedRatio(d.rows)
	}
	if !d.HasColumn(metric) {
		return 0
	}
	return d.sumColumn(metric)
}
