package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"bookbridge/domain/activity"
)

// TimeUnit selects the granularity of time-bucketed aggregation
type TimeUnit string

const (
	UnitDay        TimeUnit = "day"
	UnitWeek       TimeUnit = "week"
	UnitMonth      TimeUnit = "month"
	UnitQuarter    TimeUnit = "quarter"
	UnitYear       TimeUnit = "year"
	UnitFiscalYear TimeUnit = "fiscal_year"
)

// ParseTimeUnit validates a time unit string, defaulting to month
func ParseTimeUnit(s string) TimeUnit {
	switch TimeUnit(s) {
	case UnitDay, UnitWeek, UnitMonth, UnitQuarter, UnitYear, UnitFiscalYear:
		return TimeUnit(s)
	default:
		return UnitMonth
	}
}

// The fiscal year begins July 1 and is named for the calendar year it ends in
const fiscalYearStartMonth = time.July

// FiscalYear returns the fiscal year a date belongs to
func FiscalYear(t time.Time) int {
	if t.Month() >= fiscalYearStartMonth {
		return t.Year() + 1
	}
	return t.Year()
}

// FiscalYearStart returns the first day of a fiscal year
func FiscalYearStart(fy int) time.Time {
	return time.Date(fy-1, fiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// periodKey derives the bucket label and sortable start time for a date
func periodKey(t time.Time, unit TimeUnit) (string, time.Time) {
	switch unit {
	case UnitWeek:
		// ISO week start (Monday)
		offset := (int(t.Weekday()) + 6) % 7
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
		return start.Format("2006-01-02"), start
	case UnitMonth:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01"), start
	case UnitQuarter:
		quarter := (int(t.Month())-1)/3 + 1
		start := time.Date(t.Year(), time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter), start
	case UnitYear:
		start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%d", t.Year()), start
	case UnitFiscalYear:
		fy := FiscalYear(t)
		return fmt.Sprintf("FY%d", fy), FiscalYearStart(fy)
	default: // UnitDay
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.Format("2006-01-02"), day
	}
}

// PeriodRow is one time bucket with its computed metric values
type PeriodRow struct {
	Period string             `json:"period"`
	Values map[string]float64 `json:"values"`
}

type timeBucket struct {
	start  time.Time
	rows   []*Row
	values map[string]float64
}

// AggregateByTime groups rows into buckets of the given unit and computes the
// requested metrics per bucket. Additive metrics are summed. Ratio metrics are
// recomputed per bucket from the preserved "_all" numerator/denominator sums,
// so a bucket's value equals total books in the bucket divided by total
// children in the bucket rather than a mean of per-row ratios, which would
// overweight small events. Rows without a resolved date are skipped. A nil
// metric list aggregates every numeric column. Buckets come back sorted
// ascending with ratio values rounded to 2 decimal places.
func (d *Dataset) AggregateByTime(unit TimeUnit, metrics []string) []PeriodRow {
	if metrics == nil {
		metrics = d.NumericColumns()
	}

	var ratioMetrics, additiveMetrics []string
	for _, m := range metrics {
		if !d.HasColumn(m) {
			continue
		}
		if activity.IsRatioMetric(m) {
			ratioMetrics = append(ratioMetrics, m)
		} else {
			additiveMetrics = append(additiveMetrics, m)
		}
	}

	buckets := make(map[string]*timeBucket)
	for i := range d.rows {
		row := &d.rows[i]
		if !row.HasDate {
			continue
		}
		label, start := periodKey(row.Date, unit)
		b, ok := buckets[label]
		if !ok {
			b = &timeBucket{start: start, values: make(map[string]float64)}
			buckets[label] = b
		}
		b.rows = append(b.rows, row)
		for _, m := range additiveMetrics {
			if v, present := row.Metric(m); present {
				b.values[m] += v
			}
		}
	}

	if len(ratioMetrics) > 0 {
		d.computeBucketRatios(buckets, ratioMetrics)
	}

	result := make([]PeriodRow, 0, len(buckets))
	for label, b := range buckets {
		result = append(result, PeriodRow{Period: label, Values: b.values})
	}
	sort.Slice(result, func(i, j int) bool {
		return buckets[result[i].Period].start.Before(buckets[result[j].Period].start)
	})
	return result
}

// computeBucketRatios fills in ratio metric values per bucket using the
// weighted-recomputation rule. Numerator and denominator come from the "_all"
// columns when present so trend continuity includes previously served rows;
// per-cohort variants restrict the summed rows to those where the cohort's
// live source columns are nonzero.
func (d *Dataset) computeBucketRatios(buckets map[string]*timeBucket, metrics []string) {
	numCol := activity.FieldBooksDistributed + activity.AllSuffix
	if !d.HasColumn(numCol) {
		numCol = activity.FieldBooksDistributed
	}
	denCol, fallback := d.denominatorSpec(true)
	sources := cohortColumns(presentColumns(d.rows))

	for _, b := range buckets {
		for _, metric := range metrics {
			rows := b.rows
			if metric != activity.MetricAvgBooksPerChild {
				cols, ok := sources[metric]
				if !ok {
					b.values[metric] = 0
					continue
				}
				rows = filterRows(b.rows, func(r *Row) bool {
					return sumColumns(r, cols) > 0
				})
			}
			var num, den float64
			for _, r := range rows {
				if v, ok := r.Metric(numCol); ok {
					num += v
				}
				den += rowDenominator(r, denCol, fallback, true)
			}
			b.values[metric] = round2(safeDivide(num, den))
		}
	}
}

func filterRows(rows []*Row, keep func(*Row) bool) []*Row {
	var out []*Row
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
