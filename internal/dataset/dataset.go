// Package dataset is the aggregation core: it normalizes heterogeneous raw
// records into a uniform tabular model, reconciles the legacy schema with the
// current one, excludes double-counted subjects while preserving the full
// picture in a parallel column set, derives books-per-child ratio metrics,
// and aggregates everything across time units and categorical dimensions.
//
// A Dataset is immutable after its construction pass. Date-range filters
// return independent deep copies, so concurrent read-only use of multiple
// filtered views is safe without locking.
package dataset

import (
	"sort"
	"strings"
	"time"

	"bookbridge/domain/activity"
)

// Row is one normalized activity record.
//
// Counts holds the live numeric columns used for headline totals; CountsAll
// holds the pre-exclusion values of the columns zeroed for previously served
// rows. Keeping the two sets as separate maps (rather than a mutable field
// with an "original value" side-channel) makes the exclusion pass idempotent.
type Row struct {
	RecordID         string
	Date             time.Time
	HasDate          bool
	Origin           activity.Origin
	PreviouslyServed bool
	Counts           map[string]float64
	CountsAll        map[string]float64
	Categories       map[string]string
}

// Metric resolves a numeric value on the row by column name. Names with the
// "_all" suffix read from the preserved pre-exclusion set.
func (r *Row) Metric(name string) (float64, bool) {
	if base, ok := strings.CutSuffix(name, activity.AllSuffix); ok {
		v, present := r.CountsAll[base]
		return v, present
	}
	v, present := r.Counts[name]
	return v, present
}

// Dataset is an immutable ordered collection of normalized rows
type Dataset struct {
	rows []Row
}

// New builds a Dataset from raw key-value records: normalization, the
// double-counting exclusion pass, and derived ratio metrics run once here;
// every later operation is a pure read.
func New(raw []map[string]any) *Dataset {
	rows := normalizeRecords(raw)
	applyExclusion(rows)
	addDerivedMetrics(rows)
	return &Dataset{rows: rows}
}

// fromRows wraps already-processed rows (used by filters)
func fromRows(rows []Row) *Dataset {
	return &Dataset{rows: rows}
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Rows exposes the underlying rows for read-only iteration
func (d *Dataset) Rows() []Row {
	return d.rows
}

// FilterByDateRange returns an independent snapshot containing the rows whose
// resolved date falls within [start, end] inclusive. Rows without a resolved
// date are excluded. The copy shares nothing with the original.
func (d *Dataset) FilterByDateRange(start, end time.Time) *Dataset {
	var rows []Row
	for i := range d.rows {
		r := &d.rows[i]
		if !r.HasDate {
			continue
		}
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		rows = append(rows, copyRow(r))
	}
	return fromRows(rows)
}

func copyRow(r *Row) Row {
	cp := *r
	cp.Counts = make(map[string]float64, len(r.Counts))
	for k, v := range r.Counts {
		cp.Counts[k] = v
	}
	cp.CountsAll = make(map[string]float64, len(r.CountsAll))
	for k, v := range r.CountsAll {
		cp.CountsAll[k] = v
	}
	cp.Categories = make(map[string]string, len(r.Categories))
	for k, v := range r.Categories {
		cp.Categories[k] = v
	}
	return cp
}

// HasColumn reports whether any row carries the named numeric column
func (d *Dataset) HasColumn(name string) bool {
	for i := range d.rows {
		if _, ok := d.rows[i].Metric(name); ok {
			return true
		}
	}
	return false
}

// NumericColumns returns every numeric column present in the dataset,
// including the preserved "_all" columns, sorted for stable output
func (d *Dataset) NumericColumns() []string {
	seen := make(map[string]bool)
	for i := range d.rows {
		for name := range d.rows[i].Counts {
			seen[name] = true
		}
		for name := range d.rows[i].CountsAll {
			seen[name+activity.AllSuffix] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for name := range seen {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// sumColumn totals a numeric column over all rows
func (d *Dataset) sumColumn(name string) float64 {
	var total float64
	for i := range d.rows {
		if v, ok := d.rows[i].Metric(name); ok {
			total += v
		}
	}
	return total
}

// Summary holds dataset-level statistics for the hero header and report cover
type Summary struct {
	TotalRecords int                `json:"total_records"`
	Totals       map[string]float64 `json:"totals"`
	DateStart    time.Time          `json:"date_range_start"`
	DateEnd      time.Time          `json:"date_range_end"`
	HasDates     bool               `json:"has_dates"`
}

// SummaryStats computes record count, per-metric totals, and the covered date
// range. Ratio metric totals are recomputed from summed numerator/denominator
// over the whole set, never summed row-wise. An empty dataset yields an empty
// summary, not an error.
func (d *Dataset) SummaryStats() Summary {
	s := Summary{
		TotalRecords: len(d.rows),
		Totals:       make(map[string]float64),
	}
	for _, col := range d.NumericColumns() {
		if activity.IsRatioMetric(col) {
			s.Totals[col] = d.weightedRatio(d.rows)
			continue
		}
		s.Totals[col] = d.sumColumn(col)
	}
	for i := range d.rows {
		r := &d.rows[i]
		if !r.HasDate {
			continue
		}
		if !s.HasDates || r.Date.Before(s.DateStart) {
			s.DateStart = r.Date
		}
		if !s.HasDates || r.Date.After(s.DateEnd) {
			s.DateEnd = r.Date
		}
		s.HasDates = true
	}
	return s
}

// denominatorSpec resolves where the subjects denominator for ratio
// recomputation comes from: the explicit total_children column when the
// dataset carries it (the "_all" variant when all is set and present),
// otherwise the sum of whichever cohort source columns are present.
func (d *Dataset) denominatorSpec(all bool) (col string, fallback []string) {
	total := activity.FieldTotalChildren
	if all && d.HasColumn(total+activity.AllSuffix) {
		return total + activity.AllSuffix, nil
	}
	if d.HasColumn(total) {
		return total, nil
	}
	present := presentColumns(d.rows)
	seen := make(map[string]bool)
	for _, candidates := range activity.CohortSources {
		for _, c := range candidates {
			if present[c] && !seen[c] {
				seen[c] = true
				fallback = append(fallback, c)
			}
		}
	}
	sort.Strings(fallback)
	return "", fallback
}

// rowDenominator evaluates a denominator spec on one row
func rowDenominator(r *Row, col string, fallback []string, all bool) float64 {
	if col != "" {
		v, _ := r.Metric(col)
		return v
	}
	var sum float64
	for _, c := range fallback {
		if all {
			if v, ok := r.Metric(c + activity.AllSuffix); ok {
				sum += v
				continue
			}
		}
		sum += r.Counts[c]
	}
	return sum
}

// weightedRatio recomputes books-per-child over a row subset from live sums:
// total books / total children, 0 when the denominator is 0
func (d *Dataset) weightedRatio(rows []Row) float64 {
	col, fallback := d.denominatorSpec(false)
	var books, children float64
	for i := range rows {
		books += rows[i].Counts[activity.FieldBooksDistributed]
		children += rowDenominator(&rows[i], col, fallback, false)
	}
	return safeDivide(books, children)
}

// safeDivide resolves division by zero to 0, never NaN or Inf
func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
