// Package activity defines the record schema for program-activity data:
// the field names the external record store uses, the age-cohort column
// groupings that tolerate schema drift, and the registry of which metrics
// aggregate by summation versus weighted-ratio recomputation.
package activity

// Canonical field names after normalization
const (
	FieldRecordID          = "record_id"
	FieldBooksDistributed  = "books_distributed"
	FieldTotalChildren     = "total_children"
	FieldMinutesOfActivity = "minutes_of_activity"

	// FieldOrigin marks a raw record's provenance before normalization
	FieldOrigin = "_origin"

	// AllSuffix names the parallel column set preserved before
	// double-counting exclusion zeroes the live columns
	AllSuffix = "_all"
)

// Origin tags a record's source schema
type Origin string

const (
	OriginCurrent Origin = "current"
	OriginLegacy  Origin = "legacy"
)

// DateFields are the candidate date-bearing fields, first-present-wins
var DateFields = []string{
	"date_of_activity",
	"date",
	"created",
	"last_modified",
}

// PreviouslyServedFields are the candidate flag fields marking subjects
// already tallied earlier in the current fiscal year
var PreviouslyServedFields = []string{
	"previously_served_this_fy",
	"previously_served",
}

// ChildCountFields are the per-subject count columns zeroed for
// previously served rows to avoid double counting
var ChildCountFields = []string{
	FieldTotalChildren,
	"children_0_35_months",
	"children_0_3_years",
	"children_3_5_years",
	"children_3_4_years",
	"children_6_8_years",
	"children_5_12_years",
	"children_9_12_years",
	"teens",
	"parents_or_caregivers",
}

// NumericFields are all columns coerced to numbers at ingestion.
// Legacy data may carry these as strings.
var NumericFields = append([]string{
	FieldBooksDistributed,
	FieldMinutesOfActivity,
	"percentage_low_income",
}, ChildCountFields...)

// Derived ratio metric names
const (
	MetricAvgBooksPerChild   = "avg_books_per_child"
	MetricBooksPerChild02    = "books_per_child_0_2"
	MetricBooksPerChild35    = "books_per_child_3_5"
	MetricBooksPerChild68    = "books_per_child_6_8"
	MetricBooksPerChild912   = "books_per_child_9_12"
	MetricBooksPerChildTeens = "books_per_child_teens"
)

// CohortSources maps each per-cohort ratio metric to its possible source
// columns. Multiple source columns cover schema drift between the legacy
// and current record layouts; when both carry data they are summed.
var CohortSources = map[string][]string{
	MetricBooksPerChild02:    {"children_0_35_months", "children_0_3_years"},
	MetricBooksPerChild35:    {"children_3_5_years", "children_3_4_years"},
	MetricBooksPerChild68:    {"children_6_8_years", "children_5_12_years"},
	MetricBooksPerChild912:   {"children_9_12_years"},
	MetricBooksPerChildTeens: {"teens"},
}

// RatioMetrics are recomputed from summed numerator/denominator at every
// aggregation granularity, never summed or averaged row-wise
var RatioMetrics = map[string]bool{
	MetricAvgBooksPerChild:   true,
	MetricBooksPerChild02:    true,
	MetricBooksPerChild35:    true,
	MetricBooksPerChild68:    true,
	MetricBooksPerChild912:   true,
	MetricBooksPerChildTeens: true,
}

// IsRatioMetric reports whether a metric requires weighted recomputation
func IsRatioMetric(name string) bool {
	return RatioMetrics[name]
}

// LegacyFieldRenames maps legacy schema field names onto their current
// equivalents
var LegacyFieldRenames = map[string]string{
	"average_engagement_duration": FieldMinutesOfActivity,
	"date":                        "date_of_activity",
}

// LegacyPassthroughFields are unchanged between the legacy and current
// schemas and copied as-is during adaptation
var LegacyPassthroughFields = []string{
	"children_0_3_years",
	"children_3_4_years",
	"children_5_12_years",
	"children_9_12_years",
	"teens",
	"parents_or_caregivers",
	FieldBooksDistributed,
	FieldTotalChildren,
	"previously_served_this_fy",
	"percentage_low_income",
}
