package activity

import "strings"

// fieldLabels maps field ids to display names for the dashboard and
// Excel report layers
var fieldLabels = map[string]string{
	FieldBooksDistributed:    "Books Distributed",
	FieldTotalChildren:       "Total Children",
	"children_0_35_months":   "Children 0-35 Months",
	"children_0_3_years":     "Children 0-3 Years",
	"children_3_5_years":     "Children 3-5 Years",
	"children_3_4_years":     "Children 3-5 Years",
	"children_6_8_years":     "Children 6-8 Years",
	"children_5_12_years":    "Children 6-8 Years",
	"children_9_12_years":    "Children 9-12 Years",
	"teens":                  "Teens",
	"parents_or_caregivers":  "Parents/Caregivers",
	FieldMinutesOfActivity:   "Minutes of Activity",
	"percentage_low_income":  "Percentage Low Income",
	MetricAvgBooksPerChild:   "Avg Books per Child",
	MetricBooksPerChild02:    "Books/Child (0-2 yrs)",
	MetricBooksPerChild35:    "Books/Child (3-5 yrs)",
	MetricBooksPerChild68:    "Books/Child (6-8 yrs)",
	MetricBooksPerChild912:   "Books/Child (9-12 yrs)",
	MetricBooksPerChildTeens: "Books/Child (Teens)",
}

// Label returns a display name for a field id, falling back to a
// title-cased version of the id itself
func Label(fieldID string) string {
	if label, ok := fieldLabels[fieldID]; ok {
		return label
	}
	words := strings.Split(strings.ReplaceAll(fieldID, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
