package dataset

import (
	"bookbridge/domain/activity"
)

// excludedOnRepeat lists the columns zeroed for previously served rows:
// every per-subject count plus the distributed book count
var excludedOnRepeat = append([]string{activity.FieldBooksDistributed}, activity.ChildCountFields...)

// applyExclusion runs the double-counting pass. For every row the current
// values of the excluded columns are preserved under the "_all" set, then
// the live values are zeroed where the row's subjects were already counted
// this fiscal year. Headline totals read the live set; trend calculations
// that need full historical volume read the "_all" set.
//
// The pass is idempotent: a column already present in the "_all" set is
// never re-copied, so running it twice cannot capture already-zeroed values.
func applyExclusion(rows []Row) {
	for i := range rows {
		row := &rows[i]
		for _, col := range excludedOnRepeat {
			value, ok := row.Counts[col]
			if !ok {
				continue
			}
			if _, copied := row.CountsAll[col]; !copied {
				row.CountsAll[col] = value
			}
			if row.PreviouslyServed {
				row.Counts[col] = 0
			}
		}
	}
}
