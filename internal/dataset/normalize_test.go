package dataset

import (
	"testing"
	"time"
)

func TestNormalizeRecords(t *testing.T) {
	t.Run("typed columns from mixed raw values", func(t *testing.T) {
		ds := New([]map[string]any{
			{
				"id":                "rec-1",
				"date_of_activity":  "2025-01-15|14:30",
				"books_distributed": "120",
				"total_children":    40.0,
				"program":           []any{"School Partnership"},
			},
		})
		if ds.Len() != 1 {
			t.Fatalf("expected 1 row, got %d", ds.Len())
		}
		row := ds.Rows()[0]
		if row.RecordID != "rec-1" {
			t.Errorf("expected id renamed to record_id, got %q", row.RecordID)
		}
		if !row.HasDate {
			t.Fatal("expected resolved date")
		}
		want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		if !row.Date.Equal(want) {
			t.Errorf("expected date %v (timestamp tail stripped), got %v", want, row.Date)
		}
		if row.Counts["books_distributed"] != 120 {
			t.Errorf("expected string-coerced books count 120, got %v", row.Counts["books_distributed"])
		}
		if row.Counts["total_children"] != 40 {
			t.Errorf("expected total_children 40, got %v", row.Counts["total_children"])
		}
		if row.Categories["program"] != "School Partnership" {
			t.Errorf("expected single-element list unwrapped, got %q", row.Categories["program"])
		}
	})

	t.Run("multi-element list joins for display", func(t *testing.T) {
		ds := New([]map[string]any{
			{"county": []any{"Travis", "Williamson"}},
		})
		if got := ds.Rows()[0].Categories["county"]; got != "Travis, Williamson" {
			t.Errorf("expected joined display string, got %q", got)
		}
	})

	t.Run("malformed values degrade to defaults", func(t *testing.T) {
		ds := New([]map[string]any{
			{
				"date_of_activity":  "not-a-date",
				"books_distributed": "plenty",
				"program":           "Outreach",
			},
		})
		row := ds.Rows()[0]
		if row.HasDate {
			t.Error("unparseable date should resolve to missing, not error")
		}
		if row.Counts["books_distributed"] != 0 {
			t.Errorf("unparseable numeric should be 0, got %v", row.Counts["books_distributed"])
		}
	})

	t.Run("first present date field wins", func(t *testing.T) {
		ds := New([]map[string]any{
			{"date": "2025-02-01", "created": "2025-03-01", "books_distributed": 1},
		})
		row := ds.Rows()[0]
		if !row.HasDate || row.Date.Month() != time.February {
			t.Errorf("expected date field to win over created, got %v", row.Date)
		}
	})

	t.Run("previously served flag variants", func(t *testing.T) {
		for _, raw := range []any{true, "true", "Yes", "1"} {
			ds := New([]map[string]any{
				{"previously_served_this_fy": raw, "books_distributed": 1},
			})
			if !ds.Rows()[0].PreviouslyServed {
				t.Errorf("expected %v to mark row previously served", raw)
			}
		}
		ds := New([]map[string]any{
			{"previously_served_this_fy": "no", "books_distributed": 1},
		})
		if ds.Rows()[0].PreviouslyServed {
			t.Error("expected 'no' to leave row untouched")
		}
	})

	t.Run("empty records dropped, empty input yields empty dataset", func(t *testing.T) {
		ds := New([]map[string]any{{}, nil})
		if ds.Len() != 0 {
			t.Errorf("expected records with zero usable fields dropped, got %d rows", ds.Len())
		}
		if got := New(nil).Len(); got != 0 {
			t.Errorf("expected empty dataset from nil input, got %d rows", got)
		}
	})

	t.Run("dateless rows stay out of time views but in category views", func(t *testing.T) {
		ds := New([]map[string]any{
			{"date_of_activity": "bogus", "books_distributed": 5, "program": "Clinic"},
			{"date_of_activity": "2025-01-10", "books_distributed": 3, "program": "Clinic"},
		})
		periods := ds.AggregateByTime(UnitMonth, []string{"books_distributed"})
		if len(periods) != 1 || periods[0].Values["books_distributed"] != 3 {
			t.Errorf("expected only the dated row in time buckets, got %+v", periods)
		}
		groups := ds.AggregateByCategory("program", []string{"books_distributed"})
		if len(groups) != 1 || groups[0].Values["books_distributed"] != 8 {
			t.Errorf("expected both rows in category view, got %+v", groups)
		}
	})
}
