package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookbridge/domain/activity"
)

// dateFormats the record store emits. Date values may carry a trailing
// timestamp after a "|" separator, stripped before parsing.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// normalizeRecords converts raw flat key-value records into uniform rows.
// Malformed individual values degrade to safe defaults (0, missing date,
// pass-through string); a record is dropped only when it has no usable
// fields at all.
func normalizeRecords(raw []map[string]any) []Row {
	numericFields := make(map[string]bool, len(activity.NumericFields))
	for _, f := range activity.NumericFields {
		numericFields[f] = true
	}
	flagFields := make(map[string]bool, len(activity.PreviouslyServedFields))
	for _, f := range activity.PreviouslyServedFields {
		flagFields[f] = true
	}
	dateFields := make(map[string]bool, len(activity.DateFields))
	for _, f := range activity.DateFields {
		dateFields[f] = true
	}

	rows := make([]Row, 0, len(raw))
	for _, rec := range raw {
		if len(rec) == 0 {
			continue
		}
		row := Row{
			Origin:     activity.OriginCurrent,
			Counts:     make(map[string]float64),
			CountsAll:  make(map[string]float64),
			Categories: make(map[string]string),
		}
		usable := 0
		for key, value := range rec {
			value = unwrapList(value)
			switch {
			case key == activity.FieldOrigin:
				if s, ok := value.(string); ok && activity.Origin(s) == activity.OriginLegacy {
					row.Origin = activity.OriginLegacy
				}
			case key == "id" || key == "_id" || key == activity.FieldRecordID:
				// "id" is renamed to record_id so it cannot collide
				// with other identifier semantics downstream
				row.RecordID = stringify(value)
				usable++
			case dateFields[key]:
				row.Categories[key] = stringify(value)
				usable++
			case numericFields[key]:
				row.Counts[key] = parseNumber(value)
				usable++
			case flagFields[key]:
				row.PreviouslyServed = row.PreviouslyServed || parseFlag(value)
				usable++
			default:
				row.Categories[key] = stringify(value)
				usable++
			}
		}
		if usable == 0 {
			continue
		}
		row.Date, row.HasDate = resolveDate(row.Categories)
		rows = append(rows, row)
	}
	return rows
}

// resolveDate picks the first present candidate date field and parses it.
// An unparseable value means a missing date, never an error; the row stays
// in the dataset but is skipped by time-bucketed views.
func resolveDate(categories map[string]string) (time.Time, bool) {
	for _, field := range activity.DateFields {
		raw, present := categories[field]
		if !present {
			continue
		}
		if t, ok := parseDate(raw); ok {
			return t, true
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}

// parseDate parses an ISO-like date string, tolerating a "|"-suffixed
// timestamp tail
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if idx := strings.Index(raw, "|"); idx >= 0 {
		raw = raw[:idx]
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// unwrapList unwraps single-element lists to their scalar; multi-element
// lists join into a comma-separated display string
func unwrapList(value any) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	default:
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ", ")
	}
}

// parseNumber coerces a value to a float, degrading to 0 on anything
// unparseable. Legacy records carry numeric fields as strings.
func parseNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return n
		}
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case nil:
		return 0
	default:
		return 0
	}
}

// parseFlag interprets the previously-served marker, which arrives as a
// boolean or as string variants of yes/true/1
func parseFlag(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "1":
			return true
		}
	case float64:
		return v == 1
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
