package dataset

import (
	"time"

	"bookbridge/domain/activity"
)

// AdaptLegacyRecord maps a raw legacy-schema record onto current-schema
// field names: a fixed rename set, a fixed passthrough allow-list, and the
// same single-element list unwrapping the normalizer applies. The result is
// tagged legacy-origin.
func AdaptLegacyRecord(rec map[string]any) map[string]any {
	adapted := make(map[string]any, len(rec))

	for _, field := range activity.LegacyPassthroughFields {
		if value, ok := rec[field]; ok {
			adapted[field] = unwrapList(value)
		}
	}

	for legacyField, currentField := range activity.LegacyFieldRenames {
		if value, ok := rec[legacyField]; ok {
			adapted[currentField] = unwrapList(value)
		}
	}

	if id, ok := rec["_id"]; ok {
		adapted["_id"] = id
	}
	if id, ok := rec["id"]; ok {
		adapted["id"] = id
	}

	adapted[activity.FieldOrigin] = string(activity.OriginLegacy)
	return adapted
}

// Combine merges current-schema records with adapted legacy records. Only
// legacy records dated strictly before the cutoff are included; the current
// schema covers everything from the cutoff on, so later legacy rows would
// double-cover the same real-world period. A legacy record whose date cannot
// be parsed is dropped; the rest of the merge proceeds.
func Combine(current, legacy []map[string]any, cutoff time.Time) []map[string]any {
	combined := make([]map[string]any, 0, len(current)+len(legacy))
	combined = append(combined, current...)

	for _, rec := range legacy {
		adapted := AdaptLegacyRecord(rec)
		raw, ok := adapted["date_of_activity"].(string)
		if !ok {
			continue
		}
		recordDate, ok := parseDate(raw)
		if !ok {
			continue
		}
		if recordDate.Before(cutoff) {
			combined = append(combined, adapted)
		}
	}
	return combined
}
