package activity

import (
	"time"

	"bookbridge/domain/core"
)

// Snapshot captures a fetched raw record set so reports can run offline
// from the last successful fetch
type Snapshot struct {
	ID      core.SnapshotID  `json:"id"`
	Source  string           `json:"source"` // e.g. "activity", "legacy"
	TakenAt time.Time        `json:"taken_at"`
	Records []map[string]any `json:"records"`
}

// NewSnapshot creates a snapshot of a fetched record set
func NewSnapshot(source string, records []map[string]any) *Snapshot {
	return &Snapshot{
		ID:      core.SnapshotID(core.NewID()),
		Source:  source,
		TakenAt: time.Now(),
		Records: records,
	}
}
