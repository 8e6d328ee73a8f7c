// Package ports defines the boundary interfaces the application core depends
// on. Adapters implement them against concrete infrastructure.
package ports

import (
	"context"

	"bookbridge/domain/activity"
)

// RecordSource fetches raw program-activity records from the record store
type RecordSource interface {
	// FetchAll retrieves every record in an app, paging until exhausted
	FetchAll(ctx context.Context, appID string) ([]map[string]any, error)

	// CountActiveEnrollments returns the number of currently enrolled
	// participants in an enrollment app
	CountActiveEnrollments(ctx context.Context, appID string) (int, error)
}

// SnapshotStore persists point-in-time copies of fetched record sets
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *activity.Snapshot) error
	Latest(ctx context.Context, source string) (*activity.Snapshot, error)
}
