package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bookbridge/domain/activity"
	"bookbridge/domain/core"
	"bookbridge/ports"

	"github.com/jmoiron/sqlx"
)

// snapshotRepository implements the SnapshotStore interface
type snapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sqlx.DB) ports.SnapshotStore {
	return &snapshotRepository{db: db}
}

// EnsureSchema creates the snapshots table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS record_snapshots (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		taken_at TIMESTAMPTZ NOT NULL,
		records JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure snapshot schema: %w", err)
	}
	return nil
}

// Save inserts a snapshot with its records serialized as JSON
func (r *snapshotRepository) Save(ctx context.Context, snapshot *activity.Snapshot) error {
	recordsJSON, err := json.Marshal(snapshot.Records)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot records: %w", err)
	}

	query := `INSERT INTO record_snapshots (id, source, taken_at, records)
		VALUES ($1, $2, $3, $4)`

	_, err = r.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.Source, snapshot.TakenAt, recordsJSON)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Latest retrieves the most recent snapshot for a source
func (r *snapshotRepository) Latest(ctx context.Context, source string) (*activity.Snapshot, error) {
	query := `SELECT id, source, taken_at, records
		FROM record_snapshots
		WHERE source = $1
		ORDER BY taken_at DESC
		LIMIT 1`

	var snap activity.Snapshot
	var recordsJSON []byte

	err := r.db.QueryRowContext(ctx, query, source).Scan(
		&snap.ID, &snap.Source, &snap.TakenAt, &recordsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	if err := json.Unmarshal(recordsJSON, &snap.Records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot records: %w", err)
	}
	return &snap, nil
}
