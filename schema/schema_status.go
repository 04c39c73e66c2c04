package schema

import "time"

// SnapshotStatus represents the status of the snapshot store.
type SnapshotStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalSnapshots     int              `json:"total_snapshots"`
	LastSnapshotID     int64            `json:"last_snapshot_id"`
	LastSnapshotTime   time.Time        `json:"last_snapshot_time"`
	OldestSnapshotTime time.Time        `json:"oldest_snapshot_time"`
	TableSizes         map[string]int64 `json:"table_sizes"`
	StorageBytes       int64            `json:"storage_bytes"`
}
