package schema

import "time"

// SnapshotRecord represents a row from the starsview_snapshots table.
type SnapshotRecord struct {
	SnapshotID       int64
	CreatedAt        time.Time
	GeneratedAtUTC   string
	Source           string
	ParentAggregates int32
	ParentYearTotals int32
}
