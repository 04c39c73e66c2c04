// Package contract provides interfaces and shared utilities for the starsview internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/starsview/schema"
)

// DataSource yields the record collections for every year of a window.
// Implementations must return either a complete dataset or an error.
type DataSource interface {
	// Load fetches, parses and merges all shards of the window.
	Load(ctx context.Context, window schema.YearWindow) (*schema.Dataset, error)

	// Describe returns a human readable location of the source.
	Describe() string
}

// SnapshotStore persists derived parent tables so they can be queried or
// exported without reloading every shard.
type SnapshotStore interface {
	// SaveSnapshot writes one snapshot of parent aggregates and year totals
	// and returns its id.
	SaveSnapshot(meta schema.SnapshotRecord, aggregates []schema.ParentAggregate, totals []schema.ParentYearTotal) (int64, error)

	// ListSnapshots returns snapshot metadata, newest first.
	ListSnapshots() ([]schema.SnapshotRecord, error)

	// GetParentAggregates returns the parent aggregates of one snapshot.
	GetParentAggregates(snapshotID int64) ([]schema.ParentAggregate, error)

	// GetParentYearTotals returns the parent year totals of one snapshot.
	GetParentYearTotals(snapshotID int64) ([]schema.ParentYearTotal, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.SnapshotStatus, error)

	// Clear removes all snapshots.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}

// StoreManager hands out the configured snapshot store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
}
