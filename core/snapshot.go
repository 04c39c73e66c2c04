package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/internal/outwriter"
	"github.com/huangsam/starsview/internal/parquet"
	"github.com/huangsam/starsview/schema"
)

// ErrSnapshotsDisabled is returned when snapshot commands run without a backend.
var ErrSnapshotsDisabled = errors.New("snapshot backend is disabled")

// ErrNoSnapshots is returned when an export finds nothing to export.
var ErrNoSnapshots = errors.New("no snapshots found")

func snapshotStore(mgr contract.StoreManager) (contract.SnapshotStore, error) {
	if mgr == nil {
		return nil, ErrSnapshotsDisabled
	}
	store := mgr.GetSnapshotStore()
	if store == nil {
		return nil, ErrSnapshotsDisabled
	}
	return store, nil
}

// ExecuteSnapshotSave loads the dataset and persists its parent tables as a new snapshot.
func ExecuteSnapshotSave(ctx context.Context, cfg *contract.Config, src contract.DataSource, mgr contract.StoreManager) error {
	start := time.Now()
	store, err := snapshotStore(mgr)
	if err != nil {
		return err
	}
	ds, err := LoadDataset(ctx, cfg, src)
	if err != nil {
		return err
	}

	meta := schema.SnapshotRecord{
		CreatedAt:        time.Now().UTC(),
		GeneratedAtUTC:   ds.GeneratedAt(),
		Source:           src.Describe(),
		ParentAggregates: int32(len(ds.ParentAggregates)),
		ParentYearTotals: int32(len(ds.ParentYearTotals)),
	}
	id, err := store.SaveSnapshot(meta, ds.ParentAggregates, ds.ParentYearTotals)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	fmt.Printf("💾 Saved snapshot %d with %d parent aggregates and %d year totals in %v\n",
		id, meta.ParentAggregates, meta.ParentYearTotals, time.Since(start))
	return nil
}

// ExecuteSnapshotList prints the stored snapshots, newest first.
func ExecuteSnapshotList(cfg *contract.Config, mgr contract.StoreManager) error {
	store, err := snapshotStore(mgr)
	if err != nil {
		return err
	}
	records, err := store.ListSnapshots()
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	return outwriter.NewOutWriter().WriteSnapshotList(records, cfg)
}

// ExecuteSnapshotStatus prints status information about the snapshot store.
func ExecuteSnapshotStatus(cfg *contract.Config, mgr contract.StoreManager) error {
	store, err := snapshotStore(mgr)
	if err != nil {
		return err
	}
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get snapshot status: %w", err)
	}
	return outwriter.NewOutWriter().WriteSnapshotStatus(status, cfg)
}

// ExecuteSnapshotClear removes every stored snapshot.
func ExecuteSnapshotClear(mgr contract.StoreManager) error {
	store, err := snapshotStore(mgr)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	fmt.Println("Snapshot data cleared successfully")
	return nil
}

// ExecuteSnapshotExport writes the parent tables of one snapshot to Parquet
// files named after outputFile. A zero snapshotID selects the newest snapshot.
func ExecuteSnapshotExport(mgr contract.StoreManager, outputFile string, snapshotID int64) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	store, err := snapshotStore(mgr)
	if err != nil {
		return err
	}

	if snapshotID == 0 {
		records, err := store.ListSnapshots()
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}
		if len(records) == 0 {
			return ErrNoSnapshots
		}
		snapshotID = records[0].SnapshotID
	}

	aggregates, err := store.GetParentAggregates(snapshotID)
	if err != nil {
		return fmt.Errorf("failed to retrieve parent aggregates: %w", err)
	}
	totals, err := store.GetParentYearTotals(snapshotID)
	if err != nil {
		return fmt.Errorf("failed to retrieve parent year totals: %w", err)
	}

	aggregatesFile := outputFile + ".parent_aggregates.parquet"
	if err := parquet.WriteParentAggregatesParquet(parquet.ConvertParentAggregates(snapshotID, aggregates), aggregatesFile); err != nil {
		return fmt.Errorf("failed to write parent aggregates: %w", err)
	}
	fmt.Printf("Exported %d parent aggregates to: %s\n", len(aggregates), aggregatesFile)

	totalsFile := outputFile + ".parent_year_totals.parquet"
	if err := parquet.WriteParentYearTotalsParquet(parquet.ConvertParentYearTotals(snapshotID, totals), totalsFile); err != nil {
		return fmt.Errorf("failed to write parent year totals: %w", err)
	}
	fmt.Printf("Exported %d parent year totals to: %s\n", len(totals), totalsFile)
	return nil
}
