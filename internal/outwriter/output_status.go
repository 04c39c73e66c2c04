package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// WriteSnapshotStatus writes snapshot store status to w.
func WriteSnapshotStatus(w io.Writer, status schema.SnapshotStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, status)
	}

	fmt.Fprintf(w, "Snapshot Backend: %s\n", status.Backend)
	fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return nil
	}
	fmt.Fprintf(w, "Total Snapshots: %d\n", status.TotalSnapshots)
	if status.TotalSnapshots > 0 {
		fmt.Fprintf(w, "Last Snapshot ID: %d\n", status.LastSnapshotID)
		fmt.Fprintf(w, "Last Snapshot: %s\n", status.LastSnapshotTime.Format(statusTimeFormat))
		fmt.Fprintf(w, "Oldest Snapshot: %s\n", status.OldestSnapshotTime.Format(statusTimeFormat))
	}
	fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
	fmt.Fprintf(w, "Storage Size: %d bytes\n", status.StorageBytes)
	return nil
}

// WriteSnapshotList writes snapshot metadata to w in the configured output format.
func WriteSnapshotList(w io.Writer, records []schema.SnapshotRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if records == nil {
			records = []schema.SnapshotRecord{}
		}
		return writeJSON(w, records)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"snapshot_id", "created_at", "generated_at_utc", "source", "parent_aggregates", "parent_year_totals"}, func(cw *csv.Writer) error {
			for _, r := range records {
				if err := cw.Write(snapshotRecordFields(r)); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		data := make([][]string, 0, len(records))
		for _, r := range records {
			data = append(data, snapshotRecordFields(r))
		}
		return writeTable(w, []string{"ID", "Created", "Generated UTC", "Source", "Aggregates", "Year Totals"}, data)
	}
}

func snapshotRecordFields(r schema.SnapshotRecord) []string {
	return []string{
		strconv.FormatInt(r.SnapshotID, 10),
		r.CreatedAt.Format(statusTimeFormat),
		r.GeneratedAtUTC,
		r.Source,
		strconv.Itoa(int(r.ParentAggregates)),
		strconv.Itoa(int(r.ParentYearTotals)),
	}
}
