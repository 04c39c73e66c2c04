// Package parquet provides data structures and functions for exporting starsview
// tables to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/huangsam/starsview/schema"
	"github.com/parquet-go/parquet-go"
)

// TableRow is one projected (series, year) row.
type TableRow struct {
	Year           int32    `parquet:"year,snappy"`
	Scope          string   `parquet:"scope,snappy"`
	Entity         string   `parquet:"entity,snappy"`
	Metric         string   `parquet:"metric,snappy"`
	Value          float64  `parquet:"value,snappy"`
	MembersOrLives *float64 `parquet:"members_or_lives,optional,snappy"`
	Contracts      *float64 `parquet:"contracts,optional,snappy"`
	Codes          string   `parquet:"codes,snappy"`
}

// ParentAggregate is one derived parent aggregate of a snapshot.
// This struct maps to the starsview_parent_aggregates database table.
type ParentAggregate struct {
	// SnapshotID references the snapshot the row belongs to
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	RatingYear         int32  `parquet:"rating_year,snappy"`
	ParentOrganization string `parquet:"parent_organization,snappy"`
	MeasureKey         string `parquet:"measure_key,snappy"`
	MeasureName        string `parquet:"measure_name,snappy"`
	MeasureCodes       string `parquet:"measure_codes,snappy"`

	// Weighted means are absent when no contributing row had a positive enrollment
	WeightedRawMeasureData          *float64 `parquet:"weighted_raw_measure_data,optional,snappy"`
	WeightedMeasureStars            *float64 `parquet:"weighted_measure_stars,optional,snappy"`
	WeightedStarWeight              *float64 `parquet:"weighted_star_weight,optional,snappy"`
	WeightedCalculatedRawStarsScore *float64 `parquet:"weighted_calculated_raw_stars_score,optional,snappy"`

	MembersIncluded   *float64 `parquet:"members_included,optional,snappy"`
	ContractsIncluded *float64 `parquet:"contracts_included,optional,snappy"`
}

// ParentYearTotal is one derived parent year total of a snapshot.
// This struct maps to the starsview_parent_year_totals database table.
type ParentYearTotal struct {
	SnapshotID                 int64    `parquet:"snapshot_id,snappy"`
	RatingYear                 int32    `parquet:"rating_year,snappy"`
	ParentOrganization         string   `parquet:"parent_organization,snappy"`
	WeightedTotalRawStarsScore *float64 `parquet:"weighted_total_raw_stars_score,optional,snappy"`
	MembersIncluded            *float64 `parquet:"members_included,optional,snappy"`
	ContractsIncluded          *float64 `parquet:"contracts_included,optional,snappy"`
}

// writeParquet writes a slice of structs to a Parquet file whose schema is
// inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteTableRowsParquet writes projected rows to a Parquet file.
func WriteTableRowsParquet(data []TableRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteParentAggregatesParquet writes parent aggregates to a Parquet file.
func WriteParentAggregatesParquet(data []ParentAggregate, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteParentYearTotalsParquet writes parent year totals to a Parquet file.
func WriteParentYearTotalsParquet(data []ParentYearTotal, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertTableRows converts schema.TableRow to TableRow for Parquet export.
func ConvertTableRows(rows []schema.TableRow) []TableRow {
	result := make([]TableRow, len(rows))
	for i, r := range rows {
		result[i] = TableRow{
			Year:           int32(r.Year),
			Scope:          r.Scope,
			Entity:         r.Entity,
			Metric:         r.Metric,
			Value:          r.Value,
			MembersOrLives: r.MembersOrLives.Ptr(),
			Contracts:      r.Contracts.Ptr(),
			Codes:          r.Codes,
		}
	}
	return result
}

// ConvertParentAggregates converts schema.ParentAggregate to ParentAggregate for Parquet export.
func ConvertParentAggregates(snapshotID int64, records []schema.ParentAggregate) []ParentAggregate {
	result := make([]ParentAggregate, len(records))
	for i, r := range records {
		result[i] = ParentAggregate{
			SnapshotID:                      snapshotID,
			RatingYear:                      int32(r.RatingYear),
			ParentOrganization:              r.ParentOrganization,
			MeasureKey:                      r.MeasureKey,
			MeasureName:                     r.MeasureName,
			MeasureCodes:                    r.MeasureCodeObserved,
			WeightedRawMeasureData:          r.WeightedRawMeasureData.Ptr(),
			WeightedMeasureStars:            r.WeightedMeasureStars.Ptr(),
			WeightedStarWeight:              r.WeightedStarWeight.Ptr(),
			WeightedCalculatedRawStarsScore: r.WeightedCalculatedRawStarsScore.Ptr(),
			MembersIncluded:                 r.MembersIncluded.Ptr(),
			ContractsIncluded:               r.ContractsIncluded.Ptr(),
		}
	}
	return result
}

// ConvertParentYearTotals converts schema.ParentYearTotal to ParentYearTotal for Parquet export.
func ConvertParentYearTotals(snapshotID int64, records []schema.ParentYearTotal) []ParentYearTotal {
	result := make([]ParentYearTotal, len(records))
	for i, r := range records {
		result[i] = ParentYearTotal{
			SnapshotID:                 snapshotID,
			RatingYear:                 int32(r.RatingYear),
			ParentOrganization:         r.ParentOrganization,
			WeightedTotalRawStarsScore: r.WeightedTotalRawStarsScore.Ptr(),
			MembersIncluded:            r.MembersIncluded.Ptr(),
			ContractsIncluded:          r.ContractsIncluded.Ptr(),
		}
	}
	return result
}
