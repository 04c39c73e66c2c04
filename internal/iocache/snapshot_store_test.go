package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/starsview/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAggregates() []schema.ParentAggregate {
	return []schema.ParentAggregate{
		{
			RatingYear:                      2021,
			ParentOrganization:              "Humana Inc.",
			MeasureKey:                      "breast_cancer_screening",
			MeasureName:                     "Breast Cancer Screening",
			MeasureCodeObserved:             "C01",
			WeightedRawMeasureData:          schema.Float(71.5),
			WeightedMeasureStars:            schema.Float(3.75),
			WeightedStarWeight:              schema.Null,
			WeightedCalculatedRawStarsScore: schema.Float(3.5),
			MembersIncluded:                 schema.Float(400),
			ContractsIncluded:               schema.Float(2),
		},
		{
			RatingYear:         2020,
			ParentOrganization: "Aetna Inc.",
			MeasureKey:         "breast_cancer_screening",
			MeasureName:        "Breast Cancer Screening",
			MembersIncluded:    schema.Float(0),
			ContractsIncluded:  schema.Float(1),
		},
	}
}

func sampleTotals() []schema.ParentYearTotal {
	return []schema.ParentYearTotal{
		{RatingYear: 2021, ParentOrganization: "Humana Inc.", WeightedTotalRawStarsScore: schema.Float(3.9), MembersIncluded: schema.Float(400), ContractsIncluded: schema.Float(2)},
	}
}

func newMemoryStore(t *testing.T) *SnapshotStoreImpl {
	t.Helper()
	store, err := NewSnapshotStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSnapshotStore_UnsupportedBackend(t *testing.T) {
	_, err := NewSnapshotStore(schema.NoneBackend, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported snapshot backend")
}

func TestSnapshotStore_SaveAndRead(t *testing.T) {
	store := newMemoryStore(t)

	createdAt := time.Date(2025, 10, 1, 12, 30, 0, 0, time.UTC)
	id, err := store.SaveSnapshot(schema.SnapshotRecord{
		CreatedAt:      createdAt,
		GeneratedAtUTC: "2025-09-30T00:00:00Z",
		Source:         "data",
	}, sampleAggregates(), sampleTotals())
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	records, err := store.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].SnapshotID)
	assert.True(t, createdAt.Equal(records[0].CreatedAt))
	assert.Equal(t, "2025-09-30T00:00:00Z", records[0].GeneratedAtUTC)
	assert.Equal(t, "data", records[0].Source)
	assert.Equal(t, int32(2), records[0].ParentAggregates)
	assert.Equal(t, int32(1), records[0].ParentYearTotals)

	aggregates, err := store.GetParentAggregates(id)
	require.NoError(t, err)
	require.Len(t, aggregates, 2)
	// Ordered by year first
	assert.Equal(t, "Aetna Inc.", aggregates[0].ParentOrganization)
	assert.Equal(t, schema.Year(2020), aggregates[0].RatingYear)
	assert.False(t, aggregates[0].WeightedMeasureStars.Valid, "absent values stay absent")
	assert.Equal(t, schema.Float(0), aggregates[0].MembersIncluded, "zero is not absent")

	humana := aggregates[1]
	assert.Equal(t, "C01", humana.MeasureCodeObserved)
	assert.Equal(t, schema.Float(71.5), humana.WeightedRawMeasureData)
	assert.Equal(t, schema.Float(3.75), humana.WeightedMeasureStars)
	assert.Equal(t, schema.Null, humana.WeightedStarWeight)
	assert.Equal(t, schema.Float(2), humana.ContractsIncluded)

	totals, err := store.GetParentYearTotals(id)
	require.NoError(t, err)
	assert.Equal(t, sampleTotals(), totals)

	missing, err := store.GetParentAggregates(id + 1)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSnapshotStore_IDsIncrease(t *testing.T) {
	store := newMemoryStore(t)

	first, err := store.SaveSnapshot(schema.SnapshotRecord{Source: "a"}, nil, nil)
	require.NoError(t, err)
	second, err := store.SaveSnapshot(schema.SnapshotRecord{Source: "b"}, nil, nil)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	explicit, err := store.SaveSnapshot(schema.SnapshotRecord{SnapshotID: second + 100, Source: "c"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, second+100, explicit)

	records, err := store.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].Source, "newest first")
	assert.Equal(t, "a", records[2].Source)
	assert.False(t, records[2].CreatedAt.IsZero())
}

func TestSnapshotStore_DuplicateIDRollsBack(t *testing.T) {
	store := newMemoryStore(t)

	id, err := store.SaveSnapshot(schema.SnapshotRecord{SnapshotID: 7}, sampleAggregates(), sampleTotals())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = store.SaveSnapshot(schema.SnapshotRecord{SnapshotID: 7}, sampleAggregates(), sampleTotals())
	require.Error(t, err)

	aggregates, err := store.GetParentAggregates(7)
	require.NoError(t, err)
	assert.Len(t, aggregates, 2, "failed save leaves no partial rows")
}

func TestSnapshotStore_StatusAndClear(t *testing.T) {
	store := newMemoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalSnapshots)
	assert.Equal(t, int64(0), status.TableSizes[parentAggregatesTable])

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.SaveSnapshot(schema.SnapshotRecord{SnapshotID: 1, CreatedAt: older}, sampleAggregates(), nil)
	require.NoError(t, err)
	_, err = store.SaveSnapshot(schema.SnapshotRecord{SnapshotID: 2, CreatedAt: newer}, nil, sampleTotals())
	require.NoError(t, err)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalSnapshots)
	assert.Equal(t, int64(2), status.LastSnapshotID)
	assert.True(t, newer.Equal(status.LastSnapshotTime))
	assert.True(t, older.Equal(status.OldestSnapshotTime))
	assert.Equal(t, int64(2), status.TableSizes[snapshotsTable])
	assert.Equal(t, int64(2), status.TableSizes[parentAggregatesTable])
	assert.Equal(t, int64(1), status.TableSizes[parentYearTotalsTable])
	assert.Greater(t, status.StorageBytes, int64(0))

	require.NoError(t, store.Clear())
	records, err := store.ListSnapshots()
	require.NoError(t, err)
	assert.Empty(t, records)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.TableSizes[parentYearTotalsTable])
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`starsview_snapshots`", quoteTableName(snapshotsTable, schema.MySQLBackend))
	assert.Equal(t, `"starsview_snapshots"`, quoteTableName(snapshotsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"starsview_snapshots"`, quoteTableName(snapshotsTable, schema.SQLiteBackend))
}

func TestGetPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", getPlaceholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", getPlaceholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", getPlaceholders(schema.PostgreSQLBackend, 3))
}
