package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/starsview/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSnapshots_NoneBackend(t *testing.T) {
	err := MigrateSnapshots(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateSnapshots_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Latest version
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
	assert.ElementsMatch(t, snapshotTables, existingTables(t, dbPath))

	// No-op
	assert.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, -1))

	// Step down to version 1
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, 1))
	assert.ElementsMatch(t, []string{snapshotsTable}, existingTables(t, dbPath))

	// Roll back everything
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, 0))
	assert.Empty(t, existingTables(t, dbPath))

	// And back up again
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, 3))
	assert.ElementsMatch(t, snapshotTables, existingTables(t, dbPath))
}

func TestMigrateSnapshots_StoreAfterMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.db")
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, -1))

	store, err := NewSnapshotStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err, "table creation is idempotent over migrated schema")
	defer func() { _ = store.Close() }()

	_, err = store.SaveSnapshot(schema.SnapshotRecord{Source: "migrated"}, sampleAggregates(), sampleTotals())
	assert.NoError(t, err)
}

func TestMigrateSnapshots_SQLiteInMemory(t *testing.T) {
	err := MigrateSnapshots(schema.SQLiteBackend, ":memory:", -1)
	require.NoError(t, err)
}

// existingTables lists the snapshot tables present in the SQLite file.
func existingTables(t *testing.T, dbPath string) []string {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'starsview_%'")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
