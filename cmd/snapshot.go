package cmd

import (
	"fmt"

	"github.com/huangsam/starsview/core"
	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/internal/iocache"
	"github.com/huangsam/starsview/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotBackend resolves the snapshot backend and connection string from
// the config file, env and flags.
func snapshotBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("snapshot-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("snapshot-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// snapshotSetup loads minimal configuration needed for snapshot operations.
// This is used by commands that need the store without loading any shards.
func snapshotSetup() error {
	backend, connStr, err := snapshotBackend()
	if err != nil {
		return err
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// snapshotMigrateSetup loads the backend without initializing stores or
// creating tables, so migrations can run on a fresh database.
func snapshotMigrateSetup() error {
	backend, connStr, err := snapshotBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetSnapshotDBFilePath()
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	return nil
}

// snapshotMigrateSetupWrapper wraps snapshotMigrateSetup to provide PreRunE for migrate command.
func snapshotMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotMigrateSetup()
}

// snapshotCmd focused on persisted parent tables.
//
// Note: Snapshot subcommands other than save use minimal initialization
// (snapshotSetup) instead of sharedSetup, so they never touch the shards.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Persist and inspect derived parent tables",
	Long: `Save the derived parent aggregates and year totals to a database so they
can be listed, exported or compared later without reloading every shard.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  save    - Load the data and store its parent tables
  list    - Show stored snapshots, newest first
  status  - Show row counts and connection info
  clear   - Remove all snapshots
  export  - Write one snapshot to Parquet
  migrate - Run schema migrations`,
}

// snapshotSaveCmd stores the parent tables of the current data.
var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Load the data and store its parent tables as a new snapshot",
	Long: `Load every shard of the year window, derive the parent tables and store them.

Examples:
  # Snapshot the default data directory to SQLite
  starsview snapshot save

  # Snapshot a remote dataset to PostgreSQL
  STARSVIEW_SNAPSHOT_DB_CONNECT="host=localhost dbname=stars" \
    starsview snapshot save --data https://example.org/stars --snapshot-backend postgresql`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotSave(rootCtx, cfg, dataSource(), storeManager); err != nil {
			contract.LogFatal("Failed to save snapshot", err)
		}
	},
}

// snapshotListCmd lists stored snapshots.
var snapshotListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored snapshots, newest first",
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotList(cfg, storeManager); err != nil {
			contract.LogFatal("Failed to list snapshots", err)
		}
	},
}

// snapshotStatusCmd shows store statistics.
var snapshotStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show snapshot store statistics and connection info",
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotStatus(cfg, storeManager); err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
	},
}

// snapshotClearCmd removes every snapshot.
var snapshotClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all stored snapshots",
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotClear(storeManager); err != nil {
			contract.LogFatal("Failed to clear snapshots", err)
		}
	},
}

// snapshotExportCmd exports one snapshot to Parquet files.
var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one snapshot to Parquet for BI tools and analytics",
	Long: `Write the parent aggregates and parent year totals of one snapshot to
<output-file>.parent_aggregates.parquet and <output-file>.parent_year_totals.parquet.

Requires: --output-file parameter

Examples:
  # Export the newest snapshot
  starsview snapshot export --output-file stars

  # Query it with DuckDB
  duckdb -c "SELECT * FROM read_parquet('stars.parent_aggregates.parquet') LIMIT 10"`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotExport(storeManager, cfg.OutputFile, viper.GetInt64("snapshot-id")); err != nil {
			contract.LogFatal("Failed to export snapshot", err)
		}
	},
}

// snapshotMigrateCmd runs database migrations for the snapshot store.
var snapshotMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  starsview snapshot migrate

  # Rollback to initial state
  starsview snapshot migrate --target-version 0`,
	PreRunE: snapshotMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateSnapshots(cfg.SnapshotBackend, cfg.SnapshotDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
