// Package cmd defines the command-line interface for starsview.
package cmd

import (
	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(measuresCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("data", "d", contract.DefaultDataSource, "Shard directory, base URL, or bundle .json file")
	rootCmd.PersistentFlags().Int("year-min", contract.DefaultYearMin, "First rating year of the window")
	rootCmd.PersistentFlags().Int("year-max", contract.DefaultYearMax, "Last rating year of the window")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent shard fetches")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Time limit for loading all shards")
	rootCmd.PersistentFlags().StringP("metric", "m", string(schema.RawMeasureData), "Metric: raw_measure_data or measure_stars or star_weight or calculated_raw_stars_score or total_raw_stars_score")
	rootCmd.PersistentFlags().String("measure", "", "Measure key (defaults to the first measure by name)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("use-supplied-parents", false, "Use parent tables shipped with the data instead of deriving them")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Selection flags are shared by the comparison commands and bound on use
	for _, c := range []*cobra.Command{seriesCmd, exportCmd} {
		c.Flags().StringArrayP("select", "s", nil, "Series to compare as scope:entity (repeatable, e.g. parent:Humana Inc.)")
		c.Flags().StringArray("hide", nil, "Selected series to hide as scope:entity (repeatable)")
		c.Flags().StringSliceP("quick", "q", nil, "Quick targets: humana, cvs, unh, all_ma (repeatable)")
	}
	entitiesCmd.Flags().String("scope", string(schema.ContractScope), "Entity scope: contract or parent or all_ma")
	entitiesCmd.Flags().String("search", "", "Case-insensitive label filter")

	snapshotExportCmd.Flags().Int64("snapshot-id", 0, "Snapshot to export (0 means the newest)")
	if err := viper.BindPFlags(snapshotExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot export flags", err)
	}

	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot migrate flags", err)
	}
}
