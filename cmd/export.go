package cmd

import (
	"github.com/huangsam/starsview/core"
	"github.com/huangsam/starsview/internal/contract"
	"github.com/spf13/cobra"
)

// exportCmd writes the flattened rows of the comparison.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the compared rows as CSV, JSON or Parquet.",
	Long: `Flatten the visible series into one row per series and year and write them.

CSV output without --output-file goes to cms_stars_compare_<metric>_<measure>.csv
in the current directory. Parquet output defaults to the same name with a
.parquet extension.

Examples:
  # CSV named after the metric and measure
  starsview export --output csv --quick humana --quick all_ma

  # Parquet for DuckDB or pandas
  starsview export --output parquet --output-file rows.parquet --quick cvs`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg, dataSource()); err != nil {
			contract.LogFatal("Cannot export rows", err)
		}
	},
}
