package cmd

import (
	"github.com/huangsam/starsview/core"
	"github.com/huangsam/starsview/internal/contract"
	"github.com/spf13/cobra"
)

// seriesCmd compares the selected series over the year window.
var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Compare a metric across up to 8 series.",
	Long: `Load every shard of the year window and compare one metric across
contracts, parent organizations and the whole market.

Without --select or --quick the comparison starts with the market series
and the first contract that reports the active measure. Selecting more than
8 series keeps the first 8 and prints a warning.

Examples:
  # Compare Humana and CVS on the default measure
  starsview series --quick humana --quick cvs

  # Measure stars for one contract against the market
  starsview series --metric measure_stars --measure breast_cancer_screening \
    --select contract:H1234 --select all_ma

  # Hide a series but keep its color
  starsview series --quick humana --quick all_ma --hide all_ma

  # Dump the view as JSON
  starsview series --quick unh --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeries(rootCtx, cfg, dataSource()); err != nil {
			contract.LogFatal("Cannot build series view", err)
		}
	},
}
