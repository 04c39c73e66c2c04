package cmd

import (
	"github.com/huangsam/starsview/core"
	"github.com/huangsam/starsview/internal/contract"
	"github.com/spf13/cobra"
)

// measuresCmd lists the measure catalog.
var measuresCmd = &cobra.Command{
	Use:     "measures",
	Short:   "List the measures found in the data.",
	Long:    `List every measure key and display name found in the contract records, sorted by name.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMeasures(rootCtx, cfg, dataSource()); err != nil {
			contract.LogFatal("Cannot list measures", err)
		}
	},
}

// entitiesCmd lists the selectable entities of a scope.
var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List selectable contracts or parent organizations.",
	Long: `List the entities of a scope that report the active metric and measure.

Examples:
  # Parent organizations matching "health"
  starsview entities --scope parent --search health

  # Contracts reporting total scores
  starsview entities --metric total_raw_stars_score`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEntities(rootCtx, cfg, dataSource()); err != nil {
			contract.LogFatal("Cannot list entities", err)
		}
	},
}
