package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/huangsam/starsview/schema"
)

// ProjectRows flattens visible series into one row per (series, year) with a
// value. Rows are ordered by year, then scope title, then entity label.
func ProjectRows(seriesList []schema.DenseSeries, hidden map[string]struct{}, metric schema.Metric) []schema.TableRow {
	var rows []schema.TableRow
	for _, s := range seriesList {
		if _, ok := hidden[s.ID]; ok {
			continue
		}
		for _, p := range s.Points {
			if !p.Value.Valid {
				continue
			}
			rows = append(rows, schema.TableRow{
				Year:           p.Year,
				Scope:          s.Scope.Title(),
				Entity:         s.Label,
				Metric:         metric.Label(),
				Value:          p.Value.Float64,
				MembersOrLives: membersOrLives(p),
				Contracts:      truthyOrNull(p.ContractsIncluded),
				Codes:          p.Code,
			})
		}
	}

	compare := schema.LabelComparer()
	slices.SortStableFunc(rows, func(a, b schema.TableRow) int {
		return cmp.Or(
			cmp.Compare(a.Year, b.Year),
			compare(a.Scope, b.Scope),
			compare(a.Entity, b.Entity),
		)
	})
	return rows
}

// membersOrLives prefers the aggregate member count and falls back to
// per-contract enrollment. Zero counts as missing.
func membersOrLives(p schema.SeriesPoint) schema.NullFloat {
	return truthyOrNull(p.MembersIncluded.Or(p.EnrollmentLives))
}

func truthyOrNull(v schema.NullFloat) schema.NullFloat {
	if v.Truthy() {
		return v
	}
	return schema.Null
}

// ExportFilename returns the CSV file name for the active metric and measure.
// The active measure key is kept for total metrics too; "total" only stands
// in when no measure is active.
func ExportFilename(metric schema.Metric, measureKey string) string {
	suffix := measureKey
	if suffix == "" {
		suffix = "total"
	}
	suffix = strings.NewReplacer("/", "_", "\\", "_").Replace(suffix)
	return "cms_stars_compare_" + string(metric) + "_" + suffix + ".csv"
}
