package schema

import (
	"fmt"
	"strings"
)

// Custom string types for type safety.
type (
	// Scope is the aggregation level of a series.
	Scope string

	// Metric is one of the closed set of comparable metrics.
	Metric string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshots.
	DatabaseBackend string
)

// All scopes supported.
const (
	ContractScope Scope = "contract"
	ParentScope   Scope = "parent"
	MarketScope   Scope = "all_ma"
)

// MarketEntityKey is the only entity in the market scope.
const MarketEntityKey = "all_ma"

// MarketLabel is the display label of the market-wide series.
const MarketLabel = "All MA"

// All metrics supported.
const (
	RawMeasureData          Metric = "raw_measure_data"
	MeasureStars            Metric = "measure_stars"
	StarWeight              Metric = "star_weight"
	CalculatedRawStarsScore Metric = "calculated_raw_stars_score"
	TotalRawStarsScore      Metric = "total_raw_stars_score"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All snapshot backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllScopes lists scopes in display order.
var AllScopes = []Scope{ContractScope, ParentScope, MarketScope}

// AllMetrics lists metrics in display order.
var AllMetrics = []Metric{RawMeasureData, MeasureStars, StarWeight, CalculatedRawStarsScore, TotalRawStarsScore}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid snapshot backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ParseScope accepts a scope name, including "market" as an alias of all_ma.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contract":
		return ContractScope, nil
	case "parent":
		return ParentScope, nil
	case "all_ma", "market":
		return MarketScope, nil
	}
	return "", fmt.Errorf("invalid scope '%s'. must be contract, parent, all_ma", s)
}

// Title returns the human label of a scope.
func (s Scope) Title() string {
	switch s {
	case ContractScope:
		return "Contract"
	case ParentScope:
		return "Parent"
	default:
		return MarketLabel
	}
}

// ParseMetric validates a metric name against the closed set.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllMetrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid metric '%s'. must be raw_measure_data, measure_stars, star_weight, calculated_raw_stars_score, total_raw_stars_score", s)
}

// Label returns the display label of the metric.
func (m Metric) Label() string {
	switch m {
	case RawMeasureData:
		return "Raw Measure Data"
	case MeasureStars:
		return "Measure Stars"
	case StarWeight:
		return "Star Weight"
	case CalculatedRawStarsScore:
		return "Calculated Raw Stars Score"
	case TotalRawStarsScore:
		return "Total Raw Stars Score"
	}
	return string(m)
}

// IsTotal reports whether the metric is contract-year total only, as opposed to
// scoped to a single measure.
func (m Metric) IsTotal() bool {
	return m == TotalRawStarsScore
}

// ContractField is the per-contract source field name.
func (m Metric) ContractField() string {
	if m.IsTotal() {
		return "total_raw_stars_score_contract_year"
	}
	return string(m)
}

// AggregateField is the per-aggregate source field name.
func (m Metric) AggregateField() string {
	if m.IsTotal() {
		return "weighted_total_raw_stars_score"
	}
	return "weighted_" + string(m)
}

// RecordValue reads the metric from a contract record.
func (m Metric) RecordValue(r ContractRecord) NullFloat {
	switch m {
	case RawMeasureData:
		return r.RawMeasureData
	case MeasureStars:
		return r.MeasureStars
	case StarWeight:
		return r.StarWeight
	case CalculatedRawStarsScore:
		return r.CalculatedRawStarsScore
	}
	return Null
}

// TotalValue reads the metric from a contract-year total.
func (m Metric) TotalValue(r ContractYearTotal) NullFloat {
	if m.IsTotal() {
		return r.TotalRawStarsScore
	}
	return Null
}

// AggregateValue reads the metric from a parent or market aggregate.
func (m Metric) AggregateValue(r ParentAggregate) NullFloat {
	switch m {
	case RawMeasureData:
		return r.WeightedRawMeasureData
	case MeasureStars:
		return r.WeightedMeasureStars
	case StarWeight:
		return r.WeightedStarWeight
	case CalculatedRawStarsScore:
		return r.WeightedCalculatedRawStarsScore
	}
	return Null
}

// YearTotalValue reads the metric from a parent or market year total.
func (m Metric) YearTotalValue(r ParentYearTotal) NullFloat {
	if m.IsTotal() {
		return r.WeightedTotalRawStarsScore
	}
	return Null
}
