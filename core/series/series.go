// Package series maps selections onto dense, gap-aware year sequences.
package series

import (
	"iter"
	"sort"

	"github.com/huangsam/starsview/schema"
)

// Extract returns one point per year of window for the selection. Years with
// no source row hold an absent value. When several rows share a year, the last
// one in dataset order wins.
func Extract(ds *schema.Dataset, sel schema.Selection, metric schema.Metric, measureKey string, window schema.YearWindow) schema.DenseSeries {
	points := make([]schema.SeriesPoint, window.Width())
	for i, year := range window.Years() {
		points[i] = schema.SeriesPoint{
			Year:   year,
			Value:  schema.Null,
			Entity: sel.Label,
			Scope:  sel.Scope,
		}
	}

	for p, year := range sourcePoints(ds, sel, metric, measureKey) {
		if !window.Contains(year) {
			continue
		}
		p.Year = int(year)
		points[int(year)-window.Min] = p
	}

	return schema.DenseSeries{Selection: sel, Points: points}
}

// sourcePoints yields the matching rows of the table that backs the
// (scope, metric) pair, mapped to points.
func sourcePoints(ds *schema.Dataset, sel schema.Selection, metric schema.Metric, measureKey string) iter.Seq2[schema.SeriesPoint, schema.Year] {
	return func(yield func(schema.SeriesPoint, schema.Year) bool) {
		switch sel.Scope {
		case schema.ContractScope:
			if metric.IsTotal() {
				for _, r := range ds.ContractYearTotals {
					if r.ContractID != sel.EntityKey {
						continue
					}
					if !yield(contractTotalPoint(r, metric), r.RatingYear) {
						return
					}
				}
				return
			}
			for _, r := range ds.ContractRecords {
				if r.ContractID != sel.EntityKey || r.MeasureKey != measureKey {
					continue
				}
				if !yield(contractRecordPoint(r, metric), r.RatingYear) {
					return
				}
			}

		case schema.ParentScope:
			if metric.IsTotal() {
				for _, r := range ds.ParentYearTotals {
					if r.ParentOrganization != sel.EntityKey {
						continue
					}
					if !yield(yearTotalPoint(r, metric, r.ParentOrganization, schema.ParentScope), r.RatingYear) {
						return
					}
				}
				return
			}
			for _, r := range ds.ParentAggregates {
				if r.ParentOrganization != sel.EntityKey || r.MeasureKey != measureKey {
					continue
				}
				if !yield(aggregatePoint(r, metric, r.ParentOrganization, schema.ParentScope), r.RatingYear) {
					return
				}
			}

		case schema.MarketScope:
			if metric.IsTotal() {
				for _, r := range ds.MarketYearTotals {
					if !yield(yearTotalPoint(r, metric, schema.MarketLabel, schema.MarketScope), r.RatingYear) {
						return
					}
				}
				return
			}
			for _, r := range ds.MarketAggregates {
				if r.MeasureKey != measureKey {
					continue
				}
				if !yield(aggregatePoint(r, metric, schema.MarketLabel, schema.MarketScope), r.RatingYear) {
					return
				}
			}
		}
	}
}

func contractTotalPoint(r schema.ContractYearTotal, metric schema.Metric) schema.SeriesPoint {
	return schema.SeriesPoint{
		Value:              metric.TotalValue(r),
		Entity:             r.ContractID,
		Scope:              schema.ContractScope,
		EnrollmentLives:    r.EnrollmentLives,
		ParentOrganization: r.ParentOrganization,
	}
}

func contractRecordPoint(r schema.ContractRecord, metric schema.Metric) schema.SeriesPoint {
	return schema.SeriesPoint{
		Value:              metric.RecordValue(r),
		Entity:             r.ContractID,
		Scope:              schema.ContractScope,
		EnrollmentLives:    r.EnrollmentLives,
		ParentOrganization: r.ParentOrganization,
		Code:               r.MeasureCodeObserved,
	}
}

func yearTotalPoint(r schema.ParentYearTotal, metric schema.Metric, entity string, scope schema.Scope) schema.SeriesPoint {
	return schema.SeriesPoint{
		Value:             metric.YearTotalValue(r),
		Entity:            entity,
		Scope:             scope,
		MembersIncluded:   r.MembersIncluded,
		ContractsIncluded: r.ContractsIncluded,
	}
}

func aggregatePoint(r schema.ParentAggregate, metric schema.Metric, entity string, scope schema.Scope) schema.SeriesPoint {
	return schema.SeriesPoint{
		Value:             metric.AggregateValue(r),
		Entity:            entity,
		Scope:             scope,
		MembersIncluded:   r.MembersIncluded,
		ContractsIncluded: r.ContractsIncluded,
		Code:              r.MeasureCodeObserved,
	}
}

// EntityOptions lists the selectable entities of a scope for the active
// metric and measure, sorted ascending by value.
func EntityOptions(ds *schema.Dataset, scope schema.Scope, metric schema.Metric, measureKey string) []schema.EntityOption {
	seen := make(map[string]struct{})
	add := func(v string) {
		seen[v] = struct{}{}
	}

	switch scope {
	case schema.ContractScope:
		if metric.IsTotal() {
			for _, r := range ds.ContractYearTotals {
				add(r.ContractID)
			}
		} else {
			for _, r := range ds.ContractRecords {
				if r.MeasureKey == measureKey {
					add(r.ContractID)
				}
			}
		}
	case schema.ParentScope:
		if metric.IsTotal() {
			for _, r := range ds.ParentYearTotals {
				if r.ParentOrganization != "" {
					add(r.ParentOrganization)
				}
			}
		} else {
			for _, r := range ds.ParentAggregates {
				if r.MeasureKey == measureKey && r.ParentOrganization != "" {
					add(r.ParentOrganization)
				}
			}
		}
	default:
		return []schema.EntityOption{{Value: schema.MarketEntityKey, Label: schema.MarketLabel}}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	options := make([]schema.EntityOption, len(values))
	for i, v := range values {
		options[i] = schema.EntityOption{Value: v, Label: v}
	}
	return options
}

// DefaultEntity returns the first entity option of a scope, or "" if none.
func DefaultEntity(ds *schema.Dataset, scope schema.Scope, metric schema.Metric, measureKey string) string {
	options := EntityOptions(ds, scope, metric, measureKey)
	if len(options) == 0 {
		return ""
	}
	return options[0].Value
}

// Measures builds the measure catalog from contract records, keyed by the
// first non-empty identifier and sorted by display name.
func Measures(ds *schema.Dataset) []schema.Measure {
	seen := make(map[string]struct{})
	var measures []schema.Measure
	for _, r := range ds.ContractRecords {
		key := firstNonEmpty(r.MeasureKey, r.MeasureNameNormalized, r.MeasureName, r.MeasureNameRaw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		measures = append(measures, schema.Measure{
			Key:  key,
			Name: firstNonEmpty(r.MeasureName, r.MeasureNameRaw, key),
		})
	}

	compare := schema.LabelComparer()
	sort.SliceStable(measures, func(i, j int) bool {
		return compare(measures[i].Name, measures[j].Name) < 0
	})
	return measures
}

// MeasureName returns the display name of a measure key, or the key itself.
func MeasureName(measures []schema.Measure, key string) string {
	for _, m := range measures {
		if m.Key == key {
			return m.Name
		}
	}
	return key
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
