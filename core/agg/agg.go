// Package agg has aggregation logic for contract-level Stars records.
package agg

import (
	"sort"
	"strings"

	"github.com/huangsam/starsview/schema"
)

// measureGroupKey identifies one parent aggregate.
type measureGroupKey struct {
	Year       schema.Year
	MeasureKey string
	Parent     string
}

// totalGroupKey identifies one parent year total.
type recordKey struct {
	ContractID string
	Year       schema.Year
	MeasureKey string
}

type totalGroupKey struct {
	Year   schema.Year
	Parent string
}

// Aggregate rolls normalized contract records up to parent level. Records are
// grouped by (year, measure, parent) and totals by (year, parent). Groups are
// emitted in order of first appearance and rows within a group are reduced in
// input order, so the same input always yields bit-identical output.
func Aggregate(records []schema.ContractRecord, totals []schema.ContractYearTotal) ([]schema.ParentAggregate, []schema.ParentYearTotal) {
	return ParentAggregates(records), ParentYearTotals(totals)
}

// ParentAggregates computes one enrollment-weighted row per (year, measure, parent).
func ParentAggregates(records []schema.ContractRecord) []schema.ParentAggregate {
	groups := groupBy(records, func(r schema.ContractRecord) measureGroupKey {
		return measureGroupKey{Year: r.RatingYear, MeasureKey: r.MeasureKey, Parent: r.ParentOrganization}
	})

	out := make([]schema.ParentAggregate, 0, len(groups))
	for _, rows := range groups {
		first := rows[0]
		out = append(out, schema.ParentAggregate{
			RatingYear:                      first.RatingYear,
			ParentOrganization:              first.ParentOrganization,
			MeasureName:                     first.MeasureName,
			MeasureKey:                      first.MeasureKey,
			MeasureCodeObserved:             joinCodes(rows),
			WeightedRawMeasureData:          WeightedMean(rows, schema.RawMeasureData.RecordValue, recordLives),
			WeightedMeasureStars:            WeightedMean(rows, schema.MeasureStars.RecordValue, recordLives),
			WeightedStarWeight:              WeightedMean(rows, schema.StarWeight.RecordValue, recordLives),
			WeightedCalculatedRawStarsScore: WeightedMean(rows, schema.CalculatedRawStarsScore.RecordValue, recordLives),
			MembersIncluded:                 sumMembers(rows, recordLives),
			ContractsIncluded:               countContracts(rows, func(r schema.ContractRecord) string { return r.ContractID }),
		})
	}
	return out
}

// ParentYearTotals computes one enrollment-weighted total row per (year, parent).
func ParentYearTotals(totals []schema.ContractYearTotal) []schema.ParentYearTotal {
	groups := groupBy(totals, func(r schema.ContractYearTotal) totalGroupKey {
		return totalGroupKey{Year: r.RatingYear, Parent: r.ParentOrganization}
	})

	out := make([]schema.ParentYearTotal, 0, len(groups))
	for _, rows := range groups {
		first := rows[0]
		out = append(out, schema.ParentYearTotal{
			RatingYear:                 first.RatingYear,
			ParentOrganization:         first.ParentOrganization,
			WeightedTotalRawStarsScore: WeightedMean(rows, schema.TotalRawStarsScore.TotalValue, totalLives),
			MembersIncluded:            sumMembers(rows, totalLives),
			ContractsIncluded:          countContracts(rows, func(r schema.ContractYearTotal) string { return r.ContractID }),
		})
	}
	return out
}

// WeightedMean returns sum(value*weight) / sum(weight) over rows whose value and
// weight are both present and whose weight is positive. It returns an absent
// value when no row qualifies.
func WeightedMean[T any](rows []T, value, weight func(T) schema.NullFloat) schema.NullFloat {
	var num, den float64
	for _, r := range rows {
		v, w := value(r), weight(r)
		if !v.Valid || !w.Valid || w.Float64 <= 0 {
			continue
		}
		den += w.Float64
		num += v.Float64 * w.Float64
	}
	if den <= 0 {
		return schema.Null
	}
	return schema.Float(num / den)
}

// groupBy partitions rows by key, keeping first-appearance order of groups
// and input order within each group.
func groupBy[T any, K comparable](rows []T, key func(T) K) [][]T {
	index := make(map[K]int)
	var groups [][]T
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

func recordLives(r schema.ContractRecord) schema.NullFloat { return r.EnrollmentLives }

func totalLives(r schema.ContractYearTotal) schema.NullFloat { return r.EnrollmentLives }

// sumMembers adds every parseable enrollment in the group, independent of
// whether the row contributed to any weighted mean.
func sumMembers[T any](rows []T, lives func(T) schema.NullFloat) schema.NullFloat {
	var total float64
	for _, r := range rows {
		if v := lives(r); v.Valid {
			total += v.Float64
		}
	}
	return schema.Float(total)
}

// countContracts returns the number of distinct contract ids in the group.
func countContracts[T any](rows []T, id func(T) string) schema.NullFloat {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[id(r)] = struct{}{}
	}
	return schema.Float(float64(len(seen)))
}

// joinCodes returns the distinct non-empty measure codes, sorted and joined by "|".
func joinCodes(rows []schema.ContractRecord) string {
	seen := make(map[string]struct{})
	var codes []string
	for _, r := range rows {
		code := r.MeasureCodeObserved
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return strings.Join(codes, "|")
}

// DuplicateRecords counts contract records that repeat an earlier
// (contract, year, measure) key. Series extraction keeps the last of them.
func DuplicateRecords(records []schema.ContractRecord) int {
	seen := make(map[recordKey]struct{}, len(records))
	dups := 0
	for _, r := range records {
		k := recordKey{ContractID: r.ContractID, Year: r.RatingYear, MeasureKey: r.MeasureKey}
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}
