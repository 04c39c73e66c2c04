// Package schema has models, enumerations and constants for all parts of starsview.
package schema

// ContractRecord is one (contract, rating year, measure) observation.
type ContractRecord struct {
	ContractID              string    `json:"contract_id"`
	RatingYear              Year      `json:"rating_year"`
	MeasureKey              string    `json:"measure_name_canonical_key"`
	MeasureName             string    `json:"measure_name_canonical"`
	MeasureNameNormalized   string    `json:"measure_name_normalized,omitempty"`
	MeasureNameRaw          string    `json:"measure_name_raw,omitempty"`
	RawMeasureData          NullFloat `json:"raw_measure_data"`
	MeasureStars            NullFloat `json:"measure_stars"`
	StarWeight              NullFloat `json:"star_weight"`
	CalculatedRawStarsScore NullFloat `json:"calculated_raw_stars_score"`
	EnrollmentLives         NullFloat `json:"enrollment_lives"`
	ParentOrganization      string    `json:"parent_organization"`
	MeasureCodeObserved     string    `json:"measure_code_observed"`
}

// ContractYearTotal is one (contract, rating year) total raw score.
type ContractYearTotal struct {
	ContractID         string    `json:"contract_id"`
	RatingYear         Year      `json:"rating_year"`
	ParentOrganization string    `json:"parent_organization"`
	TotalRawStarsScore NullFloat `json:"total_raw_stars_score_contract_year"`
	EnrollmentLives    NullFloat `json:"enrollment_lives"`
}

// ParentAggregate is the enrollment-weighted roll-up of one measure for one
// organization in one year. Market-wide aggregates share this shape.
type ParentAggregate struct {
	RatingYear                      Year      `json:"rating_year"`
	ParentOrganization              string    `json:"parent_organization"`
	MeasureName                     string    `json:"measure_name_canonical"`
	MeasureKey                      string    `json:"measure_name_canonical_key"`
	MeasureCodeObserved             string    `json:"measure_code_observed"`
	WeightedRawMeasureData          NullFloat `json:"weighted_raw_measure_data"`
	WeightedMeasureStars            NullFloat `json:"weighted_measure_stars"`
	WeightedStarWeight              NullFloat `json:"weighted_star_weight"`
	WeightedCalculatedRawStarsScore NullFloat `json:"weighted_calculated_raw_stars_score"`
	MembersIncluded                 NullFloat `json:"members_included"`
	ContractsIncluded               NullFloat `json:"contracts_included"`
}

// ParentYearTotal is the enrollment-weighted total raw score of one
// organization in one year. Market-wide year totals share this shape.
type ParentYearTotal struct {
	RatingYear                 Year      `json:"rating_year"`
	ParentOrganization         string    `json:"parent_organization"`
	WeightedTotalRawStarsScore NullFloat `json:"weighted_total_raw_stars_score"`
	MembersIncluded            NullFloat `json:"members_included"`
	ContractsIncluded          NullFloat `json:"contracts_included"`
}

// Metadata describes how a dataset was generated.
type Metadata struct {
	GeneratedAtUTC string `json:"generated_at_utc"`
}

// Dataset holds the six record collections that make up one load.
type Dataset struct {
	ContractRecords    []ContractRecord    `json:"contract_records"`
	ContractYearTotals []ContractYearTotal `json:"contract_year_totals"`
	ParentAggregates   []ParentAggregate   `json:"parent_aggregates"`
	ParentYearTotals   []ParentYearTotal   `json:"parent_year_totals"`
	MarketAggregates   []ParentAggregate   `json:"all_ma_aggregates"`
	MarketYearTotals   []ParentYearTotal   `json:"all_ma_year_totals"`
	Metadata           *Metadata           `json:"metadata,omitempty"`
}

// Append merges another shard into the dataset, preserving record order.
func (d *Dataset) Append(shard Dataset) {
	d.ContractRecords = append(d.ContractRecords, shard.ContractRecords...)
	d.ContractYearTotals = append(d.ContractYearTotals, shard.ContractYearTotals...)
	d.ParentAggregates = append(d.ParentAggregates, shard.ParentAggregates...)
	d.ParentYearTotals = append(d.ParentYearTotals, shard.ParentYearTotals...)
	d.MarketAggregates = append(d.MarketAggregates, shard.MarketAggregates...)
	d.MarketYearTotals = append(d.MarketYearTotals, shard.MarketYearTotals...)
	if shard.Metadata != nil {
		d.Metadata = shard.Metadata
	}
}

// GeneratedAt returns the generation timestamp or "unknown".
func (d *Dataset) GeneratedAt() string {
	if d.Metadata != nil && d.Metadata.GeneratedAtUTC != "" {
		return d.Metadata.GeneratedAtUTC
	}
	return "unknown"
}

// Measure is one entry of the measure catalog.
type Measure struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// EntityOption is a selectable entity within a scope.
type EntityOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
