package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseStringUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"H1001"`, "H1001"},
		{`1001`, "1001"},
		{`2.5`, "2.5"},
		{`true`, "true"},
		{`false`, ""},
		{`null`, ""},
		{`{"a":1}`, ""},
		{`[1]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s looseString
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, string(s))
		})
	}
}

func TestDatasetNumericTextFields(t *testing.T) {
	raw := `{
  "contract_records": [
    {"contract_id": 1001, "rating_year": "2021", "measure_name_canonical_key": 7,
     "measure_name_canonical": "Screening", "measure_code_observed": 12,
     "parent_organization": null, "raw_measure_data": "71.5", "enrollment_lives": 300}
  ],
  "contract_year_totals": [
    {"contract_id": 1001, "rating_year": 2021, "parent_organization": 42,
     "total_raw_stars_score_contract_year": 3.9}
  ],
  "all_ma_aggregates": [],
  "parent_aggregates": [
    {"rating_year": 2021, "parent_organization": "Humana Inc.", "measure_name_canonical_key": "c01",
     "measure_code_observed": 3, "weighted_raw_measure_data": 70}
  ],
  "parent_year_totals": [
    {"rating_year": 2021, "parent_organization": 99, "weighted_total_raw_stars_score": 4}
  ]
}`
	var ds Dataset
	require.NoError(t, json.Unmarshal([]byte(raw), &ds))

	require.Len(t, ds.ContractRecords, 1)
	r := ds.ContractRecords[0]
	assert.Equal(t, "1001", r.ContractID)
	assert.Equal(t, Year(2021), r.RatingYear)
	assert.Equal(t, "7", r.MeasureKey)
	assert.Equal(t, "Screening", r.MeasureName)
	assert.Equal(t, "12", r.MeasureCodeObserved)
	assert.Empty(t, r.ParentOrganization)
	assert.Equal(t, Float(71.5), r.RawMeasureData)
	assert.Equal(t, Float(300), r.EnrollmentLives)

	require.Len(t, ds.ContractYearTotals, 1)
	assert.Equal(t, "1001", ds.ContractYearTotals[0].ContractID)
	assert.Equal(t, "42", ds.ContractYearTotals[0].ParentOrganization)
	assert.Equal(t, Float(3.9), ds.ContractYearTotals[0].TotalRawStarsScore)

	require.Len(t, ds.ParentAggregates, 1)
	assert.Equal(t, "3", ds.ParentAggregates[0].MeasureCodeObserved)
	assert.Equal(t, "c01", ds.ParentAggregates[0].MeasureKey)
	assert.Equal(t, Float(70), ds.ParentAggregates[0].WeightedRawMeasureData)

	require.Len(t, ds.ParentYearTotals, 1)
	assert.Equal(t, "99", ds.ParentYearTotals[0].ParentOrganization)
	assert.Equal(t, Float(4), ds.ParentYearTotals[0].WeightedTotalRawStarsScore)
}

func TestContractRecordRoundTrip(t *testing.T) {
	in := ContractRecord{ContractID: "H1", RatingYear: 2020, MeasureKey: "c01", ParentOrganization: "Humana Inc.", MeasureStars: Float(4)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	var out ContractRecord
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
