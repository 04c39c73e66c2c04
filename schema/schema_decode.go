package schema

import (
	"bytes"
	"encoding/json"
)

// looseString decodes text fields that some sources emit as numbers.
// Strings are kept, numbers and true keep their literal text, and null,
// false, objects and arrays decode to "".
type looseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *looseString) UnmarshalJSON(data []byte) error {
	*s = ""
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case data[0] == '{' || data[0] == '[':
		return nil
	default:
		*s = looseString(data)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ContractRecord) UnmarshalJSON(data []byte) error {
	type plain ContractRecord
	var aux struct {
		plain
		ContractID            looseString `json:"contract_id"`
		MeasureKey            looseString `json:"measure_name_canonical_key"`
		MeasureName           looseString `json:"measure_name_canonical"`
		MeasureNameNormalized looseString `json:"measure_name_normalized"`
		MeasureNameRaw        looseString `json:"measure_name_raw"`
		ParentOrganization    looseString `json:"parent_organization"`
		MeasureCodeObserved   looseString `json:"measure_code_observed"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ContractRecord(aux.plain)
	r.ContractID = string(aux.ContractID)
	r.MeasureKey = string(aux.MeasureKey)
	r.MeasureName = string(aux.MeasureName)
	r.MeasureNameNormalized = string(aux.MeasureNameNormalized)
	r.MeasureNameRaw = string(aux.MeasureNameRaw)
	r.ParentOrganization = string(aux.ParentOrganization)
	r.MeasureCodeObserved = string(aux.MeasureCodeObserved)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ContractYearTotal) UnmarshalJSON(data []byte) error {
	type plain ContractYearTotal
	var aux struct {
		plain
		ContractID         looseString `json:"contract_id"`
		ParentOrganization looseString `json:"parent_organization"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ContractYearTotal(aux.plain)
	r.ContractID = string(aux.ContractID)
	r.ParentOrganization = string(aux.ParentOrganization)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ParentAggregate) UnmarshalJSON(data []byte) error {
	type plain ParentAggregate
	var aux struct {
		plain
		ParentOrganization  looseString `json:"parent_organization"`
		MeasureName         looseString `json:"measure_name_canonical"`
		MeasureKey          looseString `json:"measure_name_canonical_key"`
		MeasureCodeObserved looseString `json:"measure_code_observed"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ParentAggregate(aux.plain)
	r.ParentOrganization = string(aux.ParentOrganization)
	r.MeasureName = string(aux.MeasureName)
	r.MeasureKey = string(aux.MeasureKey)
	r.MeasureCodeObserved = string(aux.MeasureCodeObserved)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ParentYearTotal) UnmarshalJSON(data []byte) error {
	type plain ParentYearTotal
	var aux struct {
		plain
		ParentOrganization looseString `json:"parent_organization"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ParentYearTotal(aux.plain)
	r.ParentOrganization = string(aux.ParentOrganization)
	return nil
}
