package schema

// Selection is one user-chosen series. Identity is (Scope, EntityKey).
type Selection struct {
	ID        string `json:"id"`
	Scope     Scope  `json:"scope"`
	EntityKey string `json:"entity_key"`
	Label     string `json:"label"`
	Color     string `json:"color"`
}

// SeriesID returns the identity key of a (scope, entity) pair.
func SeriesID(scope Scope, entityKey string) string {
	return string(scope) + ":" + entityKey
}

// SeriesPoint is one year of a series. Value is invalid for gaps.
type SeriesPoint struct {
	Year               int       `json:"year"`
	Value              NullFloat `json:"value"`
	Entity             string    `json:"entity"`
	Scope              Scope     `json:"scope"`
	EnrollmentLives    NullFloat `json:"enrollment_lives"`
	MembersIncluded    NullFloat `json:"members_included"`
	ContractsIncluded  NullFloat `json:"contracts_included"`
	ParentOrganization string    `json:"parent_organization,omitempty"`
	Code               string    `json:"code"`
}

// DenseSeries is a selection with one point per year of the window.
type DenseSeries struct {
	Selection
	Points []SeriesPoint `json:"points"`
}

// Values returns the point values in year order.
func (s DenseSeries) Values() []NullFloat {
	values := make([]NullFloat, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Scale is a y-axis domain with tick positions.
type Scale struct {
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Ticks []float64 `json:"ticks"`
}
