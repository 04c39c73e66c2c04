package schema

// TableRow is one (series, year) pair with a value, flattened for tables and export.
type TableRow struct {
	Year           int       `json:"year"`
	Scope          string    `json:"scope"`
	Entity         string    `json:"entity"`
	Metric         string    `json:"metric"`
	Value          float64   `json:"value"`
	MembersOrLives NullFloat `json:"members_or_lives"`
	Contracts      NullFloat `json:"contracts"`
	Codes          string    `json:"codes"`
}

// View is everything the presentation layer needs for one render pass.
type View struct {
	Title    string        `json:"title"`
	Meta     string        `json:"meta"`
	Metric   Metric        `json:"metric"`
	Measure  string        `json:"measure,omitempty"`
	Series   []DenseSeries `json:"series"`
	Visible  []DenseSeries `json:"-"`
	Scale    Scale         `json:"scale"`
	Rows     []TableRow    `json:"rows"`
	Filename string        `json:"filename"`
	Message  string        `json:"message,omitempty"`
}
