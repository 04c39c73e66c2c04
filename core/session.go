package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/starsview/core/selection"
	"github.com/huangsam/starsview/core/series"
	"github.com/huangsam/starsview/schema"
)

// ErrUnknownQuickTarget is returned for quick toggles that are not defined.
var ErrUnknownQuickTarget = errors.New("unknown quick target")

// QuickTarget is a preset series reachable with a single toggle.
type QuickTarget struct {
	Scope     schema.Scope
	EntityKey string
}

// QuickTargets lists the preset series by short name.
var QuickTargets = map[string]QuickTarget{
	"humana": {Scope: schema.ParentScope, EntityKey: "Humana Inc."},
	"cvs":    {Scope: schema.ParentScope, EntityKey: "CVS Health Corporation"},
	"unh":    {Scope: schema.ParentScope, EntityKey: "UnitedHealth Group, Inc."},
	"all_ma": {Scope: schema.MarketScope, EntityKey: schema.MarketEntityKey},
}

// Session is the whole interactive state. Transitions are value methods that
// return a new Session; the receiver is never modified.
type Session struct {
	ActiveScope schema.Scope
	Metric      schema.Metric
	MeasureKey  string
	Search      string
	Selections  selection.State
}

// NewSession returns the start-up state: the first measure is active, the
// market series is selected and so is the first contract for that measure.
func NewSession(ds *schema.Dataset, measures []schema.Measure) Session {
	return EmptySession(measures).WithDefaultSelections(ds)
}

// WithDefaultSelections adds the market series and the first contract for the
// active metric and measure.
func (s Session) WithDefaultSelections(ds *schema.Dataset) Session {
	s, _ = s.Add(schema.MarketScope, schema.MarketEntityKey)
	if first := series.DefaultEntity(ds, schema.ContractScope, s.Metric, s.MeasureKey); first != "" {
		s, _ = s.Add(schema.ContractScope, first)
	}
	return s
}

// EmptySession returns a session with the first measure active and nothing selected.
func EmptySession(measures []schema.Measure) Session {
	sess := Session{
		ActiveScope: schema.ContractScope,
		Metric:      schema.RawMeasureData,
	}
	if len(measures) > 0 {
		sess.MeasureKey = measures[0].Key
	}
	return sess
}

// WithMetric switches the compared metric.
func (s Session) WithMetric(metric schema.Metric) Session {
	s.Metric = metric
	return s
}

// WithMeasure switches the active measure.
func (s Session) WithMeasure(key string) Session {
	s.MeasureKey = key
	return s
}

// WithScope switches the scope used for entity browsing.
func (s Session) WithScope(scope schema.Scope) Session {
	s.ActiveScope = scope
	return s
}

// WithSearch sets the entity filter text.
func (s Session) WithSearch(query string) Session {
	s.Search = query
	return s
}

// Add selects a series. See selection.State.Add for capacity semantics.
func (s Session) Add(scope schema.Scope, entityKey string) (Session, error) {
	next, err := s.Selections.Add(scope, entityKey)
	s.Selections = next
	return s, err
}

// Remove deselects a series by id.
func (s Session) Remove(id string) Session {
	s.Selections = s.Selections.Remove(id)
	return s
}

// Toggle selects or deselects a series.
func (s Session) Toggle(scope schema.Scope, entityKey string) (Session, error) {
	next, err := s.Selections.Toggle(scope, entityKey)
	s.Selections = next
	return s, err
}

// ToggleHidden flips the visibility of a selected series.
func (s Session) ToggleHidden(id string) Session {
	s.Selections = s.Selections.ToggleHidden(id)
	return s
}

// ToggleQuick toggles one of the preset series by short name.
func (s Session) ToggleQuick(name string) (Session, error) {
	target, ok := QuickTargets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownQuickTarget, name)
	}
	return s.Toggle(target.Scope, target.EntityKey)
}

// QuickActive reports whether the preset series is currently selected.
func (s Session) QuickActive(name string) bool {
	target, ok := QuickTargets[name]
	return ok && s.Selections.Contains(schema.SeriesID(target.Scope, target.EntityKey))
}

// Entities lists the options of the active scope that match the search text.
func (s Session) Entities(ds *schema.Dataset) []schema.EntityOption {
	return FilterOptions(series.EntityOptions(ds, s.ActiveScope, s.Metric, s.MeasureKey), s.Search)
}

// FilterOptions keeps options whose label contains search, ignoring case and
// surrounding whitespace. An empty search keeps everything.
func FilterOptions(options []schema.EntityOption, search string) []schema.EntityOption {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return options
	}
	out := make([]schema.EntityOption, 0, len(options))
	for _, o := range options {
		if strings.Contains(strings.ToLower(o.Label), q) {
			out = append(out, o)
		}
	}
	return out
}
