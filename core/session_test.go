package core

import (
	"testing"

	"github.com/huangsam/starsview/core/series"
	"github.com/huangsam/starsview/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	ds := fixtureDataset()
	sess := NewSession(ds, series.Measures(ds))

	assert.Equal(t, schema.ContractScope, sess.ActiveScope)
	assert.Equal(t, schema.RawMeasureData, sess.Metric)
	assert.Equal(t, flu, sess.MeasureKey)
	assert.Equal(t, []string{"all_ma:all_ma", "contract:H2002"}, selectionIDs(sess))
}

func TestNewSession_Empty(t *testing.T) {
	sess := NewSession(&schema.Dataset{}, nil)
	assert.Empty(t, sess.MeasureKey)
	assert.Equal(t, []string{"all_ma:all_ma"}, selectionIDs(sess), "market is selected even without data")
}

func TestSessionTransitionsDoNotMutate(t *testing.T) {
	base := EmptySession(nil)
	next := base.WithMetric(schema.MeasureStars).WithScope(schema.ParentScope).WithSearch("hum").WithMeasure(screening)

	assert.Equal(t, schema.RawMeasureData, base.Metric)
	assert.Equal(t, schema.MeasureStars, next.Metric)
	assert.Equal(t, schema.ParentScope, next.ActiveScope)
	assert.Equal(t, "hum", next.Search)
	assert.Equal(t, screening, next.MeasureKey)

	added, err := base.Add(schema.ParentScope, "Humana Inc.")
	require.NoError(t, err)
	assert.Equal(t, 0, base.Selections.Len())
	assert.Equal(t, 1, added.Selections.Len())

	hidden := added.ToggleHidden("parent:Humana Inc.")
	assert.False(t, added.Selections.IsHidden("parent:Humana Inc."))
	assert.True(t, hidden.Selections.IsHidden("parent:Humana Inc."))

	removed := hidden.Remove("parent:Humana Inc.")
	assert.Equal(t, 0, removed.Selections.Len())
	assert.False(t, removed.Selections.IsHidden("parent:Humana Inc."))
}

func TestToggleMarket(t *testing.T) {
	sess := EmptySession(nil)

	on, err := sess.Toggle(schema.MarketScope, schema.MarketEntityKey)
	require.NoError(t, err)
	assert.True(t, on.Selections.Contains("all_ma:all_ma"))

	off, err := on.Toggle(schema.MarketScope, schema.MarketEntityKey)
	require.NoError(t, err)
	assert.False(t, off.Selections.Contains("all_ma:all_ma"))
}

func TestToggleQuick(t *testing.T) {
	sess := EmptySession(nil)

	tests := []struct {
		name string
		id   string
	}{
		{"humana", "parent:Humana Inc."},
		{"cvs", "parent:CVS Health Corporation"},
		{"unh", "parent:UnitedHealth Group, Inc."},
		{"all_ma", "all_ma:all_ma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on, err := sess.ToggleQuick(tt.name)
			require.NoError(t, err)
			assert.True(t, on.Selections.Contains(tt.id))
			assert.True(t, on.QuickActive(tt.name))

			off, err := on.ToggleQuick(" " + tt.name + " ")
			require.NoError(t, err)
			assert.False(t, off.Selections.Contains(tt.id))
			assert.False(t, off.QuickActive(tt.name))
		})
	}

	_, err := sess.ToggleQuick("acme")
	assert.ErrorIs(t, err, ErrUnknownQuickTarget)
	assert.False(t, sess.QuickActive("acme"))
}

func TestSessionEntities(t *testing.T) {
	ds := fixtureDataset()
	sess := EmptySession(series.Measures(ds)).WithMeasure(screening)

	contracts := sess.Entities(ds)
	assert.Equal(t, []schema.EntityOption{{Value: "H1001", Label: "H1001"}, {Value: "H2002", Label: "H2002"}}, contracts)

	parents := sess.WithScope(schema.ParentScope).Entities(ds)
	require.Len(t, parents, 2)
	assert.Equal(t, "CVS Health Corporation", parents[0].Value)

	totals := sess.WithScope(schema.ParentScope).WithMetric(schema.TotalRawStarsScore).Entities(ds)
	assert.Len(t, totals, 2)

	market := sess.WithScope(schema.MarketScope).Entities(ds)
	assert.Equal(t, []schema.EntityOption{{Value: schema.MarketEntityKey, Label: schema.MarketLabel}}, market)
}

func TestFilterOptions(t *testing.T) {
	options := []schema.EntityOption{
		{Value: "Humana Inc.", Label: "Humana Inc."},
		{Value: "CVS Health Corporation", Label: "CVS Health Corporation"},
		{Value: "UnitedHealth Group, Inc.", Label: "UnitedHealth Group, Inc."},
	}

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"empty keeps all", "", []string{"Humana Inc.", "CVS Health Corporation", "UnitedHealth Group, Inc."}},
		{"blank keeps all", "   ", []string{"Humana Inc.", "CVS Health Corporation", "UnitedHealth Group, Inc."}},
		{"case insensitive", "HEALTH", []string{"CVS Health Corporation", "UnitedHealth Group, Inc."}},
		{"trimmed", "  inc. ", []string{"Humana Inc.", "UnitedHealth Group, Inc."}},
		{"no match", "kaiser", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, o := range FilterOptions(options, tt.search) {
				got = append(got, o.Value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
