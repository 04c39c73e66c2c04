package selection

import (
	"fmt"
	"testing"

	"github.com/huangsam/starsview/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, n int) State {
	t.Helper()
	var s State
	var err error
	for i := range n {
		s, err = s.Add(schema.ContractScope, fmt.Sprintf("H%04d", i))
		require.NoError(t, err)
	}
	return s
}

func TestAddAssignsLabelAndColor(t *testing.T) {
	var s State
	s, err := s.Add(schema.MarketScope, schema.MarketEntityKey)
	require.NoError(t, err)
	s, err = s.Add(schema.ParentScope, "Humana Inc.")
	require.NoError(t, err)

	sels := s.Selections()
	require.Len(t, sels, 2)
	assert.Equal(t, "all_ma:all_ma", sels[0].ID)
	assert.Equal(t, "All MA", sels[0].Label)
	assert.Equal(t, Palette[0], sels[0].Color)
	assert.Equal(t, "Humana Inc.", sels[1].Label)
	assert.Equal(t, Palette[1], sels[1].Color)
}

func TestAddDuplicateIsNoop(t *testing.T) {
	s := fill(t, 2)
	again, err := s.Add(schema.ContractScope, "H0001")
	require.NoError(t, err)
	assert.Equal(t, s.Selections(), again.Selections())
}

func TestCapacityIsExactlyEight(t *testing.T) {
	assert.Equal(t, 8, Capacity)

	s := fill(t, Capacity)
	assert.Equal(t, Capacity, s.Len())

	next, err := s.Add(schema.ParentScope, "Overflow Inc.")
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, Capacity, next.Len())
	assert.Equal(t, s.Selections(), next.Selections())
	assert.Equal(t, "Maximum 8 series selected.", next.Message())
	assert.Empty(t, s.Message(), "receiver is not modified")

	for i := range 20 {
		next, _ = next.Add(schema.ContractScope, fmt.Sprintf("X%d", i))
		assert.LessOrEqual(t, next.Len(), Capacity)
	}

	// Duplicates of present series still succeed at capacity.
	_, err = next.Add(schema.ContractScope, "H0000")
	assert.NoError(t, err)
}

func TestColorsStableOnRemove(t *testing.T) {
	s := fill(t, 5)
	before := map[string]string{}
	for _, sel := range s.Selections() {
		before[sel.ID] = sel.Color
	}

	s = s.Remove(schema.SeriesID(schema.ContractScope, "H0002"))
	require.Equal(t, 4, s.Len())
	for _, sel := range s.Selections() {
		assert.Equal(t, before[sel.ID], sel.Color, sel.ID)
	}

	s, err := s.Add(schema.ParentScope, "New Parent")
	require.NoError(t, err)
	added, ok := s.Find(schema.SeriesID(schema.ParentScope, "New Parent"))
	require.True(t, ok)
	assert.Equal(t, Palette[4], added.Color, "color comes from the position at add time")
}

func TestRemoveClearsHiddenAndMessage(t *testing.T) {
	s := fill(t, Capacity)
	s, _ = s.Add(schema.ParentScope, "Overflow Inc.")
	require.NotEmpty(t, s.Message())

	id := schema.SeriesID(schema.ContractScope, "H0003")
	s = s.ToggleHidden(id)
	require.True(t, s.IsHidden(id))

	s = s.Remove(id)
	assert.False(t, s.Contains(id))
	assert.False(t, s.IsHidden(id))
	assert.Empty(t, s.Message())

	// Re-adding does not resurrect the hidden flag.
	s, err := s.Add(schema.ContractScope, "H0003")
	require.NoError(t, err)
	assert.False(t, s.IsHidden(id))
}

func TestRemoveAbsent(t *testing.T) {
	s := fill(t, 2)
	next := s.Remove("contract:missing")
	assert.Equal(t, s.Selections(), next.Selections())
}

func TestToggleMarketClearsMessage(t *testing.T) {
	var s State
	s, err := s.Toggle(schema.MarketScope, schema.MarketEntityKey)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	s = fill(t, Capacity)
	s, _ = s.Add(schema.MarketScope, schema.MarketEntityKey)
	require.Equal(t, "Maximum 8 series selected.", s.Message())
	for _, sel := range s.Selections() {
		s, err = s.Toggle(sel.Scope, sel.EntityKey)
		require.NoError(t, err)
	}
	assert.Zero(t, s.Len())

	var m State
	m, err = m.Toggle(schema.MarketScope, schema.MarketEntityKey)
	require.NoError(t, err)
	m, err = m.Toggle(schema.MarketScope, schema.MarketEntityKey)
	require.NoError(t, err)
	assert.Empty(t, m.Selections())
	assert.Empty(t, m.Message())
}

func TestToggleHidden(t *testing.T) {
	s := fill(t, 3)
	id := schema.SeriesID(schema.ContractScope, "H0001")

	s = s.ToggleHidden(id)
	assert.True(t, s.IsHidden(id))
	visible := s.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "H0000", visible[0].EntityKey)
	assert.Equal(t, "H0002", visible[1].EntityKey)

	s = s.ToggleHidden(id)
	assert.False(t, s.IsHidden(id))
	assert.Len(t, s.Visible(), 3)

	s = s.ToggleHidden("contract:unknown")
	assert.Empty(t, s.Hidden())
}

func TestTransitionsDoNotAlias(t *testing.T) {
	base := fill(t, 3)
	hidden := base.ToggleHidden(schema.SeriesID(schema.ContractScope, "H0000"))
	removed := hidden.Remove(schema.SeriesID(schema.ContractScope, "H0001"))

	assert.Equal(t, 3, base.Len())
	assert.Empty(t, base.Hidden())
	assert.Equal(t, 3, hidden.Len())
	assert.Equal(t, 2, removed.Len())
	assert.True(t, removed.IsHidden(schema.SeriesID(schema.ContractScope, "H0000")))
}
