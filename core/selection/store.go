// Package selection tracks the ordered set of compared series.
package selection

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/starsview/schema"
)

// Capacity is the maximum number of selected series.
const Capacity = 8

// Palette holds the series colors. A selection's color is fixed when it is added.
var Palette = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#17becf",
	"#8c564b",
	"#e377c2",
}

// ErrCapacityExceeded is returned by Add when the store is full.
var ErrCapacityExceeded = errors.New("selection capacity exceeded")

// capacityMessage is the user-facing text set when Add hits the limit.
var capacityMessage = fmt.Sprintf("Maximum %d series selected.", Capacity)

// State is an immutable snapshot of the selection store. Every transition
// returns a new State and leaves the receiver untouched.
type State struct {
	list    []schema.Selection
	hidden  map[string]struct{}
	message string
}

// Selections returns the selected series in insertion order.
func (s State) Selections() []schema.Selection {
	return slices.Clone(s.list)
}

// Len returns the number of selected series.
func (s State) Len() int {
	return len(s.list)
}

// Message returns the last user-visible message, or "".
func (s State) Message() string {
	return s.message
}

// Contains reports whether a series id is selected.
func (s State) Contains(id string) bool {
	return s.index(id) >= 0
}

// Find returns the selection with the given id.
func (s State) Find(id string) (schema.Selection, bool) {
	if i := s.index(id); i >= 0 {
		return s.list[i], true
	}
	return schema.Selection{}, false
}

// IsHidden reports whether a selected series is hidden from display.
func (s State) IsHidden(id string) bool {
	_, ok := s.hidden[id]
	return ok
}

// Hidden returns the set of hidden series ids.
func (s State) Hidden() map[string]struct{} {
	return maps.Clone(s.hidden)
}

// Visible returns the selections that are not hidden, in insertion order.
func (s State) Visible() []schema.Selection {
	out := make([]schema.Selection, 0, len(s.list))
	for _, sel := range s.list {
		if !s.IsHidden(sel.ID) {
			out = append(out, sel)
		}
	}
	return out
}

// Add appends the (scope, entityKey) series. Adding a present series is a
// no-op. At capacity it returns ErrCapacityExceeded together with a State that
// carries the capacity message and the unchanged list.
func (s State) Add(scope schema.Scope, entityKey string) (State, error) {
	id := schema.SeriesID(scope, entityKey)
	if s.Contains(id) {
		return s, nil
	}
	if len(s.list) >= Capacity {
		next := s.clone()
		next.message = capacityMessage
		return next, ErrCapacityExceeded
	}

	label := entityKey
	if scope == schema.MarketScope {
		label = schema.MarketLabel
	}

	next := s.clone()
	next.list = append(next.list, schema.Selection{
		ID:        id,
		Scope:     scope,
		EntityKey: entityKey,
		Label:     label,
		Color:     Palette[len(s.list)%len(Palette)],
	})
	next.message = ""
	return next, nil
}

// Remove drops the series with id and clears its hidden flag and the message.
// Removing an absent id only clears the message.
func (s State) Remove(id string) State {
	next := s.clone()
	next.list = slices.DeleteFunc(next.list, func(sel schema.Selection) bool {
		return sel.ID == id
	})
	delete(next.hidden, id)
	next.message = ""
	return next
}

// Toggle removes the series if present, otherwise adds it.
func (s State) Toggle(scope schema.Scope, entityKey string) (State, error) {
	id := schema.SeriesID(scope, entityKey)
	if s.Contains(id) {
		return s.Remove(id), nil
	}
	return s.Add(scope, entityKey)
}

// ToggleHidden flips the visibility of a selected series. Unknown ids are ignored.
func (s State) ToggleHidden(id string) State {
	if !s.Contains(id) {
		return s
	}
	next := s.clone()
	if _, ok := next.hidden[id]; ok {
		delete(next.hidden, id)
	} else {
		next.hidden[id] = struct{}{}
	}
	return next
}

func (s State) index(id string) int {
	return slices.IndexFunc(s.list, func(sel schema.Selection) bool {
		return sel.ID == id
	})
}

func (s State) clone() State {
	hidden := make(map[string]struct{}, len(s.hidden))
	maps.Copy(hidden, s.hidden)
	return State{
		list:    slices.Clone(s.list),
		hidden:  hidden,
		message: s.message,
	}
}
