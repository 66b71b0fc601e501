// Package craft combines skill gems into abilities: the in-progress gem
// selection, the resolver that folds a selection into an ability descriptor,
// and the crafting session that consumes gems and saves the result.
package craft

import "github.com/cory-johannsen/skillforge/internal/game/gem"

// primary reports whether c is one of the mutually exclusive primary payload kinds.
func primary(c gem.Category) bool {
	return c == gem.CategoryDamage || c == gem.CategoryHeal
}

// Conflicts reports whether a and b may not coexist in one Selection.
// Two element gems conflict, two primary payload gems (damage or heal)
// conflict, and any other pair conflicts only when the subtypes are equal.
func Conflicts(a, b *gem.Component) bool {
	ca, cb := a.Category(), b.Category()
	switch {
	case ca == gem.CategoryElement && cb == gem.CategoryElement:
		return true
	case primary(ca) && primary(cb):
		return true
	default:
		return a.Subtype == b.Subtype
	}
}

// Selection is the ordered set of gems chosen for the current craft.
// It is not safe for concurrent use.
//
// Invariant: no two members satisfy Conflicts.
type Selection struct {
	items []*gem.Component
}

// NewSelection returns an empty Selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Insert adds c after evicting every member that conflicts with it.
// Insertion never fails.
//
// Precondition: c must not be nil.
// Postcondition: c is the last member; evicted lists the removed members, most recent first.
func (s *Selection) Insert(c *gem.Component) (evicted []*gem.Component) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if Conflicts(s.items[i], c) {
			evicted = append(evicted, s.items[i])
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
	}
	s.items = append(s.items, c)
	return evicted
}

// Remove deletes the member with the given gem ID.
//
// Postcondition: returns false when no member had that ID.
func (s *Selection) Remove(id string) bool {
	for i, c := range s.items {
		if c.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Toggle removes c if it is already selected, otherwise inserts it.
//
// Postcondition: selected reports whether c is a member afterwards.
func (s *Selection) Toggle(c *gem.Component) (selected bool, evicted []*gem.Component) {
	if s.Remove(c.ID) {
		return false, nil
	}
	return true, s.Insert(c)
}

// Contains reports whether a gem with the given ID is selected.
func (s *Selection) Contains(id string) bool {
	for _, c := range s.items {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Components returns the members in insertion order.
//
// Postcondition: the returned slice is a copy.
func (s *Selection) Components() []*gem.Component {
	out := make([]*gem.Component, len(s.items))
	copy(out, s.items)
	return out
}

// IDs returns the member gem IDs in insertion order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.items))
	for i, c := range s.items {
		out[i] = c.ID
	}
	return out
}

// Len returns the number of selected gems.
func (s *Selection) Len() int { return len(s.items) }

// Clear empties the selection.
func (s *Selection) Clear() { s.items = nil }
