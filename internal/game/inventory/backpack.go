// Package inventory holds a player's skill gems and runes.
package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

var (
	// ErrFull is returned when an add would exceed the slot limit.
	ErrFull = errors.New("backpack: not enough slots")
	// ErrNotFound is returned when no gem or rune has the requested ID.
	ErrNotFound = errors.New("backpack: item not found")
)

// Backpack is a slot-limited container of gems and runes. Each gem and each
// rune occupies one slot. It is not safe for concurrent use.
type Backpack struct {
	MaxSlots int
	gems     []*gem.Component
	runes    []craft.Rune
}

// NewBackpack creates a Backpack with the given slot limit.
//
// Precondition: maxSlots >= 0.
// Postcondition: returned Backpack is empty.
func NewBackpack(maxSlots int) *Backpack {
	return &Backpack{MaxSlots: maxSlots}
}

// AddGem places g in the backpack.
//
// Precondition: g must not be nil.
// Postcondition: on error, backpack state is unchanged.
func (b *Backpack) AddGem(g *gem.Component) error {
	if g == nil {
		return errors.New("backpack: gem must not be nil")
	}
	if b.UsedSlots() >= b.MaxSlots {
		return fmt.Errorf("adding gem %q: %w", g.ID, ErrFull)
	}
	if _, ok := b.FindGem(g.ID); ok {
		return fmt.Errorf("backpack: gem %q already stored", g.ID)
	}
	b.gems = append(b.gems, g)
	return nil
}

// RemoveGem removes the gem identified by id.
//
// Postcondition: returns an error wrapping ErrNotFound if no gem matched.
func (b *Backpack) RemoveGem(id string) error {
	for i, g := range b.gems {
		if g.ID == id {
			b.gems = append(b.gems[:i], b.gems[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("removing gem %q: %w", id, ErrNotFound)
}

// FindGem returns the gem with the given ID.
func (b *Backpack) FindGem(id string) (*gem.Component, bool) {
	for _, g := range b.gems {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// Gems returns a snapshot of the stored gems in the order they were added.
//
// Postcondition: returned slice is a copy; the gems themselves are immutable.
func (b *Backpack) Gems() []*gem.Component {
	out := make([]*gem.Component, len(b.gems))
	copy(out, b.gems)
	return out
}

// AddRune places r in the backpack.
//
// Postcondition: on error, backpack state is unchanged.
func (b *Backpack) AddRune(r craft.Rune) error {
	if b.UsedSlots() >= b.MaxSlots {
		return fmt.Errorf("adding rune %q: %w", r.ID, ErrFull)
	}
	b.runes = append(b.runes, r)
	return nil
}

// TakeRune removes and returns the rune identified by id. Runes are single use.
func (b *Backpack) TakeRune(id string) (craft.Rune, error) {
	for i, r := range b.runes {
		if r.ID == id {
			b.runes = append(b.runes[:i], b.runes[i+1:]...)
			return r, nil
		}
	}
	return craft.Rune{}, fmt.Errorf("taking rune %q: %w", id, ErrNotFound)
}

// Runes returns a snapshot of the stored runes in the order they were added.
func (b *Backpack) Runes() []craft.Rune {
	out := make([]craft.Rune, len(b.runes))
	copy(out, b.runes)
	return out
}

// UsedSlots returns the number of occupied slots.
//
// Postcondition: result >= 0 and <= MaxSlots.
func (b *Backpack) UsedSlots() int {
	return len(b.gems) + len(b.runes)
}

var _ craft.Inventory = (*Backpack)(nil)
