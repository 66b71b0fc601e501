package combat

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned for a flat index or handle outside the registry.
var ErrIndexOutOfRange = errors.New("combat: index out of range")

// Handle is a stable reference to a registry entry. Its value is the entry's
// flat index, which never changes because entries are never removed.
type Handle int

// Registry is the ordered set of battle participants. Players occupy flat
// indices [0, P) and opponents [P, P+O).
type Registry struct {
	players   []*Combatant
	opponents []*Combatant
}

// NewRegistry builds a Registry and assigns each combatant its Side and Slot.
//
// Precondition: no combatant appears twice.
func NewRegistry(players, opponents []*Combatant) *Registry {
	r := &Registry{
		players:   append([]*Combatant(nil), players...),
		opponents: append([]*Combatant(nil), opponents...),
	}
	for i, c := range r.players {
		c.Side, c.Slot = SidePlayer, i
	}
	for i, c := range r.opponents {
		c.Side, c.Slot = SideOpponent, i
	}
	return r
}

// Len returns the total number of entries.
func (r *Registry) Len() int { return len(r.players) + len(r.opponents) }

// PlayerCount returns the number of player-side entries.
func (r *Registry) PlayerCount() int { return len(r.players) }

// Handle validates flat and returns the matching handle.
//
// Postcondition: returns an error wrapping ErrIndexOutOfRange when flat is not in [0, Len()).
func (r *Registry) Handle(flat int) (Handle, error) {
	if flat < 0 || flat >= r.Len() {
		return 0, fmt.Errorf("flat index %d of %d: %w", flat, r.Len(), ErrIndexOutOfRange)
	}
	return Handle(flat), nil
}

// At returns the combatant at flat.
func (r *Registry) At(flat int) (*Combatant, error) {
	h, err := r.Handle(flat)
	if err != nil {
		return nil, err
	}
	return r.Get(h)
}

// Get resolves h.
func (r *Registry) Get(h Handle) (*Combatant, error) {
	i := int(h)
	switch {
	case i >= 0 && i < len(r.players):
		return r.players[i], nil
	case i >= len(r.players) && i < r.Len():
		return r.opponents[i-len(r.players)], nil
	default:
		return nil, fmt.Errorf("handle %d: %w", i, ErrIndexOutOfRange)
	}
}

// Flat returns the flat index of h.
func (r *Registry) Flat(h Handle) int { return int(h) }

// HandleOf returns the handle of the combatant on side at slot.
func (r *Registry) HandleOf(side Side, slot int) (Handle, error) {
	if side == SidePlayer {
		if slot < 0 || slot >= len(r.players) {
			return 0, fmt.Errorf("player slot %d: %w", slot, ErrIndexOutOfRange)
		}
		return Handle(slot), nil
	}
	if slot < 0 || slot >= len(r.opponents) {
		return 0, fmt.Errorf("opponent slot %d: %w", slot, ErrIndexOutOfRange)
	}
	return Handle(len(r.players) + slot), nil
}

// IsAlive reports whether h names a living combatant. Invalid handles are not alive.
func (r *Registry) IsAlive(h Handle) bool {
	c, err := r.Get(h)
	return err == nil && c.Alive()
}

// MarkDefeated flags the combatant as defeated. The entry stays in place.
//
// Postcondition: IsAlive(h) is false.
func (r *Registry) MarkDefeated(h Handle) error {
	c, err := r.Get(h)
	if err != nil {
		return err
	}
	c.Defeated = true
	return nil
}

// Players returns the player-side combatants in slot order.
func (r *Registry) Players() []*Combatant { return append([]*Combatant(nil), r.players...) }

// Opponents returns the opponent-side combatants in slot order.
func (r *Registry) Opponents() []*Combatant { return append([]*Combatant(nil), r.opponents...) }

// Living returns the handles of living combatants on side, in slot order.
func (r *Registry) Living(side Side) []Handle {
	var out []Handle
	list, offset := r.players, 0
	if side == SideOpponent {
		list, offset = r.opponents, len(r.players)
	}
	for i, c := range list {
		if c.Alive() {
			out = append(out, Handle(offset+i))
		}
	}
	return out
}

// AllDefeated reports whether no combatant on side is alive.
func (r *Registry) AllDefeated(side Side) bool {
	return len(r.Living(side)) == 0
}

// SideOf returns the side of h.
func (r *Registry) SideOf(h Handle) Side {
	if int(h) < len(r.players) {
		return SidePlayer
	}
	return SideOpponent
}
