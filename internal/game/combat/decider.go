package combat

import "github.com/cory-johannsen/skillforge/internal/game/craft"

// CombatantView is a read-only copy of one registry entry.
type CombatantView struct {
	Flat       int
	Name       string
	Side       Side
	TemplateID string
	HP         int
	MaxHP      int
	Stats      Stats // effective stats, buffs included
	Alive      bool
	Conditions []string
}

// Snapshot is the battle state handed to a Decider.
type Snapshot struct {
	Round      int
	Combatants []CombatantView
}

// Living returns the living combatants on side, in flat order.
func (s Snapshot) Living(side Side) []CombatantView {
	var out []CombatantView
	for _, c := range s.Combatants {
		if c.Alive && c.Side == side {
			out = append(out, c)
		}
	}
	return out
}

// Decision is what a Decider wants one opponent to do.
// Targets are flat indices. Invalid, defeated, or surplus targets are dropped.
type Decision struct {
	Kind    ActionKind
	Ability *craft.Descriptor
	Targets []int
}

// Decider chooses actions for opponent combatants. Decide is synchronous and
// must return promptly; the battle has no timeout.
type Decider interface {
	Decide(view Snapshot, actor int) Decision
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(view Snapshot, actor int) Decision

// Decide calls f.
func (f DeciderFunc) Decide(view Snapshot, actor int) Decision { return f(view, actor) }
