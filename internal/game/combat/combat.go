// Package combat implements the turn-based battle loop: the combatant
// registry, the action and target selection state machine, and round
// resolution.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/condition"
)

// Side distinguishes the player party from the opponents.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// String returns "player" or "opponent".
func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// Stats are the combat attributes of a combatant.
type Stats = character.Stats

// Combatant represents one participant in a battle: a party member or a monster.
type Combatant struct {
	ID         string
	Name       string
	Side       Side
	TemplateID string // archetype or monster template the combatant was built from
	Stats      Stats
	HP         int
	// Defeated is set once and never cleared for the rest of the battle.
	Defeated bool
	// Slot is the position within the combatant's side, assigned by the Registry.
	Slot    int
	Effects *condition.ActiveSet
}

// NewCombatant creates a Combatant at full HP with no active effects.
//
// Precondition: stats.MaxHP > 0.
func NewCombatant(id, name, template string, stats Stats) *Combatant {
	return &Combatant{
		ID:         id,
		Name:       name,
		TemplateID: template,
		Stats:      stats,
		HP:         stats.MaxHP,
		Effects:    condition.NewActiveSet(),
	}
}

// Alive reports whether the combatant can still act or be targeted.
func (c *Combatant) Alive() bool { return !c.Defeated && c.HP > 0 }

// Effective returns the combatant's stats with active buffs applied.
func (c *Combatant) Effective() Stats {
	if c.Effects == nil {
		return c.Stats
	}
	return c.Stats.With(c.Effects.StatBonus())
}

// ApplyDamage reduces HP by amount, flooring at zero, and returns the damage dealt.
//
// Precondition: amount must be >= 0.
// Postcondition: HP >= 0.
func (c *Combatant) ApplyDamage(amount int) int {
	dealt := min(amount, c.HP)
	c.HP -= dealt
	return dealt
}

// Heal raises HP by amount, capped at effective MaxHP, and returns the HP restored.
//
// Precondition: amount must be >= 0.
func (c *Combatant) Heal(amount int) int {
	restored := min(amount, max(0, c.Effective().MaxHP-c.HP))
	c.HP += restored
	return restored
}

// String returns "<name> (<hp>/<max>)".
func (c *Combatant) String() string {
	return fmt.Sprintf("%s (%d/%d)", c.Name, c.HP, c.Effective().MaxHP)
}
