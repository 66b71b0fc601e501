package craft

import (
	"fmt"

	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

// Effect is one applied effect of a crafted ability. The set of variants is
// closed: DamageEffect, HealEffect, BuffEffect, StatusEffect.
type Effect interface {
	// Info returns a one-line human readable summary.
	Info() string
	effect()
}

// DamageEffect deals Min..Max damage to each target, doubled on a crit.
type DamageEffect struct {
	Min        int
	Max        int
	CritChance float64
	Area       bool
}

// HealEffect restores Amount HP to each target.
type HealEffect struct {
	Amount int
	Area   bool
}

// BuffEffect grants Deltas to each target for Duration rounds.
type BuffEffect struct {
	Duration int
	Deltas   gem.StatDeltas
}

// StatusEffect applies Condition to each target for Duration rounds with the given chance.
type StatusEffect struct {
	Condition string
	Duration  int
	Chance    float64
}

func (DamageEffect) effect() {}
func (HealEffect) effect()   {}
func (BuffEffect) effect()   {}
func (StatusEffect) effect() {}

func (e DamageEffect) Info() string {
	s := fmt.Sprintf("deals %d-%d damage (%.0f%% crit)", e.Min, e.Max, e.CritChance*100)
	if e.Area {
		s += " to an area"
	}
	return s
}

func (e HealEffect) Info() string {
	s := fmt.Sprintf("heals %d HP", e.Amount)
	if e.Area {
		s += " to an area"
	}
	return s
}

func (e BuffEffect) Info() string {
	return fmt.Sprintf("%s for %d rounds", e.Deltas, e.Duration)
}

func (e StatusEffect) Info() string {
	return fmt.Sprintf("%.0f%% chance to inflict %s for %d rounds", e.Chance*100, e.Condition, e.Duration)
}
