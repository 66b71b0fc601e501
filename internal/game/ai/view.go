// Package ai provides the opponent decision providers: a weighted behaviour
// table driven by monster templates and a Lua-scripted provider that falls
// back to it.
package ai

import (
	"sort"

	"github.com/cory-johannsen/skillforge/internal/game/combat"
)

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func HPPercent(c combat.CombatantView) float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

func sideOf(view combat.Snapshot, actor int) (combat.Side, bool) {
	if actor < 0 || actor >= len(view.Combatants) {
		return 0, false
	}
	return view.Combatants[actor].Side, true
}

// Enemies returns the living combatants opposing actor, in flat order.
//
// Postcondition: empty when actor is out of range.
func Enemies(view combat.Snapshot, actor int) []combat.CombatantView {
	side, ok := sideOf(view, actor)
	if !ok {
		return nil
	}
	if side == combat.SidePlayer {
		return view.Living(combat.SideOpponent)
	}
	return view.Living(combat.SidePlayer)
}

// Allies returns the living combatants on actor's side, actor included.
func Allies(view combat.Snapshot, actor int) []combat.CombatantView {
	side, ok := sideOf(view, actor)
	if !ok {
		return nil
	}
	return view.Living(side)
}

// Focus orders candidate targets.
type Focus string

const (
	FocusWeakest   Focus = "weakest"
	FocusStrongest Focus = "strongest"
	FocusRandom    Focus = "random"
)

// orderBy sorts cs in place by HP percentage: ascending for weakest,
// descending for strongest. Ties keep flat order. Random leaves cs unchanged;
// the caller shuffles.
func orderBy(cs []combat.CombatantView, f Focus) {
	switch f {
	case FocusStrongest:
		sort.SliceStable(cs, func(i, j int) bool { return HPPercent(cs[i]) > HPPercent(cs[j]) })
	case FocusRandom:
	default:
		sort.SliceStable(cs, func(i, j int) bool { return HPPercent(cs[i]) < HPPercent(cs[j]) })
	}
}

func flats(cs []combat.CombatantView, n int) []int {
	n = min(n, len(cs))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = cs[i].Flat
	}
	return out
}
