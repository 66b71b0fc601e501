// Package sim drives whole play sessions without a player: it forges
// abilities from generated gems, then fights encounters until the party wins,
// loses, or escapes.
package sim

import (
	"cmp"
	"slices"

	"github.com/cory-johannsen/skillforge/internal/game/ai"
	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
)

// Choice is what the autopilot wants one party member to do.
type Choice struct {
	Kind    combat.ActionKind
	Ability *craft.Descriptor // set for ActionCast
	RuneID  string            // set for ActionUseItem
	Targets []int
}

// Policy chooses actions for party members.
type Policy interface {
	Choose(view combat.Snapshot, actor int, member *character.Character, runes []craft.Rune) Choice
}

// Autopilot is the default Policy. Percent chances are checked in order: use a
// rune, cast a learned ability, flee when badly hurt; otherwise attack the
// weakest opponent.
type Autopilot struct {
	src dice.Source

	RuneChance  float64 // percent
	CastChance  float64 // percent
	FleeChance  float64 // percent
	FleeBelowHP float64 // HP percent under which fleeing is considered
}

// NewAutopilot returns an Autopilot with the default chances.
//
// Precondition: src must be non-nil.
func NewAutopilot(src dice.Source) *Autopilot {
	return &Autopilot{src: src, RuneChance: 25, CastChance: 60, FleeChance: 30, FleeBelowHP: 20}
}

// Choose implements Policy. An ability is only chosen when enough living
// targets exist to satisfy its target count.
func (a *Autopilot) Choose(view combat.Snapshot, actor int, member *character.Character, runes []craft.Rune) Choice {
	if len(runes) > 0 && dice.Chance(a.src, a.RuneChance) {
		r := runes[dice.Pick(a.src, len(runes))]
		if targets, ok := targetsFor(view, actor, r.Ability); ok {
			return Choice{Kind: combat.ActionUseItem, RuneID: r.ID, Targets: targets}
		}
	}
	if member != nil && member.Skills != nil && member.Skills.Len() > 0 && dice.Chance(a.src, a.CastChance) {
		known := member.Skills.All()
		d := known[dice.Pick(a.src, len(known))]
		if targets, ok := targetsFor(view, actor, d); ok {
			return Choice{Kind: combat.ActionCast, Ability: &d, Targets: targets}
		}
	}
	if self, ok := viewOf(view, actor); ok && ai.HPPercent(self) < a.FleeBelowHP && dice.Chance(a.src, a.FleeChance) {
		return Choice{Kind: combat.ActionFlee}
	}
	return Choice{Kind: combat.ActionAttack, Targets: weakest(ai.Enemies(view, actor), 1)}
}

func targetsFor(view combat.Snapshot, actor int, d craft.Descriptor) ([]int, bool) {
	pool := ai.Enemies(view, actor)
	if d.Supportive() {
		pool = ai.Allies(view, actor)
	}
	n := max(d.TargetCount, 1)
	if len(pool) < n {
		return nil, false
	}
	return weakest(pool, n), true
}

func viewOf(view combat.Snapshot, flat int) (combat.CombatantView, bool) {
	for _, c := range view.Combatants {
		if c.Flat == flat {
			return c, true
		}
	}
	return combat.CombatantView{}, false
}

// weakest returns the flat indices of the n lowest-HP combatants in pool.
func weakest(pool []combat.CombatantView, n int) []int {
	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(a, b combat.CombatantView) int {
		return cmp.Compare(ai.HPPercent(a), ai.HPPercent(b))
	})
	n = min(n, len(sorted))
	out := make([]int, n)
	for i := range n {
		out[i] = sorted[i].Flat
	}
	return out
}
