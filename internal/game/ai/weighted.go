package ai

import (
	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/monster"
)

// Weighted decides from each monster template's behaviour table: it chooses
// between attacking and casting by weight, then targets by the template's focus.
//
// Weighted is not safe for concurrent use when src is not.
type Weighted struct {
	catalog *monster.Catalog
	src     dice.Source
}

// NewWeighted creates a Weighted decider.
//
// Precondition: catalog and src must be non-nil.
func NewWeighted(catalog *monster.Catalog, src dice.Source) *Weighted {
	return &Weighted{catalog: catalog, src: src}
}

var _ combat.Decider = (*Weighted)(nil)

// Decide implements combat.Decider.
//
// Postcondition: actors without a known template attack the weakest enemy.
func (w *Weighted) Decide(view combat.Snapshot, actor int) combat.Decision {
	if actor < 0 || actor >= len(view.Combatants) {
		return combat.Decision{Kind: combat.ActionAttack}
	}
	tmpl, ok := w.catalog.Get(view.Combatants[actor].TemplateID)
	if !ok {
		return combat.Decision{Kind: combat.ActionAttack, Targets: w.targets(Enemies(view, actor), FocusWeakest, 1)}
	}
	focus := Focus(tmpl.Behavior.Focus)

	attackW, castW := tmpl.Behavior.Attack, tmpl.Behavior.Cast
	if len(tmpl.Abilities) == 0 {
		castW = 0
	}
	if attackW+castW == 0 {
		attackW = 1
	}
	if dice.Pick(w.src, attackW+castW) < attackW {
		return combat.Decision{Kind: combat.ActionAttack, Targets: w.targets(Enemies(view, actor), focus, 1)}
	}

	ability := tmpl.Abilities[dice.Pick(w.src, len(tmpl.Abilities))].Descriptor()
	pool := Enemies(view, actor)
	if ability.Supportive() {
		pool = Allies(view, actor)
		focus = FocusWeakest
	}
	return combat.Decision{
		Kind:    combat.ActionCast,
		Ability: &ability,
		Targets: w.targets(pool, focus, ability.TargetCount),
	}
}

func (w *Weighted) targets(pool []combat.CombatantView, focus Focus, n int) []int {
	orderBy(pool, focus)
	if focus == FocusRandom {
		for i := len(pool) - 1; i > 0; i-- {
			j := dice.Pick(w.src, i+1)
			pool[i], pool[j] = pool[j], pool[i]
		}
	}
	return flats(pool, n)
}
