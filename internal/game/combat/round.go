package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
)

// AttackCritChance is the percent chance a basic attack deals double damage.
const AttackCritChance = 5

// Resolve executes the round's queued actions, fastest actor first, then
// applies end-of-round condition damage and ticks durations. The battle moves
// to Victory, Defeat, or Escaped, or back to ActionSelect for the next round.
//
// Precondition: src must be non-nil.
// Postcondition: returns ErrInvalidPhase outside Resolve.
func (b *Battle) Resolve(src dice.Source) ([]Event, error) {
	if b.Phase() != PhaseResolve {
		return nil, fmt.Errorf("resolve in %s: %w", b.Phase(), ErrInvalidPhase)
	}
	var events []Event
	var outcome Phase
	for _, q := range orderBySpeed(b.reg, b.queue) {
		actor, err := b.reg.Get(q.Actor)
		if err != nil || !actor.Alive() {
			continue
		}
		if actor.Effects.SkipsTurn() {
			ev := b.event(EventTurnSkipped, int(q.Actor), NoTarget)
			ev.Narrative = fmt.Sprintf("%s cannot act.", actor.Name)
			events = append(events, ev)
			continue
		}
		evs, escaped := b.execute(q, actor, src)
		events = append(events, evs...)
		if escaped {
			outcome = PhaseEscaped
			break
		}
		if outcome = b.outcome(); outcome != "" {
			break
		}
	}
	if outcome == "" {
		events = append(events, b.endOfRound()...)
		outcome = b.outcome()
	}
	b.queue = nil
	b.pending = nil
	b.committed = make(map[Handle]bool)

	switch outcome {
	case PhaseVictory:
		events = append(events, b.transition(evVictory)...)
	case PhaseDefeat:
		events = append(events, b.transition(evDefeat)...)
	case PhaseEscaped:
		events = append(events, b.transition(evEscape)...)
	default:
		b.round++
		events = append(events, b.transition(evNextRound)...)
		start := b.event(EventRoundStarted, NoTarget, NoTarget)
		start.Narrative = fmt.Sprintf("Round %d begins.", b.round)
		events = append(events, start)
		next, ok := b.selectNext()
		events = append(events, next...)
		if !ok {
			events = append(events, b.transition(evEnemyTurn)...)
		}
		return events, nil
	}
	b.hasCurrent = false
	ev := b.event(EventOutcome, NoTarget, NoTarget)
	ev.Detail = string(outcome)
	b.logger.Info("battle ended", zap.String("outcome", string(outcome)), zap.Int("round", b.round))
	return append(events, ev), nil
}

// outcome returns the terminal phase the registry implies, or "".
func (b *Battle) outcome() Phase {
	switch {
	case b.reg.AllDefeated(SidePlayer):
		return PhaseDefeat
	case b.reg.AllDefeated(SideOpponent):
		return PhaseVictory
	default:
		return ""
	}
}

func (b *Battle) execute(q *QueuedAction, actor *Combatant, src dice.Source) (events []Event, escaped bool) {
	switch q.Kind {
	case ActionFlee:
		if dice.Chance(src, b.fleeChance*100) {
			ev := b.event(EventFled, int(q.Actor), NoTarget)
			ev.Action = ActionFlee
			ev.Narrative = fmt.Sprintf("%s leads the party away.", actor.Name)
			return []Event{ev}, true
		}
		ev := b.event(EventFleeFailed, int(q.Actor), NoTarget)
		ev.Action = ActionFlee
		ev.Narrative = fmt.Sprintf("%s tries to flee but is cut off.", actor.Name)
		return []Event{ev}, false
	case ActionAttack:
		return b.attack(q, actor, src), false
	case ActionCast, ActionUseItem:
		return b.cast(q, actor, src), false
	default:
		return nil, false
	}
}

// livingTargets returns the queued targets still standing.
func (b *Battle) livingTargets(q *QueuedAction) []*Combatant {
	var out []*Combatant
	for _, h := range q.Targets {
		if c, err := b.reg.Get(h); err == nil && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

func (b *Battle) flat(c *Combatant) int {
	h, err := b.reg.HandleOf(c.Side, c.Slot)
	if err != nil {
		return NoTarget
	}
	return int(h)
}

func (b *Battle) attack(q *QueuedAction, actor *Combatant, src dice.Source) []Event {
	targets := b.livingTargets(q)
	if len(targets) == 0 {
		ev := b.event(EventMissed, int(q.Actor), NoTarget)
		ev.Action = ActionAttack
		ev.Narrative = fmt.Sprintf("%s attacks but hits nothing.", actor.Name)
		return []Event{ev}
	}
	target := targets[0]
	dmg := max(1, actor.Effective().Attack+dice.Between(src, 0, 6)-target.Effective().Defense/2)
	crit := dice.Chance(src, AttackCritChance)
	if crit {
		dmg *= 2
	}
	return b.damage(q, actor, target, dmg, crit, "")
}

// damage applies amount to target and reports the hit, any conditions it
// broke, and the target's defeat.
func (b *Battle) damage(q *QueuedAction, actor, target *Combatant, amount int, crit bool, detail string) []Event {
	dealt := target.ApplyDamage(amount)
	ev := b.event(EventDamage, b.flat(actor), b.flat(target))
	ev.Action, ev.Amount, ev.Crit, ev.Detail = q.Kind, dealt, crit, detail
	ev.Narrative = fmt.Sprintf("%s hits %s for %d.", actor.Name, target.Name, dealt)
	if crit {
		ev.Narrative = fmt.Sprintf("%s critically hits %s for %d!", actor.Name, target.Name, dealt)
	}
	events := []Event{ev}
	if dealt > 0 {
		for _, id := range target.Effects.BreakOnDamage() {
			exp := b.event(EventEffectExpired, b.flat(target), NoTarget)
			exp.Detail = id
			exp.Narrative = fmt.Sprintf("%s is no longer %s.", target.Name, id)
			events = append(events, exp)
		}
	}
	return append(events, b.defeatIfDown(target)...)
}

func (b *Battle) defeatIfDown(c *Combatant) []Event {
	if c.HP > 0 || c.Defeated {
		return nil
	}
	_ = b.reg.MarkDefeated(Handle(b.flat(c)))
	ev := b.event(EventDefeated, NoTarget, b.flat(c))
	ev.Narrative = fmt.Sprintf("%s is defeated.", c.Name)
	return []Event{ev}
}

func (b *Battle) cast(q *QueuedAction, actor *Combatant, src dice.Source) []Event {
	ability := q.Applied()
	if ability == nil {
		return nil
	}
	var events []Event
	if q.Kind == ActionUseItem {
		ev := b.event(EventRuneConsumed, int(q.Actor), NoTarget)
		ev.Detail = q.Rune.ID
		ev.Narrative = fmt.Sprintf("%s breaks the %s rune.", actor.Name, ability.Name)
		events = append(events, ev)
	}
	targets := b.livingTargets(q)
	if len(targets) == 0 || len(ability.Effects) == 0 {
		ev := b.event(EventMissed, int(q.Actor), NoTarget)
		ev.Action, ev.Detail = q.Kind, ability.Name
		ev.Narrative = fmt.Sprintf("%s casts %s to no effect.", actor.Name, ability.Name)
		return append(events, ev)
	}
	eff := actor.Effective()
	for _, e := range ability.Effects {
		for _, target := range targets {
			if !target.Alive() {
				continue
			}
			events = append(events, b.applyEffect(q, actor, eff, target, e, ability.Name, src)...)
		}
	}
	return events
}

func (b *Battle) applyEffect(q *QueuedAction, actor *Combatant, eff Stats, target *Combatant, e craft.Effect, name string, src dice.Source) []Event {
	switch v := e.(type) {
	case craft.DamageEffect:
		hi := max(v.Max, v.Min) + 1
		amount := dice.Between(src, v.Min, hi) + eff.Magic/2
		crit := dice.Chance(src, v.CritChance*100)
		if crit {
			amount *= 2
		}
		amount = max(1, amount-target.Effective().Defense/4)
		return b.damage(q, actor, target, amount, crit, name)
	case craft.HealEffect:
		restored := target.Heal(v.Amount + eff.Magic/4)
		ev := b.event(EventHeal, b.flat(actor), b.flat(target))
		ev.Action, ev.Amount, ev.Detail = q.Kind, restored, name
		ev.Narrative = fmt.Sprintf("%s restores %d HP to %s.", actor.Name, restored, target.Name)
		return []Event{ev}
	case craft.BuffEffect:
		target.Effects.AddBuff(name, v.Deltas, v.Duration)
		ev := b.event(EventBuffApplied, b.flat(actor), b.flat(target))
		ev.Action, ev.Detail = q.Kind, name
		ev.Narrative = fmt.Sprintf("%s gains %s.", target.Name, v.Deltas)
		return []Event{ev}
	case craft.StatusEffect:
		def, ok := b.conditions.Get(v.Condition)
		if !ok {
			b.logger.Warn("unknown condition in ability", zap.String("condition", v.Condition), zap.String("ability", name))
			return nil
		}
		if !dice.Chance(src, v.Chance*100) || target.Effects.Apply(def, 1, v.Duration) != nil {
			ev := b.event(EventConditionResisted, b.flat(actor), b.flat(target))
			ev.Action, ev.Detail = q.Kind, def.ID
			ev.Narrative = fmt.Sprintf("%s resists %s.", target.Name, def.Name)
			return []Event{ev}
		}
		ev := b.event(EventConditionApplied, b.flat(actor), b.flat(target))
		ev.Action, ev.Detail = q.Kind, def.ID
		ev.Narrative = fmt.Sprintf("%s is %s.", target.Name, def.ID)
		return []Event{ev}
	default:
		return nil
	}
}

// endOfRound applies condition damage over time and ticks every duration.
func (b *Battle) endOfRound() []Event {
	var events []Event
	for i := 0; i < b.reg.Len(); i++ {
		c, _ := b.reg.At(i)
		if !c.Alive() {
			continue
		}
		if dot := c.Effects.DamagePerRound(); dot > 0 {
			dealt := c.ApplyDamage(dot)
			ev := b.event(EventDamage, NoTarget, i)
			ev.Amount, ev.Detail = dealt, "condition"
			ev.Narrative = fmt.Sprintf("%s suffers %d from lingering effects.", c.Name, dealt)
			events = append(events, ev)
			events = append(events, b.defeatIfDown(c)...)
		}
		expired, buffs := c.Effects.Tick()
		for _, id := range expired {
			ev := b.event(EventEffectExpired, i, NoTarget)
			ev.Detail = id
			ev.Narrative = fmt.Sprintf("%s is no longer %s.", c.Name, id)
			events = append(events, ev)
		}
		if buffs > 0 {
			ev := b.event(EventEffectExpired, i, NoTarget)
			ev.Detail, ev.Amount = "buff", buffs
			ev.Narrative = fmt.Sprintf("%s feels a blessing fade.", c.Name)
			events = append(events, ev)
		}
		// Buffs may have carried MaxHP; keep HP within the new bound.
		if m := c.Effective().MaxHP; c.HP > m {
			c.HP = m
		}
	}
	return events
}
