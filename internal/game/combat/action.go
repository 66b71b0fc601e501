package combat

import (
	"slices"

	"github.com/cory-johannsen/skillforge/internal/game/craft"
)

// ActionKind identifies what a combatant intends to do on their turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionKind int

const (
	ActionUnknown ActionKind = iota // zero value; intentionally invalid
	ActionAttack                    // basic single-target attack
	ActionCast                      // cast a learned ability
	ActionUseItem                   // spend a rune
	ActionFlee                      // try to escape; needs no targets
)

// String returns the human-readable name of the ActionKind.
// Postcondition: returns "attack", "cast", "use", "flee", or "unknown".
func (a ActionKind) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionCast:
		return "cast"
	case ActionUseItem:
		return "use"
	case ActionFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// NeedsTargets reports whether the action waits in TargetSelect.
func (a ActionKind) NeedsTargets() bool {
	return a == ActionAttack || a == ActionCast || a == ActionUseItem
}

// QueuedAction is one combatant's pending action for this round.
// Targets are registry handles, never combatant pointers.
type QueuedAction struct {
	Kind    ActionKind
	Actor   Handle
	Ability *craft.Descriptor // set for ActionCast
	Rune    *craft.Rune       // set for ActionUseItem
	Targets []Handle
}

// TargetCount returns how many distinct targets the action needs.
//
// Postcondition: returns 0 for ActionFlee and at least 1 otherwise.
func (q *QueuedAction) TargetCount() int {
	switch {
	case q.Kind == ActionFlee:
		return 0
	case q.Kind == ActionCast && q.Ability != nil:
		return max(q.Ability.TargetCount, 1)
	case q.Kind == ActionUseItem && q.Rune != nil:
		return max(q.Rune.TargetCount(), 1)
	default:
		return 1
	}
}

// IsArea reports whether the action needs more than one target.
func (q *QueuedAction) IsArea() bool { return q.TargetCount() > 1 }

// Applied returns the descriptor the action applies, or nil for attack and flee.
func (q *QueuedAction) Applied() *craft.Descriptor {
	switch {
	case q.Kind == ActionCast:
		return q.Ability
	case q.Kind == ActionUseItem && q.Rune != nil:
		return &q.Rune.Ability
	default:
		return nil
	}
}

// HasTarget reports whether h is currently targeted.
func (q *QueuedAction) HasTarget(h Handle) bool {
	return slices.Contains(q.Targets, h)
}

// Toggle adds h if absent and removes it if present.
//
// Postcondition: added reports whether h is targeted afterwards; toggling the
// same handle twice restores the previous target list.
func (q *QueuedAction) Toggle(h Handle) (added bool) {
	if i := slices.Index(q.Targets, h); i >= 0 {
		q.Targets = slices.Delete(q.Targets, i, i+1)
		return false
	}
	q.Targets = append(q.Targets, h)
	return true
}

// Satisfied reports whether enough targets are chosen to finalize the action.
func (q *QueuedAction) Satisfied() bool {
	return len(q.Targets) >= q.TargetCount()
}
