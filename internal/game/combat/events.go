package combat

// EventKind classifies a presentation Event.
type EventKind int

const (
	EventPhaseChanged EventKind = iota
	EventActorSelected
	EventTurnSkipped
	EventActionCommitted
	EventTargetToggled
	EventActionQueued
	EventMissed
	EventDamage
	EventHeal
	EventBuffApplied
	EventConditionApplied
	EventConditionResisted
	EventEffectExpired
	EventRuneConsumed
	EventDefeated
	EventFleeFailed
	EventFled
	EventOutcome
	EventRoundStarted
)

var eventKindNames = map[EventKind]string{
	EventPhaseChanged:      "phase_changed",
	EventActorSelected:     "actor_selected",
	EventTurnSkipped:       "turn_skipped",
	EventActionCommitted:   "action_committed",
	EventTargetToggled:     "target_toggled",
	EventActionQueued:      "action_queued",
	EventMissed:            "missed",
	EventDamage:            "damage",
	EventHeal:              "heal",
	EventBuffApplied:       "buff_applied",
	EventConditionApplied:  "condition_applied",
	EventConditionResisted: "condition_resisted",
	EventEffectExpired:     "effect_expired",
	EventRuneConsumed:      "rune_consumed",
	EventDefeated:          "defeated",
	EventFleeFailed:        "flee_failed",
	EventFled:              "fled",
	EventOutcome:           "outcome",
	EventRoundStarted:      "round_started",
}

// String returns the snake_case event name.
func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// NoTarget marks an Event field that names no combatant.
const NoTarget = -1

// Event is a declarative record of something a presentation layer may show.
// Actor and Target are flat indices, or NoTarget.
type Event struct {
	Kind      EventKind
	Phase     Phase
	Round     int
	Actor     int
	Target    int
	Action    ActionKind
	Amount    int
	Crit      bool
	Selected  bool   // for EventTargetToggled: whether the target is now chosen
	Detail    string // ability, condition, or rune identifier
	Narrative string
}
