package combat

import (
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/condition"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
)

var (
	// ErrInvalidPhase is returned when an operation is called in the wrong phase.
	ErrInvalidPhase = errors.New("combat: invalid phase")
	// ErrNotCurrentActor is returned when committing for a combatant whose turn it is not.
	ErrNotCurrentActor = errors.New("combat: not the current actor")
	// ErrInvalidAction is returned for an action kind the call cannot commit.
	ErrInvalidAction = errors.New("combat: invalid action")
)

// Options configures a Battle.
type Options struct {
	// FleeChance is the probability in [0, 1] that a flee attempt succeeds.
	FleeChance float64
	// Conditions resolves the condition IDs named by status effects. Nil uses condition.DefaultRegistry.
	Conditions *condition.Registry
	Logger     *zap.Logger
}

// Battle drives one encounter through its phases. Each player-side combatant
// commits an action and its targets in turn, then the opponents decide, then
// the round resolves. It is not safe for concurrent use.
type Battle struct {
	reg        *Registry
	machine    *fsm.FSM
	fleeChance float64
	conditions *condition.Registry
	logger     *zap.Logger

	round      int
	current    Handle
	hasCurrent bool
	committed  map[Handle]bool
	pending    *QueuedAction
	queue      []*QueuedAction
}

// NewBattle starts a battle over reg in ActionSelect with the first living
// player selected.
//
// Precondition: reg has at least one living combatant on each side.
func NewBattle(reg *Registry, opts Options) (*Battle, error) {
	if reg.AllDefeated(SidePlayer) || reg.AllDefeated(SideOpponent) {
		return nil, errors.New("combat: battle needs a living combatant on each side")
	}
	if opts.Conditions == nil {
		opts.Conditions = condition.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	b := &Battle{
		reg:        reg,
		machine:    newPhaseMachine(),
		fleeChance: opts.FleeChance,
		conditions: opts.Conditions,
		logger:     opts.Logger,
		round:      1,
		committed:  make(map[Handle]bool),
	}
	if _, ok := b.selectNext(); !ok {
		b.transition(evEnemyTurn)
	}
	return b, nil
}

// Phase returns the current phase.
func (b *Battle) Phase() Phase { return Phase(b.machine.Current()) }

// Round returns the 1-based round number.
func (b *Battle) Round() int { return b.round }

// Registry returns the battle's participants.
func (b *Battle) Registry() *Registry { return b.reg }

// Current returns the flat index of the player choosing an action.
//
// Postcondition: ok is false outside ActionSelect and TargetSelect.
func (b *Battle) Current() (flat int, ok bool) {
	if !b.hasCurrent {
		return NoTarget, false
	}
	return int(b.current), true
}

// Pending returns a copy of the action awaiting targets, if any.
func (b *Battle) Pending() (QueuedAction, bool) {
	if b.pending == nil {
		return QueuedAction{}, false
	}
	cp := *b.pending
	cp.Targets = append([]Handle(nil), b.pending.Targets...)
	return cp, true
}

// Queue returns copies of the actions finalized so far this round.
func (b *Battle) Queue() []QueuedAction {
	out := make([]QueuedAction, len(b.queue))
	for i, q := range b.queue {
		out[i] = *q
		out[i].Targets = append([]Handle(nil), q.Targets...)
	}
	return out
}

// Snapshot returns a read-only view of every combatant.
func (b *Battle) Snapshot() Snapshot {
	s := Snapshot{Round: b.round}
	for i := 0; i < b.reg.Len(); i++ {
		c, _ := b.reg.At(i)
		eff := c.Effective()
		var conds []string
		for _, ac := range c.Effects.All() {
			conds = append(conds, ac.Def.ID)
		}
		s.Combatants = append(s.Combatants, CombatantView{
			Flat: i, Name: c.Name, Side: c.Side, TemplateID: c.TemplateID,
			HP: c.HP, MaxHP: eff.MaxHP, Stats: eff, Alive: c.Alive(), Conditions: conds,
		})
	}
	return s
}

func (b *Battle) event(kind EventKind, actor, target int) Event {
	return Event{Kind: kind, Phase: b.Phase(), Round: b.round, Actor: actor, Target: target}
}

// transition fires a phase machine event.
func (b *Battle) transition(name string) []Event {
	from := b.Phase()
	if err := fire(b.machine, name); err != nil {
		b.logger.Error("battle transition rejected",
			zap.String("event", name), zap.String("phase", string(from)), zap.Error(err))
		return nil
	}
	b.logger.Debug("battle phase changed",
		zap.String("from", string(from)), zap.String("to", b.machine.Current()), zap.Int("round", b.round))
	return []Event{b.event(EventPhaseChanged, NoTarget, NoTarget)}
}

// selectNext picks the next living, uncommitted player in slot order. Players
// whose conditions skip their turn are marked committed on the way.
func (b *Battle) selectNext() ([]Event, bool) {
	var events []Event
	for _, h := range b.reg.Living(SidePlayer) {
		if b.committed[h] {
			continue
		}
		c, _ := b.reg.Get(h)
		if c.Effects.SkipsTurn() {
			b.committed[h] = true
			ev := b.event(EventTurnSkipped, int(h), NoTarget)
			ev.Narrative = fmt.Sprintf("%s cannot act.", c.Name)
			events = append(events, ev)
			continue
		}
		b.current, b.hasCurrent = h, true
		return append(events, b.event(EventActorSelected, int(h), NoTarget)), true
	}
	b.hasCurrent = false
	return events, false
}

// advance finishes the current player's turn.
func (b *Battle) advance() []Event {
	b.committed[b.current] = true
	var events []Event
	if b.Phase() == PhaseTargetSelect {
		events = b.transition(evTargeted)
	}
	next, ok := b.selectNext()
	events = append(events, next...)
	if !ok {
		events = append(events, b.transition(evEnemyTurn)...)
	}
	return events
}

func (b *Battle) checkActor(actor int) error {
	if b.Phase() != PhaseActionSelect {
		return fmt.Errorf("commit in %s: %w", b.Phase(), ErrInvalidPhase)
	}
	if _, err := b.reg.Handle(actor); err != nil {
		return err
	}
	if !b.hasCurrent || Handle(actor) != b.current {
		return fmt.Errorf("commit for %d: %w", actor, ErrNotCurrentActor)
	}
	return nil
}

func (b *Battle) commit(q *QueuedAction) []Event {
	b.pending = q
	ev := b.event(EventActionCommitted, int(q.Actor), NoTarget)
	ev.Action = q.Kind
	if d := q.Applied(); d != nil {
		ev.Detail = d.Name
	}
	return append([]Event{ev}, b.transition(evCommit)...)
}

func (b *Battle) enqueue(q *QueuedAction) Event {
	b.queue = append(b.queue, q)
	ev := b.event(EventActionQueued, int(q.Actor), NoTarget)
	ev.Action = q.Kind
	return ev
}

// CommitAction commits an attack or a flee for the current player. Attack
// moves to TargetSelect; flee needs no targets and ends the player's turn.
//
// Postcondition: returns ErrInvalidPhase outside ActionSelect, ErrIndexOutOfRange
// or ErrNotCurrentActor for a bad actor, ErrInvalidAction for other kinds.
func (b *Battle) CommitAction(kind ActionKind, actor int) ([]Event, error) {
	if err := b.checkActor(actor); err != nil {
		return nil, err
	}
	switch kind {
	case ActionAttack:
		return b.commit(&QueuedAction{Kind: ActionAttack, Actor: Handle(actor)}), nil
	case ActionFlee:
		events := []Event{b.enqueue(&QueuedAction{Kind: ActionFlee, Actor: Handle(actor)})}
		return append(events, b.advance()...), nil
	case ActionCast, ActionUseItem:
		return nil, fmt.Errorf("%s needs an ability or rune: %w", kind, ErrInvalidAction)
	default:
		return nil, fmt.Errorf("action %d: %w", int(kind), ErrInvalidAction)
	}
}

// CommitCast commits casting ability for the current player.
func (b *Battle) CommitCast(actor int, ability craft.Descriptor) ([]Event, error) {
	if err := b.checkActor(actor); err != nil {
		return nil, err
	}
	return b.commit(&QueuedAction{Kind: ActionCast, Actor: Handle(actor), Ability: &ability}), nil
}

// CommitUse commits spending item for the current player. The rune is reported
// consumed by an EventRuneConsumed when the round resolves.
func (b *Battle) CommitUse(actor int, item craft.Rune) ([]Event, error) {
	if err := b.checkActor(actor); err != nil {
		return nil, err
	}
	return b.commit(&QueuedAction{Kind: ActionUseItem, Actor: Handle(actor), Rune: &item}), nil
}

// ToggleTarget adds or removes the combatant at flat from the pending action's
// targets. A single-target action is finalized by its first add; an area
// action once it holds targetCount targets.
//
// Postcondition: outside TargetSelect, or for an out-of-range or defeated
// target, nothing changes and nil is returned.
func (b *Battle) ToggleTarget(flat int) []Event {
	if b.Phase() != PhaseTargetSelect || b.pending == nil {
		return nil
	}
	h, err := b.reg.Handle(flat)
	if err != nil || !b.reg.IsAlive(h) {
		return nil
	}
	added := b.pending.Toggle(h)
	ev := b.event(EventTargetToggled, int(b.pending.Actor), flat)
	ev.Selected = added
	events := []Event{ev}
	if !added || !b.pending.Satisfied() {
		return events
	}
	events = append(events, b.enqueue(b.pending))
	b.pending = nil
	return append(events, b.advance()...)
}

// RunEnemyTurn asks d for one decision per living opponent and queues them.
// Decisions are sanitized: unusable kinds become attacks and invalid targets
// are replaced by the first living player.
//
// Postcondition: moves to Resolve; returns ErrInvalidPhase outside EnemyTurn.
func (b *Battle) RunEnemyTurn(d Decider) ([]Event, error) {
	if b.Phase() != PhaseEnemyTurn {
		return nil, fmt.Errorf("enemy turn in %s: %w", b.Phase(), ErrInvalidPhase)
	}
	var events []Event
	for _, h := range b.reg.Living(SideOpponent) {
		c, _ := b.reg.Get(h)
		if c.Effects.SkipsTurn() {
			ev := b.event(EventTurnSkipped, int(h), NoTarget)
			ev.Narrative = fmt.Sprintf("%s cannot act.", c.Name)
			events = append(events, ev)
			continue
		}
		q := b.sanitize(h, d.Decide(b.Snapshot(), int(h)))
		events = append(events, b.enqueue(q))
	}
	return append(events, b.transition(evResolve)...), nil
}

func (b *Battle) sanitize(actor Handle, dec Decision) *QueuedAction {
	kind := dec.Kind
	if kind != ActionAttack && !(kind == ActionCast && dec.Ability != nil) {
		b.logger.Debug("opponent decision replaced by attack",
			zap.Int("actor", int(actor)), zap.Stringer("kind", kind))
		kind = ActionAttack
	}
	q := &QueuedAction{Kind: kind, Actor: actor}
	if kind == ActionCast {
		ability := *dec.Ability
		q.Ability = &ability
	}
	for _, t := range dec.Targets {
		h, err := b.reg.Handle(t)
		if err != nil || !b.reg.IsAlive(h) || q.HasTarget(h) || q.Satisfied() {
			continue
		}
		q.Targets = append(q.Targets, h)
	}
	if len(q.Targets) == 0 {
		if q.Ability != nil && q.Ability.Supportive() {
			q.Targets = append(q.Targets, actor)
		} else if living := b.reg.Living(SidePlayer); len(living) > 0 {
			q.Targets = append(q.Targets, living[0])
		}
	}
	return q
}

// Abandon discards every action chosen this round and returns to ActionSelect
// for the first living player.
//
// Postcondition: a no-op returning nil during Resolve or after the battle ends.
func (b *Battle) Abandon() []Event {
	phase := b.Phase()
	if phase == PhaseResolve || phase.Terminal() {
		return nil
	}
	b.queue = nil
	b.pending = nil
	b.committed = make(map[Handle]bool)
	var events []Event
	if phase != PhaseActionSelect {
		events = b.transition(evAbandon)
	}
	next, ok := b.selectNext()
	events = append(events, next...)
	if !ok {
		events = append(events, b.transition(evEnemyTurn)...)
	}
	return events
}
