package sim

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/condition"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
	"github.com/cory-johannsen/skillforge/internal/game/monster"
	"github.com/cory-johannsen/skillforge/internal/game/session"
	"github.com/cory-johannsen/skillforge/internal/observability"
)

// ErrStalemate is returned when a battle does not end within MaxRounds.
var ErrStalemate = errors.New("sim: battle did not end")

// Syncer persists a player after each encounter.
type Syncer interface {
	Sync(ctx context.Context, p *session.Player) error
}

// Settings are the knobs of a simulation run.
type Settings struct {
	Encounters   int
	GemsPerForge int // gems generated before each encounter
	MaxRounds    int
	Battle       session.BattleSettings
}

// Deps are the collaborators a Simulator drives.
type Deps struct {
	Spawner    *monster.Spawner
	Catalog    *monster.Catalog
	Generator  *gem.Generator
	Conditions *condition.Registry
	Decider    combat.Decider
	Policy     Policy      // nil uses an Autopilot on the run's source
	Store      Syncer      // optional
	Out        *Renderer   // optional
	Logger     *zap.Logger // optional
}

// Report tallies a run.
type Report struct {
	Encounters int
	Victories  int
	Defeats    int
	Escapes    int
	Forged     int
	Failed     int
	Learned    int
	Runes      int
	GemsLooted int
}

// Simulator plays encounters for one player.
type Simulator struct {
	deps     Deps
	settings Settings
	logger   *zap.Logger
}

// New creates a Simulator.
//
// Precondition: Spawner, Catalog, Generator and Decider must be non-nil.
func New(deps Deps, settings Settings) *Simulator {
	if deps.Spawner == nil || deps.Catalog == nil || deps.Generator == nil || deps.Decider == nil {
		panic("sim.New: Spawner, Catalog, Generator and Decider must not be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MaxRounds <= 0 {
		settings.MaxRounds = 100
	}
	return &Simulator{deps: deps, settings: settings, logger: logger}
}

// Run plays settings.Encounters encounters for p, forging before each one.
// Defeated parties rest back to full HP before the next encounter.
//
// Postcondition: returns ctx.Err() when cancelled between encounters, with
// the report so far.
func (s *Simulator) Run(ctx context.Context, p *session.Player, src dice.Source) (Report, error) {
	policy := s.deps.Policy
	if policy == nil {
		policy = NewAutopilot(src)
	}
	var rep Report
	for i := range s.settings.Encounters {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		s.deps.Out.Header("Encounter %d", i+1)
		if err := s.forge(p, src, i, &rep); err != nil {
			return rep, err
		}
		s.rest(p)
		if err := s.fight(p, src, policy, &rep); err != nil {
			return rep, err
		}
		rep.Encounters++
		if s.deps.Store != nil {
			if err := s.deps.Store.Sync(ctx, p); err != nil {
				return rep, fmt.Errorf("persisting after encounter %d: %w", i+1, err)
			}
		}
	}
	s.logger.Info("simulation finished",
		zap.String("uid", p.UID),
		zap.Int("encounters", rep.Encounters),
		zap.Int("victories", rep.Victories),
		zap.Int("defeats", rep.Defeats),
		zap.Int("escapes", rep.Escapes),
		zap.Int("forged", rep.Forged),
	)
	return rep, nil
}

// forge generates gems, selects the first few, and crafts them into an
// ability. Successful crafts alternate between teaching a party member and
// filling a rune.
func (s *Simulator) forge(p *session.Player, src dice.Source, n int, rep *Report) error {
	bench := p.Crafting
	for range s.settings.GemsPerForge {
		if _, err := bench.Generate(src); err != nil {
			s.logger.Debug("gem generation stopped", zap.Error(err))
			break
		}
	}
	gems := p.Backpack.Gems()
	if len(gems) == 0 {
		return nil
	}
	for i := range min(len(gems), 3) {
		if _, err := bench.Select(i); err != nil {
			return err
		}
	}
	if bench.Selection().Len() == 0 {
		return nil
	}
	bench.SetName(fmt.Sprintf("%s Technique %d", p.Name, n+1))
	bench.SetDescription("Forged on the road.")
	out, err := bench.Craft(src)
	if err != nil {
		return fmt.Errorf("forging: %w", err)
	}
	s.deps.Out.Crafted(out)
	if !out.Success {
		rep.Failed++
		return nil
	}
	rep.Forged++
	if n%2 == 1 {
		r, err := bench.SaveToRune(p.Backpack)
		if err != nil {
			return err
		}
		rep.Runes++
		s.deps.Out.System("Stored rune %s.", r.Name())
		return nil
	}
	member := n / 2 % len(p.Party)
	if err := p.SaveAbility(member); err != nil {
		if errors.Is(err, craft.ErrDuplicateName) {
			s.logger.Warn("forged ability discarded", zap.Error(err))
			return nil
		}
		return err
	}
	rep.Learned++
	s.deps.Out.System("%s learned %s.", p.Party[member].Name, out.Ability.Name)
	return nil
}

func (s *Simulator) rest(p *session.Player) {
	for _, c := range p.Party {
		if c.Alive() {
			continue
		}
		c.CurrentHP = c.Stats.MaxHP
		s.deps.Out.System("%s rests and recovers.", c.Name)
	}
}

func (s *Simulator) fight(p *session.Player, src dice.Source, policy Policy, rep *Report) error {
	if _, err := p.StartBattle(src, s.deps.Spawner, s.settings.Battle, combat.Options{Conditions: s.deps.Conditions}); err != nil {
		return err
	}
	s.flush(p)
	b := p.Battle()
	for !b.Phase().Terminal() {
		if b.Round() > s.settings.MaxRounds {
			return fmt.Errorf("after %d rounds: %w", s.settings.MaxRounds, ErrStalemate)
		}
		switch b.Phase() {
		case combat.PhaseActionSelect:
			actor, _ := b.Current()
			member, _ := p.Fighter(actor)
			choice := policy.Choose(b.Snapshot(), actor, member, p.Backpack.Runes())
			if err := s.act(p, actor, choice); err != nil {
				return err
			}
		case combat.PhaseEnemyTurn:
			if _, err := p.RunRound(src, s.deps.Decider); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected phase %s: %w", b.Phase(), combat.ErrInvalidPhase)
		}
		s.flush(p)
	}

	spoils, err := p.EndBattle(src, s.deps.Catalog, s.deps.Generator)
	if err != nil {
		return err
	}
	switch spoils.Outcome {
	case combat.PhaseVictory:
		rep.Victories++
	case combat.PhaseDefeat:
		rep.Defeats++
	case combat.PhaseEscaped:
		rep.Escapes++
	}
	rep.GemsLooted += len(spoils.Gems)
	if len(spoils.Gems) > 0 {
		s.deps.Out.System("Looted %d gems.", len(spoils.Gems))
	}
	return nil
}

// act commits choice for actor. A choice the battle rejects, or whose
// targets do not finalize it, falls back to attacking living opponents.
func (s *Simulator) act(p *session.Player, actor int, choice Choice) error {
	b := p.Battle()
	var (
		events []combat.Event
		err    error
	)
	switch choice.Kind {
	case combat.ActionCast:
		events, err = b.CommitCast(actor, *choice.Ability)
	case combat.ActionUseItem:
		_, err = p.UseRune(actor, choice.RuneID)
	default:
		events, err = b.CommitAction(choice.Kind, actor)
	}
	if err != nil {
		s.logger.Debug("choice rejected", zap.String("action", choice.Kind.String()), zap.Error(err))
		if events, err = b.CommitAction(combat.ActionAttack, actor); err != nil {
			return err
		}
		p.Apply(events)
		return s.targetOpponents(p)
	}
	p.Apply(events)
	for _, t := range choice.Targets {
		if b.Phase() != combat.PhaseTargetSelect {
			break
		}
		p.Apply(b.ToggleTarget(t))
	}
	if b.Phase() == combat.PhaseTargetSelect {
		s.logger.Debug("targets did not finalize the choice", zap.Int("actor", actor))
		return s.targetOpponents(p)
	}
	return nil
}

// targetOpponents adds living opponents to the pending action until it is
// finalized.
func (s *Simulator) targetOpponents(p *session.Player) error {
	b := p.Battle()
	for _, c := range b.Snapshot().Living(combat.SideOpponent) {
		if b.Phase() != combat.PhaseTargetSelect {
			return nil
		}
		pending, _ := b.Pending()
		if pending.HasTarget(combat.Handle(c.Flat)) {
			continue
		}
		p.Apply(b.ToggleTarget(c.Flat))
	}
	if b.Phase() == combat.PhaseTargetSelect {
		return fmt.Errorf("no targets can finalize the action: %w", combat.ErrInvalidAction)
	}
	return nil
}

// flush drains the player's feed into the log and the renderer.
func (s *Simulator) flush(p *session.Player) {
	events := p.Feed.Drain()
	for _, ev := range events {
		s.logger.Debug("battle event", observability.EventFields(ev)...)
	}
	s.deps.Out.Events(events)
}
