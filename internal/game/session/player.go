package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
	"github.com/cory-johannsen/skillforge/internal/game/inventory"
	"github.com/cory-johannsen/skillforge/internal/game/monster"
)

var (
	// ErrInBattle is returned when an operation needs the player out of battle.
	ErrInBattle = errors.New("session: player is in a battle")
	// ErrNoBattle is returned when an operation needs a battle in progress.
	ErrNoBattle = errors.New("session: no battle in progress")
	// ErrNoFighters is returned when no party member can fight.
	ErrNoFighters = errors.New("session: no living party members")
	// ErrRuneQueued is returned when a rune is already committed this round.
	ErrRuneQueued = errors.New("session: rune already committed this round")
	// ErrNoMember is returned for a party index out of range.
	ErrNoMember = errors.New("session: no such party member")
)

// DefaultBackpackSlots is the inventory capacity of a new player.
const DefaultBackpackSlots = 40

// Player is the explicit context for one player: their party, inventory,
// crafting bench and current battle. It is not safe for concurrent use; the
// Manager hands out one Player per UID.
type Player struct {
	UID      string
	Name     string
	Region   int
	Party    []*character.Character
	Backpack *inventory.Backpack
	Crafting *craft.Session
	Feed     *Feed

	battle   *combat.Battle
	fighters []*character.Character // party members in the battle, in player slot order
	logger   *zap.Logger
}

// Battle returns the battle in progress, or nil.
func (p *Player) Battle() *combat.Battle { return p.battle }

// Member returns party member i.
func (p *Player) Member(i int) (*character.Character, error) {
	if i < 0 || i >= len(p.Party) {
		return nil, fmt.Errorf("party member %d of %d: %w", i, len(p.Party), ErrNoMember)
	}
	return p.Party[i], nil
}

// Fighter returns the party member behind player-side combatant flat in the
// current battle.
func (p *Player) Fighter(flat int) (*character.Character, bool) {
	if p.battle == nil || flat < 0 || flat >= len(p.fighters) {
		return nil, false
	}
	return p.fighters[flat], true
}

// SaveAbility saves the crafted ability pending on the bench to party member i.
func (p *Player) SaveAbility(i int) error {
	m, err := p.Member(i)
	if err != nil {
		return err
	}
	return p.Crafting.SaveToCharacter(m)
}

// BattleSettings are the per-encounter knobs of StartBattle.
type BattleSettings struct {
	MaxOpponents int
	FleeChance   float64
}

// StartBattle spawns opponents for the player's region and starts a battle
// with every living party member.
//
// Postcondition: the returned events are also pushed to the Feed.
func (p *Player) StartBattle(src dice.Source, spawner *monster.Spawner, settings BattleSettings, opts combat.Options) ([]combat.Event, error) {
	if p.battle != nil {
		return nil, ErrInBattle
	}
	var players []*combat.Combatant
	p.fighters = nil
	for i, c := range p.Party {
		if !c.Alive() {
			continue
		}
		cb := combat.NewCombatant(fmt.Sprintf("%s-%d", p.UID, i), c.Name, c.Class, c.Stats)
		cb.HP = min(c.CurrentHP, c.Stats.MaxHP)
		players = append(players, cb)
		p.fighters = append(p.fighters, c)
	}
	if len(players) == 0 {
		return nil, ErrNoFighters
	}
	opponents, err := spawner.Spawn(src, p.Region, settings.MaxOpponents)
	if err != nil {
		return nil, err
	}
	opts.FleeChance = settings.FleeChance
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	b, err := combat.NewBattle(combat.NewRegistry(players, opponents), opts)
	if err != nil {
		return nil, err
	}
	p.battle = b
	p.logger.Info("battle started",
		zap.String("uid", p.UID),
		zap.Int("region", p.Region),
		zap.Int("party", len(players)),
		zap.Int("opponents", len(opponents)),
	)
	ev := combat.Event{Kind: combat.EventPhaseChanged, Phase: b.Phase(), Round: b.Round(), Actor: combat.NoTarget, Target: combat.NoTarget}
	return p.apply([]combat.Event{ev}), nil
}

// UseRune commits the backpack rune with runeID for the current actor. The
// rune leaves the backpack when the round resolves it.
func (p *Player) UseRune(actor int, runeID string) ([]combat.Event, error) {
	if p.battle == nil {
		return nil, ErrNoBattle
	}
	for _, q := range p.battle.Queue() {
		if q.Rune != nil && q.Rune.ID == runeID {
			return nil, fmt.Errorf("rune %q: %w", runeID, ErrRuneQueued)
		}
	}
	for _, r := range p.Backpack.Runes() {
		if r.ID == runeID {
			events, err := p.battle.CommitUse(actor, r)
			if err != nil {
				return nil, err
			}
			return p.apply(events), nil
		}
	}
	return nil, fmt.Errorf("rune %q: %w", runeID, inventory.ErrNotFound)
}

// RunRound runs the opponents' turn and resolves the round once every party
// member has committed.
func (p *Player) RunRound(src dice.Source, d combat.Decider) ([]combat.Event, error) {
	if p.battle == nil {
		return nil, ErrNoBattle
	}
	var events []combat.Event
	if p.battle.Phase() == combat.PhaseEnemyTurn {
		evs, err := p.battle.RunEnemyTurn(d)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	evs, err := p.battle.Resolve(src)
	if err != nil {
		return nil, err
	}
	events = append(events, evs...)
	return p.apply(events), nil
}

// Apply runs the session side effects of events produced by direct Battle
// calls and pushes them to the Feed.
func (p *Player) Apply(events []combat.Event) []combat.Event {
	return p.apply(events)
}

func (p *Player) apply(events []combat.Event) []combat.Event {
	for _, ev := range events {
		if ev.Kind == combat.EventRuneConsumed {
			if _, err := p.Backpack.TakeRune(ev.Detail); err != nil {
				p.logger.Warn("consumed rune missing from backpack", zap.String("rune", ev.Detail), zap.Error(err))
			}
		}
	}
	if err := p.Feed.Push(events...); err != nil {
		p.logger.Warn("battle feed push failed", zap.String("uid", p.UID), zap.Error(err))
	}
	return events
}

// Spoils summarizes what a finished battle left behind.
type Spoils struct {
	Outcome combat.Phase
	Gems    []*gem.Component
	Dropped int // gems lost because the backpack was full
}

// EndBattle closes a finished battle: party HP is written back and, on
// victory, the defeated opponents roll their gem drops into the backpack.
//
// Precondition: the battle phase is terminal.
func (p *Player) EndBattle(src dice.Source, catalog *monster.Catalog, gen *gem.Generator) (Spoils, error) {
	if p.battle == nil {
		return Spoils{}, ErrNoBattle
	}
	phase := p.battle.Phase()
	if !phase.Terminal() {
		return Spoils{}, fmt.Errorf("ending battle in %s: %w", phase, combat.ErrInvalidPhase)
	}
	reg := p.battle.Registry()
	for i, cb := range reg.Players() {
		p.fighters[i].CurrentHP = max(cb.HP, 0)
	}
	spoils := Spoils{Outcome: phase}
	if phase == combat.PhaseVictory {
		var ids []string
		for _, o := range reg.Opponents() {
			ids = append(ids, o.TemplateID)
		}
		drops, err := monster.RollLoot(src, catalog, gen, ids)
		if err != nil {
			return Spoils{}, err
		}
		for _, g := range drops {
			if err := p.Backpack.AddGem(g); err != nil {
				spoils.Dropped++
				continue
			}
			spoils.Gems = append(spoils.Gems, g)
		}
	}
	p.logger.Info("battle ended",
		zap.String("uid", p.UID),
		zap.String("outcome", string(phase)),
		zap.Int("gems", len(spoils.Gems)),
	)
	p.battle = nil
	p.fighters = nil
	return spoils, nil
}
