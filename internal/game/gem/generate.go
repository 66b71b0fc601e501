package gem

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/dice"
)

// Generator synthesizes random gems from Tables.
type Generator struct {
	tables *Tables
	types  []TypeDef
	logger *zap.Logger
}

// NewGenerator creates a Generator over tables.
//
// Precondition: tables must pass Validate; logger must be non-nil.
func NewGenerator(tables *Tables, logger *zap.Logger) *Generator {
	return &Generator{tables: tables, types: tables.sortedTypes(), logger: logger}
}

// Generate draws one gem: first its type, then its tier, then its payload, and
// finally its ID, all from src.
//
// Precondition: src must be non-nil.
// Postcondition: two calls with sources producing identical sequences return
// identical components, ID included.
func (g *Generator) Generate(src dice.Source) (*Component, error) {
	td := g.types[dice.Pick(src, len(g.types))]
	tier := g.tables.TierFor(dice.Percent(src))

	payload, err := g.payloadFor(td, tier, src)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewRandomFromReader(sourceReader{src: src})
	if err != nil {
		return nil, fmt.Errorf("gem: generating id: %w", err)
	}

	c := &Component{
		ID:      id.String(),
		Name:    td.Name,
		Subtype: td.Subtype,
		Tier:    tier,
		Payload: payload,
	}
	g.logger.Debug("generated gem",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
		zap.Stringer("tier", c.Tier),
		zap.Stringer("category", c.Category()),
	)
	return c, nil
}

func (g *Generator) payloadFor(td TypeDef, tier Tier, src dice.Source) (Payload, error) {
	t := g.tables
	switch td.Category {
	case CategoryElement:
		effects := t.EffectsFor(tier)
		if len(effects) == 0 {
			return nil, fmt.Errorf("gem: no effect graphics for tier %s", tier)
		}
		fx := effects[dice.Pick(src, len(effects))]
		return ElementPayload{
			Element:    td.Element,
			CastEffect: fx.Cast,
			HitEffect:  fx.Hit,
			CastOffset: fx.CastOffset,
		}, nil
	case CategoryDamage:
		min := dice.Between(src, t.Damage.MinLow, t.Damage.MinHigh)
		max := min + dice.Between(src, t.Damage.SpreadLow, t.Damage.SpreadHigh)
		return DamagePayload{Min: min, Max: max, CritChance: t.Damage.CritChance}, nil
	case CategoryHeal:
		return HealPayload{Amount: dice.Between(src, t.Heal.Low, t.Heal.High)}, nil
	case CategoryBuff:
		return BuffPayload{Duration: t.BuffDuration, Deltas: td.Buff}, nil
	case CategoryStatus:
		return StatusPayload{Condition: td.Condition, Duration: t.StatusDuration, Chance: t.StatusChance}, nil
	default:
		return nil, fmt.Errorf("gem: type %q has unknown category", td.Name)
	}
}

// sourceReader adapts a dice.Source into an io.Reader of random bytes.
type sourceReader struct {
	src dice.Source
}

func (r sourceReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.src.Intn(256))
	}
	return len(p), nil
}
