package gem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

func TestCategoryOf_AllVariants(t *testing.T) {
	assert.Equal(t, gem.CategoryElement, gem.CategoryOf(gem.ElementPayload{}))
	assert.Equal(t, gem.CategoryDamage, gem.CategoryOf(gem.DamagePayload{}))
	assert.Equal(t, gem.CategoryHeal, gem.CategoryOf(gem.HealPayload{}))
	assert.Equal(t, gem.CategoryBuff, gem.CategoryOf(gem.BuffPayload{}))
	assert.Equal(t, gem.CategoryStatus, gem.CategoryOf(gem.StatusPayload{}))
	assert.Equal(t, gem.CategoryUnknown, gem.CategoryOf(nil))
}

func TestTier_OrdinalsAscend(t *testing.T) {
	for i := 1; i < len(gem.Tiers); i++ {
		assert.Less(t, gem.Tiers[i-1].Ordinal(), gem.Tiers[i].Ordinal())
	}
	assert.Equal(t, 100, gem.TierLegendary.Ordinal())
}

func TestParseTier_RoundTrip(t *testing.T) {
	for _, tier := range gem.Tiers {
		got, err := gem.ParseTier(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	_, err := gem.ParseTier("mythic")
	assert.Error(t, err)
}

func TestAreaBonus(t *testing.T) {
	assert.Equal(t, 0, gem.DamagePayload{}.AreaBonus())
	assert.Equal(t, 1, gem.DamagePayload{Area: true}.AreaBonus())
	assert.Equal(t, 3, gem.HealPayload{Area: true, ExtraTargets: 3}.AreaBonus())
}

func TestStatDeltas_String(t *testing.T) {
	assert.Equal(t, "+3 attack, -1 speed", gem.StatDeltas{Attack: 3, Speed: -1}.String())
	assert.Equal(t, "no stat change", gem.StatDeltas{}.String())
}

func TestDefaultTables_Valid(t *testing.T) {
	require.NoError(t, gem.DefaultTables().Validate())
}

func TestTables_TierFor(t *testing.T) {
	tables := gem.DefaultTables()
	assert.Equal(t, gem.TierLegendary, tables.TierFor(0))
	assert.Equal(t, gem.TierLegendary, tables.TierFor(5))
	assert.Equal(t, gem.TierUnique, tables.TierFor(6))
	assert.Equal(t, gem.TierUnique, tables.TierFor(25))
	assert.Equal(t, gem.TierRare, tables.TierFor(60))
	assert.Equal(t, gem.TierCommon, tables.TierFor(61))
	assert.Equal(t, gem.TierCommon, tables.TierFor(99))
}

func TestLoadTables_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
types:
  - ordinal: 1
    name: Fire
    subtype: fire
    category: element
    element: fire
  - ordinal: 2
    name: Haste
    subtype: haste
    category: buff
    buff:
      speed: 4
thresholds:
  - max: 10
    tier: legendary
fallback: rare
effects:
  - tier: common
    effects: [{cast: a, hit: b}]
  - tier: rare
    effects: [{cast: c, hit: d, cast_offset: {y: 1}}]
  - tier: unique
    effects: [{cast: e, hit: f}]
  - tier: legendary
    effects: [{cast: g, hit: h}]
damage: {min_low: 1, min_high: 10, spread_low: 1, spread_high: 5, crit_chance: 0.1}
heal: {low: 5, high: 10}
buff_duration: 30
status_duration: 2
status_chance: 0.5
`), 0644))

	tables, err := gem.LoadTables(path)
	require.NoError(t, err)
	assert.Len(t, tables.Types, 2)
	assert.Equal(t, gem.ElementFire, tables.Types[0].Element)
	assert.Equal(t, 4, tables.Types[1].Buff.Speed)
	assert.Equal(t, gem.TierRare, tables.TierFor(50))
	assert.Equal(t, 1.0, tables.EffectsFor(gem.TierRare)[0].CastOffset.Y)
}

func TestLoadTables_RejectsUnknownFields(t *testing.T) {
	_, err := gem.LoadTablesFromBytes([]byte("bogus: 1\n"))
	assert.Error(t, err)
}

func TestLoadTables_RejectsInvalid(t *testing.T) {
	_, err := gem.LoadTablesFromBytes([]byte("types: []\nfallback: common\n"))
	assert.Error(t, err)
}

func TestGenerator_Deterministic(t *testing.T) {
	g := gem.NewGenerator(gem.DefaultTables(), zap.NewNop())
	a, err := g.Generate(dice.NewSeededSource(7))
	require.NoError(t, err)
	b, err := g.Generate(dice.NewSeededSource(7))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerator_DamageGem(t *testing.T) {
	g := gem.NewGenerator(gem.DefaultTables(), zap.NewNop())
	// type index 9 = Damage; tier roll 70 = common; min draw 9 -> 10; spread draw 2 -> 5.
	src := &dice.Sequence{Values: []int{9, 70, 9, 2}}
	c, err := g.Generate(src)
	require.NoError(t, err)
	assert.Equal(t, "Damage", c.Name)
	assert.Equal(t, gem.TierCommon, c.Tier)
	p, ok := c.Payload.(gem.DamagePayload)
	require.True(t, ok)
	assert.Equal(t, 10, p.Min)
	assert.Equal(t, 15, p.Max)
	assert.False(t, p.Area)
}

func TestGenerator_ElementGemUsesTierEffects(t *testing.T) {
	g := gem.NewGenerator(gem.DefaultTables(), zap.NewNop())
	// type index 0 = Fire; tier roll 3 = legendary; effect pick 0.
	src := &dice.Sequence{Values: []int{0, 3, 0}}
	c, err := g.Generate(src)
	require.NoError(t, err)
	p, ok := c.Payload.(gem.ElementPayload)
	require.True(t, ok)
	assert.Equal(t, gem.TierLegendary, c.Tier)
	assert.Equal(t, gem.ElementFire, p.Element)
	assert.Equal(t, "cataclysm_cast", p.CastEffect)
	assert.Equal(t, "cataclysm_hit", p.HitEffect)
}

func TestGenerator_Property_PayloadWithinRanges(t *testing.T) {
	tables := gem.DefaultTables()
	g := gem.NewGenerator(tables, zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		c, err := g.Generate(src)
		require.NoError(rt, err)
		assert.True(rt, c.Tier.Valid())
		assert.NotEmpty(rt, c.ID)
		switch p := c.Payload.(type) {
		case gem.DamagePayload:
			assert.GreaterOrEqual(rt, p.Min, tables.Damage.MinLow)
			assert.Less(rt, p.Min, tables.Damage.MinHigh)
			assert.GreaterOrEqual(rt, p.Max-p.Min, tables.Damage.SpreadLow)
		case gem.HealPayload:
			assert.GreaterOrEqual(rt, p.Amount, tables.Heal.Low)
			assert.Less(rt, p.Amount, tables.Heal.High)
		case gem.BuffPayload:
			assert.Equal(rt, tables.BuffDuration, p.Duration)
		case gem.StatusPayload:
			assert.NotEmpty(rt, p.Condition)
		case gem.ElementPayload:
			assert.NotEqual(rt, gem.ElementNone, p.Element)
		default:
			rt.Fatalf("unexpected payload %T", p)
		}
	})
}
