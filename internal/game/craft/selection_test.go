package craft_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

func elementGem(id string, el gem.Element, tier gem.Tier) *gem.Component {
	return &gem.Component{
		ID: id, Name: el.String(), Subtype: gem.Subtype(el.String()), Tier: tier,
		Payload: gem.ElementPayload{Element: el, CastEffect: "cast-" + el.String(), HitEffect: "hit-" + el.String()},
	}
}

func damageGem(id string, min, max int, area bool, tier gem.Tier) *gem.Component {
	return &gem.Component{
		ID: id, Name: "Damage", Subtype: "damage", Tier: tier,
		Payload: gem.DamagePayload{Min: min, Max: max, CritChance: 0.05, Area: area},
	}
}

func healGem(id string, amount int, tier gem.Tier) *gem.Component {
	return &gem.Component{ID: id, Name: "Heal", Subtype: "heal", Tier: tier, Payload: gem.HealPayload{Amount: amount}}
}

func buffGem(id string, sub gem.Subtype, tier gem.Tier) *gem.Component {
	return &gem.Component{
		ID: id, Name: string(sub), Subtype: sub, Tier: tier,
		Payload: gem.BuffPayload{Duration: 60, Deltas: gem.StatDeltas{Attack: 5}},
	}
}

func statusGem(id string, cond string, tier gem.Tier) *gem.Component {
	return &gem.Component{
		ID: id, Name: cond, Subtype: gem.Subtype(cond), Tier: tier,
		Payload: gem.StatusPayload{Condition: cond, Duration: 3, Chance: 1},
	}
}

func TestConflicts(t *testing.T) {
	fire := elementGem("a", gem.ElementFire, gem.TierCommon)
	water := elementGem("b", gem.ElementWater, gem.TierCommon)
	dmg := damageGem("c", 1, 5, false, gem.TierCommon)
	heal := healGem("d", 10, gem.TierCommon)
	haste := buffGem("e", "haste", gem.TierCommon)
	haste2 := buffGem("f", "haste", gem.TierRare)
	might := buffGem("g", "might", gem.TierCommon)

	assert.True(t, craft.Conflicts(fire, water))
	assert.True(t, craft.Conflicts(dmg, heal))
	assert.True(t, craft.Conflicts(heal, dmg))
	assert.True(t, craft.Conflicts(haste, haste2))
	assert.False(t, craft.Conflicts(haste, might))
	assert.False(t, craft.Conflicts(fire, dmg))
	assert.False(t, craft.Conflicts(dmg, haste))
}

func TestSelection_Insert_EvictsElement(t *testing.T) {
	sel := craft.NewSelection()
	fire := elementGem("fire", gem.ElementFire, gem.TierCommon)
	water := elementGem("water", gem.ElementWater, gem.TierRare)
	dmg := damageGem("dmg", 1, 5, false, gem.TierCommon)

	assert.Empty(t, sel.Insert(fire))
	assert.Empty(t, sel.Insert(dmg))
	evicted := sel.Insert(water)
	require.Len(t, evicted, 1)
	assert.Equal(t, "fire", evicted[0].ID)
	assert.Equal(t, []string{"dmg", "water"}, sel.IDs())
}

func TestSelection_Insert_HealEvictsDamage(t *testing.T) {
	sel := craft.NewSelection()
	sel.Insert(damageGem("dmg", 1, 5, false, gem.TierCommon))
	sel.Insert(buffGem("haste", "haste", gem.TierCommon))
	evicted := sel.Insert(healGem("heal", 20, gem.TierCommon))
	require.Len(t, evicted, 1)
	assert.Equal(t, "dmg", evicted[0].ID)
	assert.Equal(t, []string{"haste", "heal"}, sel.IDs())
}

func TestSelection_Insert_SameSubtypeDiscardsEarlierPayload(t *testing.T) {
	sel := craft.NewSelection()
	sel.Insert(buffGem("weak", "haste", gem.TierLegendary))
	sel.Insert(buffGem("strong", "haste", gem.TierCommon))
	assert.Equal(t, []string{"strong"}, sel.IDs())
}

func TestSelection_Toggle_Deselects(t *testing.T) {
	sel := craft.NewSelection()
	g := statusGem("poison", "poisoned", gem.TierCommon)
	selected, _ := sel.Toggle(g)
	assert.True(t, selected)
	assert.True(t, sel.Contains("poison"))
	selected, _ = sel.Toggle(g)
	assert.False(t, selected)
	assert.Equal(t, 0, sel.Len())
}

func TestSelection_Components_IsCopy(t *testing.T) {
	sel := craft.NewSelection()
	sel.Insert(healGem("heal", 20, gem.TierCommon))
	comps := sel.Components()
	comps[0] = nil
	assert.NotNil(t, sel.Components()[0])
}

func TestSelection_Remove_Absent(t *testing.T) {
	sel := craft.NewSelection()
	assert.False(t, sel.Remove("nothing"))
}

func TestSelection_Clear(t *testing.T) {
	sel := craft.NewSelection()
	sel.Insert(healGem("heal", 20, gem.TierCommon))
	sel.Clear()
	assert.Equal(t, 0, sel.Len())
}

func genComponent(t *rapid.T, label string) *gem.Component {
	id := fmt.Sprintf("%s-%d", label, rapid.IntRange(0, 1_000_000).Draw(t, label+"-id"))
	tier := rapid.SampledFrom(gem.Tiers).Draw(t, label+"-tier")
	switch rapid.IntRange(0, 4).Draw(t, label+"-kind") {
	case 0:
		el := gem.Element(rapid.IntRange(1, 9).Draw(t, label+"-element"))
		return elementGem(id, el, tier)
	case 1:
		return damageGem(id, 1, 10, rapid.Bool().Draw(t, label+"-area"), tier)
	case 2:
		return healGem(id, 10, tier)
	case 3:
		sub := rapid.SampledFrom([]gem.Subtype{"might", "bulwark", "haste", "focus"}).Draw(t, label+"-buff")
		return buffGem(id, sub, tier)
	default:
		cond := rapid.SampledFrom([]string{"poisoned", "burning", "stunned", "asleep"}).Draw(t, label+"-status")
		return statusGem(id, cond, tier)
	}
}

func TestPropertySelection_NoConflictsAfterInsert(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sel := craft.NewSelection()
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			c := genComponent(rt, fmt.Sprintf("g%d", i))
			sel.Insert(c)
			assert.True(rt, sel.Contains(c.ID), "inserted gem must always be kept")
		}
		comps := sel.Components()
		elements, primaries := 0, 0
		for i, a := range comps {
			switch a.Category() {
			case gem.CategoryElement:
				elements++
			case gem.CategoryDamage, gem.CategoryHeal:
				primaries++
			}
			for _, b := range comps[i+1:] {
				assert.False(rt, craft.Conflicts(a, b), "%s conflicts with %s", a.ID, b.ID)
			}
		}
		assert.LessOrEqual(rt, elements, 1)
		assert.LessOrEqual(rt, primaries, 1)
	})
}
