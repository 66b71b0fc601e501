package combat_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
)

func TestActionKind_String(t *testing.T) {
	assert.Equal(t, "attack", combat.ActionAttack.String())
	assert.Equal(t, "cast", combat.ActionCast.String())
	assert.Equal(t, "use", combat.ActionUseItem.String())
	assert.Equal(t, "flee", combat.ActionFlee.String())
	assert.Equal(t, "unknown", combat.ActionUnknown.String())
}

func TestQueuedAction_TargetCount(t *testing.T) {
	area := craft.NewDescriptor()
	area.TargetCount = 3
	r := craft.NewRune(area)

	assert.Equal(t, 1, (&combat.QueuedAction{Kind: combat.ActionAttack}).TargetCount())
	assert.Equal(t, 0, (&combat.QueuedAction{Kind: combat.ActionFlee}).TargetCount())
	assert.Equal(t, 3, (&combat.QueuedAction{Kind: combat.ActionCast, Ability: &area}).TargetCount())
	assert.Equal(t, 3, (&combat.QueuedAction{Kind: combat.ActionUseItem, Rune: &r}).TargetCount())
	assert.True(t, (&combat.QueuedAction{Kind: combat.ActionUseItem, Rune: &r}).IsArea())
	assert.Equal(t, 1, (&combat.QueuedAction{Kind: combat.ActionCast}).TargetCount())
}

func TestQueuedAction_Toggle(t *testing.T) {
	q := &combat.QueuedAction{Kind: combat.ActionAttack}
	assert.True(t, q.Toggle(3))
	assert.True(t, q.HasTarget(3))
	assert.True(t, q.Satisfied())
	assert.False(t, q.Toggle(3))
	assert.Empty(t, q.Targets)
	assert.False(t, q.Satisfied())
}

func TestPropertyQueuedAction_ToggleTwiceIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.SliceOfDistinct(rapid.IntRange(0, 10), func(i int) int { return i }).Draw(rt, "targets")
		q := &combat.QueuedAction{Kind: combat.ActionCast}
		for _, v := range raw {
			q.Targets = append(q.Targets, combat.Handle(v))
		}
		before := slices.Clone(q.Targets)
		h := combat.Handle(rapid.IntRange(0, 10).Draw(rt, "h"))
		q.Toggle(h)
		q.Toggle(h)
		assert.ElementsMatch(rt, before, q.Targets)
		assert.Len(rt, q.Targets, len(before))
	})
}
