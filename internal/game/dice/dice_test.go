package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skillforge/internal/game/dice"
)

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSequence_WrapsAndCycles(t *testing.T) {
	s := &dice.Sequence{Values: []int{3, 12}}
	assert.Equal(t, 3, s.Intn(10))
	assert.Equal(t, 2, s.Intn(10))
	assert.Equal(t, 3, s.Intn(10))
}

func TestChance_Bounds(t *testing.T) {
	src := &dice.Sequence{Values: []int{99}}
	assert.True(t, dice.Chance(src, 100))
	assert.False(t, dice.Chance(src, 0))
	assert.False(t, dice.Chance(src, 99))
	assert.True(t, dice.Chance(src, 99.5))
}

func TestBetween_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		min := rapid.IntRange(-100, 100).Draw(rt, "min")
		width := rapid.IntRange(1, 100).Draw(rt, "width")
		v := dice.Between(dice.NewSeededSource(seed), min, min+width)
		assert.GreaterOrEqual(rt, v, min)
		assert.Less(rt, v, min+width)
	})
}

func TestLoggedSource_LogsDraw(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	src := dice.NewLoggedSource(&dice.Sequence{Values: []int{4}}, zap.New(core))
	assert.Equal(t, 4, src.Intn(6))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "dice draw", logs.All()[0].Message)
}
