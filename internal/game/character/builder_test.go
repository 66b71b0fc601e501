package character_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skillforge/internal/game/character"
)

func TestBuild_LevelOne(t *testing.T) {
	arch := character.DefaultArchetypes()["warrior"]
	c, err := character.Build("Hero", arch, 1)
	require.NoError(t, err)
	assert.Equal(t, "warrior", c.Class)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, arch.Base, c.Stats)
	assert.Equal(t, c.Stats.MaxHP, c.CurrentHP)
	assert.Equal(t, 0, c.Skills.Len())
	assert.True(t, c.Alive())
}

func TestBuild_AppliesGrowth(t *testing.T) {
	arch := &character.Archetype{ID: "x", Base: character.Stats{MaxHP: 10, Attack: 2}, Growth: character.Stats{MaxHP: 5, Attack: 1}}
	c, err := character.Build("Hero", arch, 3)
	require.NoError(t, err)
	assert.Equal(t, 20, c.Stats.MaxHP)
	assert.Equal(t, 4, c.Stats.Attack)
}

func TestBuild_EmptyName(t *testing.T) {
	_, err := character.Build("", character.DefaultArchetypes()["mage"], 1)
	assert.Error(t, err)
}

func TestBuild_NilArchetype(t *testing.T) {
	_, err := character.Build("Hero", nil, 1)
	assert.Error(t, err)
}

func TestLoadArchetypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: paladin
  name: Paladin
  base: {max_hp: 55, attack: 10, defense: 12, speed: 6, magic: 8}
  growth: {max_hp: 10, attack: 2, defense: 2, speed: 1, magic: 2}
`), 0644))
	got, err := character.LoadArchetypes(path)
	require.NoError(t, err)
	require.Contains(t, got, "paladin")
	assert.Equal(t, 12, got["paladin"].Base.Defense)
	assert.Equal(t, []string{"paladin"}, character.ArchetypeIDs(got))
}

func TestLoadArchetypes_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: a\n- id: a\n"), 0644))
	_, err := character.LoadArchetypes(path)
	assert.Error(t, err)
}

func TestProperty_BuildHPAlwaysPositive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		arch := &character.Archetype{
			ID:     "r",
			Base:   character.Stats{MaxHP: rapid.IntRange(-10, 100).Draw(rt, "hp")},
			Growth: character.Stats{MaxHP: rapid.IntRange(0, 20).Draw(rt, "growth")},
		}
		level := rapid.IntRange(-3, 20).Draw(rt, "level")
		c, err := character.Build("R", arch, level)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, c.Stats.MaxHP, 1)
		assert.GreaterOrEqual(rt, c.Level, 1)
	})
}
