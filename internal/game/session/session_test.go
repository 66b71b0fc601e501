package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
	"github.com/cory-johannsen/skillforge/internal/game/inventory"
	"github.com/cory-johannsen/skillforge/internal/game/monster"
)

func TestFeed_Push(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Push(combat.Event{Kind: combat.EventDamage, Amount: 3}))
	ev := <-f.Events()
	assert.Equal(t, 3, ev.Amount)
}

func TestFeed_PushClosed(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Close())
	assert.True(t, f.IsClosed())
	assert.Error(t, f.Push(combat.Event{}))
}

func TestFeed_PushFull(t *testing.T) {
	f := NewFeed("test", 1)
	err := f.Push(combat.Event{Amount: 1}, combat.Event{Amount: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer full")
	got := f.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Amount)
}

func TestFeed_CloseIdempotent(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Empty(t, f.Drain())
}

func newManager(t testing.TB) (*Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewManager(gem.NewGenerator(gem.DefaultTables(), zap.NewNop()), zap.New(core)), logs
}

func hero(t testing.TB, name, class string) *character.Character {
	t.Helper()
	c, err := character.Build(name, character.DefaultArchetypes()[class], 1)
	require.NoError(t, err)
	return c
}

func TestManager_AddPlayer(t *testing.T) {
	m, _ := newManager(t)
	p, err := m.AddPlayer("u1", "Alice", 1, []*character.Character{hero(t, "Ari", "warrior")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, 1, p.Region)
	require.NotNil(t, p.Backpack)
	assert.Equal(t, DefaultBackpackSlots, p.Backpack.MaxSlots)
	require.NotNil(t, p.Crafting)
	assert.Equal(t, 1, m.PlayerCount())
	assert.Equal(t, []string{"u1"}, m.PlayersInRegion(1))
}

func TestManager_AddPlayer_Rejects(t *testing.T) {
	m, _ := newManager(t)
	party := []*character.Character{hero(t, "Ari", "warrior")}
	_, err := m.AddPlayer("u1", "Alice", 1, party)
	require.NoError(t, err)
	_, err = m.AddPlayer("u1", "Alice", 1, party)
	assert.Error(t, err, "duplicate uid")
	_, err = m.AddPlayer("u2", "", 1, party)
	assert.Error(t, err, "empty name")
	_, err = m.AddPlayer("u3", "Cy", 1, nil)
	assert.ErrorIs(t, err, ErrNoFighters)
}

func TestManager_MoveAndRemove(t *testing.T) {
	m, _ := newManager(t)
	p, err := m.AddPlayer("u1", "Alice", 1, []*character.Character{hero(t, "Ari", "warrior")})
	require.NoError(t, err)

	old, err := m.MovePlayer("u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, old)
	assert.Empty(t, m.PlayersInRegion(1))
	assert.Equal(t, []string{"u1"}, m.PlayersInRegion(3))

	_, ok := m.GetPlayerByName("Alice")
	assert.True(t, ok)

	require.NoError(t, m.RemovePlayer("u1"))
	assert.True(t, p.Feed.IsClosed())
	assert.Zero(t, m.PlayerCount())
	assert.Error(t, m.RemovePlayer("u1"))
	_, err = m.MovePlayer("u1", 2)
	assert.Error(t, err)
}

func TestManager_ConcurrentAddRemove(t *testing.T) {
	m, _ := newManager(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := fmt.Sprintf("u%d", i)
			party := []*character.Character{{Name: "x", Stats: character.Stats{MaxHP: 5}, CurrentHP: 5}}
			if _, err := m.AddPlayer(uid, uid, i%3, party); err != nil {
				t.Error(err)
				return
			}
			m.PlayersInRegion(i % 3)
			if i%2 == 0 {
				_ = m.RemovePlayer(uid)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, m.PlayerCount())
}

func TestProperty_RegionOccupancyMatchesPlayers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m, _ := newManager(t)
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		for i := 0; i < n; i++ {
			uid := fmt.Sprintf("u%d", i)
			party := []*character.Character{{Name: "x", Stats: character.Stats{MaxHP: 5}, CurrentHP: 5}}
			if _, err := m.AddPlayer(uid, uid, rapid.IntRange(0, 3).Draw(rt, "region"), party); err != nil {
				rt.Fatal(err)
			}
			if rapid.Bool().Draw(rt, "move") {
				if _, err := m.MovePlayer(uid, rapid.IntRange(0, 3).Draw(rt, "to")); err != nil {
					rt.Fatal(err)
				}
			}
		}
		total := 0
		for r := 0; r <= 3; r++ {
			for _, uid := range m.PlayersInRegion(r) {
				p, ok := m.GetPlayer(uid)
				if !ok || p.Region != r {
					rt.Fatalf("player %s listed in region %d but is in %d", uid, r, p.Region)
				}
				total++
			}
		}
		if total != n {
			rt.Fatalf("occupancy %d != players %d", total, n)
		}
	})
}

func battleFixtures(t *testing.T) (*monster.Spawner, *monster.Catalog) {
	t.Helper()
	cat, err := monster.NewCatalog([]*monster.Template{{
		ID: "slime", Name: "Slime", Level: 1, Regions: []int{1},
		Stats: character.Stats{MaxHP: 1, Attack: 1},
		Loot:  &monster.GemDrop{Chance: 1, Min: 1, Max: 1},
	}})
	require.NoError(t, err)
	return monster.NewSpawner(cat, zap.NewNop()), cat
}

func attackFirstOpponent(t *testing.T, p *Player) {
	t.Helper()
	b := p.Battle()
	for b.Phase() == combat.PhaseActionSelect {
		actor, ok := b.Current()
		require.True(t, ok)
		_, err := b.CommitAction(combat.ActionAttack, actor)
		require.NoError(t, err)
		p.Apply(b.ToggleTarget(b.Registry().PlayerCount()))
	}
}

func TestPlayer_BattleLifecycle_VictoryDropsGems(t *testing.T) {
	m, logs := newManager(t)
	ari := hero(t, "Ari", "warrior")
	p, err := m.AddPlayer("u1", "Alice", 1, []*character.Character{ari})
	require.NoError(t, err)
	spawner, cat := battleFixtures(t)
	src := dice.NewSeededSource(5)

	_, err = p.StartBattle(src, spawner, BattleSettings{MaxOpponents: 2}, combat.Options{})
	require.NoError(t, err)
	require.NotNil(t, p.Battle())
	_, err = p.StartBattle(src, spawner, BattleSettings{MaxOpponents: 2}, combat.Options{})
	assert.ErrorIs(t, err, ErrInBattle)
	_, err = m.MovePlayer("u1", 2)
	assert.ErrorIs(t, err, ErrInBattle)

	attackFirstOpponent(t, p)
	decider := combat.DeciderFunc(func(combat.Snapshot, int) combat.Decision {
		return combat.Decision{Kind: combat.ActionAttack}
	})
	_, err = p.RunRound(src, decider)
	require.NoError(t, err)
	require.Equal(t, combat.PhaseVictory, p.Battle().Phase())

	spoils, err := p.EndBattle(src, cat, gem.NewGenerator(gem.DefaultTables(), zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseVictory, spoils.Outcome)
	assert.Len(t, spoils.Gems, 1)
	assert.Len(t, p.Backpack.Gems(), 1)
	assert.Nil(t, p.Battle())
	assert.Equal(t, 1, logs.FilterMessage("battle started").Len())

	var kinds []combat.EventKind
	for _, ev := range p.Feed.Drain() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, combat.EventOutcome)
}

func TestPlayer_EndBattle_RequiresTerminal(t *testing.T) {
	m, _ := newManager(t)
	p, err := m.AddPlayer("u1", "Alice", 1, []*character.Character{hero(t, "Ari", "warrior")})
	require.NoError(t, err)
	spawner, cat := battleFixtures(t)
	gen := gem.NewGenerator(gem.DefaultTables(), zap.NewNop())

	_, err = p.EndBattle(dice.NewSeededSource(1), cat, gen)
	assert.ErrorIs(t, err, ErrNoBattle)

	_, err = p.StartBattle(dice.NewSeededSource(1), spawner, BattleSettings{MaxOpponents: 2}, combat.Options{})
	require.NoError(t, err)
	_, err = p.EndBattle(dice.NewSeededSource(1), cat, gen)
	assert.ErrorIs(t, err, combat.ErrInvalidPhase)
}

func TestPlayer_StartBattle_NoLivingMembers(t *testing.T) {
	m, _ := newManager(t)
	ari := hero(t, "Ari", "warrior")
	ari.CurrentHP = 0
	p, err := m.AddPlayer("u1", "Alice", 1, []*character.Character{ari})
	require.NoError(t, err)
	spawner, _ := battleFixtures(t)
	_, err = p.StartBattle(dice.NewSeededSource(1), spawner, BattleSettings{MaxOpponents: 2}, combat.Options{})
	assert.ErrorIs(t, err, ErrNoFighters)
}

func TestPlayer_UseRune_ConsumedOnResolve(t *testing.T) {
	m, _ := newManager(t)
	p, err := m.AddPlayer("u1", "Alice", 1, []*character.Character{hero(t, "Ari", "mage"), hero(t, "Bo", "mage")})
	require.NoError(t, err)
	spawner, _ := battleFixtures(t)

	ability := craft.NewDescriptor()
	ability.Name = "Spark"
	ability.Effects = []craft.Effect{craft.DamageEffect{Min: 5, Max: 5}}
	r := craft.NewRune(ability)
	require.NoError(t, p.Backpack.AddRune(r))

	src := dice.NewSeededSource(9)
	_, err = p.StartBattle(src, spawner, BattleSettings{MaxOpponents: 2}, combat.Options{})
	require.NoError(t, err)
	b := p.Battle()

	_, err = p.UseRune(0, r.ID)
	require.NoError(t, err)
	p.Apply(b.ToggleTarget(b.Registry().PlayerCount()))

	_, err = p.UseRune(1, r.ID)
	assert.ErrorIs(t, err, ErrRuneQueued, "a rune cannot be committed twice in one round")
	_, err = p.UseRune(1, "missing")
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = b.CommitAction(combat.ActionFlee, 1)
	require.NoError(t, err)
	require.Len(t, p.Backpack.Runes(), 1, "rune stays until the round resolves")

	_, err = p.RunRound(src, combat.DeciderFunc(func(combat.Snapshot, int) combat.Decision {
		return combat.Decision{Kind: combat.ActionAttack}
	}))
	require.NoError(t, err)
	assert.Empty(t, p.Backpack.Runes())
}

func TestPlayer_SaveAbility(t *testing.T) {
	m, _ := newManager(t)
	ari := hero(t, "Ari", "mage")
	p, err := m.AddPlayer("u1", "Alice", 1, []*character.Character{ari})
	require.NoError(t, err)
	assert.ErrorIs(t, p.SaveAbility(5), ErrNoMember)
	assert.ErrorIs(t, p.SaveAbility(0), craft.ErrNothingToSave)
}
