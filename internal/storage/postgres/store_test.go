package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
	"github.com/cory-johannsen/skillforge/internal/game/session"
	"github.com/cory-johannsen/skillforge/internal/storage/postgres"
	"github.com/cory-johannsen/skillforge/internal/testutil"
)

func TestStore_SyncMirrorsThePlayer(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	gen := gem.NewGenerator(gem.DefaultTables(), zap.NewNop())
	store := postgres.NewStore(pool, logger)

	mgr := session.NewManager(gen, logger)
	uid := uniqueName("uid")
	p, err := mgr.AddPlayer(uid, "Ayla", 1, []*character.Character{newWarrior(t, "Ayla"), newWarrior(t, "Bram")})
	require.NoError(t, err)

	src := dice.NewSeededSource(3)
	kept, err := p.Crafting.Generate(src)
	require.NoError(t, err)
	spent, err := p.Crafting.Generate(src)
	require.NoError(t, err)
	require.NoError(t, p.Party[0].Learn(ember()))
	rn := craft.NewRune(ember())
	require.NoError(t, p.Backpack.AddRune(rn))

	require.NoError(t, store.Sync(ctx, p))
	for _, c := range p.Party {
		assert.Greater(t, c.ID, int64(0))
	}

	row, err := store.Players.GetByUID(ctx, uid)
	require.NoError(t, err)
	gems, err := store.Gems.List(ctx, row.ID)
	require.NoError(t, err)
	assert.Len(t, gems, 2)

	// Spend a gem and the rune, take damage, move regions, then sync again.
	require.NoError(t, p.Backpack.RemoveGem(spent.ID))
	_, err = p.Backpack.TakeRune(rn.ID)
	require.NoError(t, err)
	p.Party[1].CurrentHP = 1
	p.Region = 3
	require.NoError(t, store.Sync(ctx, p))

	gems, err = store.Gems.List(ctx, row.ID)
	require.NoError(t, err)
	require.Len(t, gems, 1)
	assert.Equal(t, kept.ID, gems[0].ID)

	runes, err := store.Runes.List(ctx, row.ID)
	require.NoError(t, err)
	assert.Empty(t, runes)

	bram, err := store.Characters.GetByID(ctx, p.Party[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bram.CurrentHP)

	abilities, err := store.Abilities.List(ctx, p.Party[0].ID)
	require.NoError(t, err)
	require.Len(t, abilities, 1)
	assert.Equal(t, "Ember", abilities[0].Name)

	row, err = store.Players.GetByUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Region)
}
