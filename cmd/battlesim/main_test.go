package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skillforge/internal/config"
)

func repoContent() config.ContentConfig {
	return config.ContentConfig{
		GemTables:  "../../content/gems/tables.yaml",
		Monsters:   "../../content/monsters",
		Conditions: "../../content/conditions",
		Classes:    "../../content/classes.yaml",
		AIScripts:  "../../content/ai",
	}
}

func TestLoadContent_ShippedFiles(t *testing.T) {
	data, err := loadContent(repoContent())
	require.NoError(t, err)

	require.NoError(t, data.tables.Validate())
	assert.NotEmpty(t, data.catalog.ForRegion(1))
	for _, tmpl := range data.catalog.ForRegion(3) {
		for _, a := range tmpl.Abilities {
			if a.Status == nil {
				continue
			}
			_, ok := data.conditions.Get(a.Status.Condition)
			assert.True(t, ok, "%s uses unknown condition %q", tmpl.ID, a.Status.Condition)
		}
	}
	assert.Contains(t, data.classes, "cleric")
}

func TestRun_SeededSimulation(t *testing.T) {
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	cfg.Content = repoContent()
	cfg.Battle.Seed = 7
	cfg.Battle.Region = 2
	cfg.Battle.PartySize = 2
	require.NoError(t, cfg.Validate())

	err = run(cfg, zaptest.NewLogger(t), options{players: 2, encounters: 2, gems: 3, plain: true})
	assert.NoError(t, err)
}

func TestRun_SameSeedReplaysScriptedBattles(t *testing.T) {
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	cfg.Content = repoContent()
	cfg.Battle.Seed = 7
	cfg.Battle.Region = 3
	cfg.Battle.PartySize = 2
	require.NoError(t, cfg.Validate())

	narrate := func() string {
		var out bytes.Buffer
		err := run(cfg, zaptest.NewLogger(t), options{players: 1, encounters: 6, gems: 3, plain: true, out: &out})
		require.NoError(t, err)
		return out.String()
	}
	first := narrate()
	assert.Contains(t, first, "Battle over after")
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, narrate(), "run %d diverged from the first", i+2)
	}
}
