// Package main runs unattended play sessions: each simulated player forges
// abilities from generated gems and fights encounters against the monster
// catalog, narrating every battle to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/config"
	"github.com/cory-johannsen/skillforge/internal/game/ai"
	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/condition"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
	"github.com/cory-johannsen/skillforge/internal/game/monster"
	"github.com/cory-johannsen/skillforge/internal/game/session"
	"github.com/cory-johannsen/skillforge/internal/observability"
	"github.com/cory-johannsen/skillforge/internal/runner"
	"github.com/cory-johannsen/skillforge/internal/scripting"
	"github.com/cory-johannsen/skillforge/internal/sim"
	"github.com/cory-johannsen/skillforge/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	players := flag.Int("players", 1, "number of simulated players")
	encounters := flag.Int("encounters", 5, "encounters per player")
	gems := flag.Int("gems", 4, "gems generated before each encounter")
	persist := flag.Bool("persist", false, "write players to the configured database")
	plain := flag.Bool("plain", false, "disable styled output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging, "battlesim")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, options{
		players:    *players,
		encounters: *encounters,
		gems:       *gems,
		persist:    *persist,
		plain:      *plain,
	}); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
	logger.Info("battlesim finished", zap.Duration("elapsed", time.Since(start)))
}

type options struct {
	players    int
	encounters int
	gems       int
	persist    bool
	plain      bool
	out        io.Writer // nil writes to stdout
}

// content is the loaded game data shared by every simulated player.
type content struct {
	tables     *gem.Tables
	catalog    *monster.Catalog
	conditions *condition.Registry
	classes    map[string]*character.Archetype
}

func loadContent(cfg config.ContentConfig) (content, error) {
	var (
		c   content
		err error
	)
	c.tables = gem.DefaultTables()
	if cfg.GemTables != "" {
		if c.tables, err = gem.LoadTables(cfg.GemTables); err != nil {
			return c, err
		}
	}
	if c.catalog, err = monster.LoadCatalog(cfg.Monsters); err != nil {
		return c, err
	}
	c.conditions = condition.DefaultRegistry()
	if cfg.Conditions != "" {
		if c.conditions, err = condition.LoadDirectory(cfg.Conditions); err != nil {
			return c, err
		}
	}
	c.classes = character.DefaultArchetypes()
	if cfg.Classes != "" {
		if c.classes, err = character.LoadArchetypes(cfg.Classes); err != nil {
			return c, err
		}
	}
	return c, nil
}

func sourceFor(cfg config.BattleConfig, i int, logger *zap.Logger) dice.Source {
	var src dice.Source
	if cfg.Seed != 0 {
		src = dice.NewSeededSource(cfg.Seed + uint64(i))
	} else {
		src = dice.NewCryptoSource()
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		src = dice.NewLoggedSource(src, logger.Named("dice"))
	}
	return src
}

func newParty(classes map[string]*character.Archetype, player string, size int) ([]*character.Character, error) {
	ids := character.ArchetypeIDs(classes)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no character classes available")
	}
	party := make([]*character.Character, 0, size)
	for i := range size {
		c, err := character.Build(fmt.Sprintf("%s-%d", player, i+1), classes[ids[i%len(ids)]], 1)
		if err != nil {
			return nil, err
		}
		party = append(party, c)
	}
	return party, nil
}

// newScripts loads the decision scripts into a manager whose engine.dice draws
// from src. Each simulated player gets its own so a seeded run replays exactly,
// whatever order the runner's goroutines are scheduled in.
func newScripts(cfg config.Config, src dice.Source, logger *zap.Logger) (*scripting.Manager, error) {
	scripts := scripting.NewManager(src, logger)
	if cfg.Content.AIScripts == "" {
		return scripts, nil
	}
	ids, err := scripts.LoadDir(cfg.Content.AIScripts, cfg.Scripting.InstructionLimit)
	if err != nil {
		scripts.Close()
		return nil, fmt.Errorf("loading decision scripts: %w", err)
	}
	logger.Debug("decision scripts loaded", zap.Strings("scripts", ids))
	return scripts, nil
}

func run(cfg config.Config, logger *zap.Logger, opts options) error {
	ctx := context.Background()
	lc := runner.NewLifecycle(logger)

	data, err := loadContent(cfg.Content)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	if err := data.tables.Validate(); err != nil {
		return fmt.Errorf("gem tables: %w", err)
	}
	gen := gem.NewGenerator(data.tables, logger.Named("gems"))
	spawner := monster.NewSpawner(data.catalog, logger.Named("spawner"))
	manager := session.NewManager(gen, logger)

	var store sim.Syncer
	if opts.persist {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		lc.OnStop("database", pool.Close)
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			return fmt.Errorf("database health check: %w", err)
		}
		store = postgres.NewStore(pool.DB(), logger.Named("store"))
	}

	w := opts.out
	if w == nil {
		w = os.Stdout
	}
	out := sim.NewRenderer(w, opts.plain)
	settings := sim.Settings{
		Encounters:   opts.encounters,
		GemsPerForge: opts.gems,
		Battle: session.BattleSettings{
			MaxOpponents: cfg.Battle.MaxOpponents,
			FleeChance:   cfg.Battle.FleeChance,
		},
	}

	for i := range opts.players {
		uid := fmt.Sprintf("sim-%d", i+1)
		party, err := newParty(data.classes, uid, cfg.Battle.PartySize)
		if err != nil {
			return err
		}
		p, err := manager.AddPlayer(uid, uid, cfg.Battle.Region, party)
		if err != nil {
			return err
		}
		src := sourceFor(cfg.Battle, i, logger)
		scripts, err := newScripts(cfg, src, logger.Named("scripting").With(zap.String("uid", uid)))
		if err != nil {
			return err
		}
		lc.OnStop(uid+" scripts", scripts.Close)
		decider := ai.NewScripted(scripts, data.catalog, ai.NewWeighted(data.catalog, src), logger.Named("ai"))
		simulator := sim.New(sim.Deps{
			Spawner:    spawner,
			Catalog:    data.catalog,
			Generator:  gen,
			Conditions: data.conditions,
			Decider:    decider,
			Store:      store,
			Out:        out,
			Logger:     logger.With(zap.String("uid", uid)),
		}, settings)

		lc.Add(uid, runner.JobFunc(func(ctx context.Context) error {
			defer manager.RemovePlayer(uid)
			rep, err := simulator.Run(ctx, p, src)
			out.System("%s: %d encounters, %d won, %d lost, %d escaped, %d forged, %d gems looted.",
				uid, rep.Encounters, rep.Victories, rep.Defeats, rep.Escapes, rep.Forged, rep.GemsLooted)
			return err
		}))
	}

	return lc.Run(ctx)
}
