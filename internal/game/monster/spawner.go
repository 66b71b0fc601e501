package monster

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/dice"
)

// Spawner builds the opponent line-up for a battle.
type Spawner struct {
	catalog *Catalog
	logger  *zap.Logger
}

// NewSpawner creates a Spawner over catalog.
//
// Precondition: catalog and logger must be non-nil.
func NewSpawner(catalog *Catalog, logger *zap.Logger) *Spawner {
	return &Spawner{catalog: catalog, logger: logger}
}

// Count draws how many opponents appear in region: a value in
// [region, maxOpponents), at least 1. When region >= maxOpponents the range is
// empty and region itself is used, capped at maxOpponents.
func Count(src dice.Source, region, maxOpponents int) int {
	n := region
	if maxOpponents > region {
		n = dice.Between(src, region, maxOpponents)
	} else if maxOpponents > 0 {
		n = maxOpponents
	}
	return max(n, 1)
}

// Spawn draws Count opponents from the region's templates, weighted by spawn
// weight. Duplicate names get a letter suffix ("Slime A", "Slime B").
//
// Postcondition: returns an error if no template spawns in region.
func (s *Spawner) Spawn(src dice.Source, region, maxOpponents int) ([]*combat.Combatant, error) {
	pool := s.catalog.ForRegion(region)
	if len(pool) == 0 {
		return nil, fmt.Errorf("monster: no templates for region %d", region)
	}
	total := 0
	for _, t := range pool {
		total += max(t.SpawnWeight, 1)
	}
	n := Count(src, region, maxOpponents)
	picked := make([]*Template, n)
	seen := make(map[string]int)
	for i := range picked {
		roll := dice.Pick(src, total)
		for _, t := range pool {
			roll -= max(t.SpawnWeight, 1)
			if roll < 0 {
				picked[i] = t
				break
			}
		}
		seen[picked[i].ID]++
	}

	out := make([]*combat.Combatant, n)
	suffix := make(map[string]int)
	for i, t := range picked {
		name := t.Name
		if seen[t.ID] > 1 {
			name = fmt.Sprintf("%s %c", t.Name, 'A'+rune(suffix[t.ID]))
		}
		suffix[t.ID]++
		out[i] = combat.NewCombatant(fmt.Sprintf("%s-%d", t.ID, i), name, t.ID, t.Stats)
	}
	s.logger.Debug("opponents spawned", zap.Int("region", region), zap.Int("count", n))
	return out, nil
}
