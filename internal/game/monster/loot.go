package monster

import (
	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

// RollLoot generates the gems dropped by the defeated opponents of templateIDs.
// Unknown template IDs and templates without loot drop nothing.
//
// Precondition: gen and src must be non-nil.
func RollLoot(src dice.Source, catalog *Catalog, gen *gem.Generator, templateIDs []string) ([]*gem.Component, error) {
	var out []*gem.Component
	for _, id := range templateIDs {
		t, ok := catalog.Get(id)
		if !ok || t.Loot == nil || !dice.Chance(src, t.Loot.Chance*100) {
			continue
		}
		n := t.Loot.Min
		if t.Loot.Max > t.Loot.Min {
			n = dice.Between(src, t.Loot.Min, t.Loot.Max+1)
		}
		for i := 0; i < n; i++ {
			g, err := gen.Generate(src)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
	}
	return out, nil
}
