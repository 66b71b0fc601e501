// Package condition tracks the status effects and timed buffs applied to a
// combatant during a battle.
package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the static definition of a status condition, loaded from YAML.
type Definition struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	MaxStacks      int    `yaml:"max_stacks"`       // 0 = unstackable
	DamagePerRound int    `yaml:"damage_per_round"` // per stack, applied at end of round
	SkipTurn       bool   `yaml:"skip_turn"`        // the afflicted combatant loses its action
	BreaksOnDamage bool   `yaml:"breaks_on_damage"` // removed when the combatant takes direct damage
}

// Registry holds all known Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot of all registered Definitions sorted by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultRegistry returns the built-in conditions referenced by the default gem tables.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(&Definition{ID: "poisoned", Name: "Poisoned", MaxStacks: 3, DamagePerRound: 4})
	reg.Register(&Definition{ID: "burning", Name: "Burning", DamagePerRound: 6})
	reg.Register(&Definition{ID: "stunned", Name: "Stunned", SkipTurn: true})
	reg.Register(&Definition{ID: "asleep", Name: "Asleep", SkipTurn: true, BreaksOnDamage: true})
	return reg
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.ID == "" {
			return nil, fmt.Errorf("parsing %q: id must not be empty", path)
		}
		reg.Register(&def)
	}
	return reg, nil
}
