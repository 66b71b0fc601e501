// Package monster provides opponent templates loaded from YAML and the
// region-scaled spawning of battle opponents.
package monster

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

// DamageSpec is the damage part of a monster ability.
type DamageSpec struct {
	Min        int     `yaml:"min"`
	Max        int     `yaml:"max"`
	CritChance float64 `yaml:"crit_chance"`
}

// StatusSpec is the status part of a monster ability.
type StatusSpec struct {
	Condition string  `yaml:"condition"`
	Duration  int     `yaml:"duration"`
	Chance    float64 `yaml:"chance"`
}

// AbilitySpec is a fixed monster ability. Unlike player abilities it is
// authored directly rather than crafted from gems.
type AbilitySpec struct {
	Name        string          `yaml:"name"`
	Element     gem.Element     `yaml:"element"`
	TargetCount int             `yaml:"target_count"`
	Damage      *DamageSpec     `yaml:"damage"`
	Heal        int             `yaml:"heal"`
	Buff        *gem.StatDeltas `yaml:"buff"`
	BuffRounds  int             `yaml:"buff_rounds"`
	Status      *StatusSpec     `yaml:"status"`
}

// Descriptor converts a into a castable ability.
func (a AbilitySpec) Descriptor() craft.Descriptor {
	d := craft.NewDescriptor()
	d.Name = a.Name
	d.Element = a.Element
	if a.TargetCount > 1 {
		d.TargetCount = a.TargetCount
	}
	area := d.IsArea()
	if a.Damage != nil {
		d.Effects = append(d.Effects, craft.DamageEffect{Min: a.Damage.Min, Max: a.Damage.Max, CritChance: a.Damage.CritChance, Area: area})
	}
	if a.Heal > 0 {
		d.Effects = append(d.Effects, craft.HealEffect{Amount: a.Heal, Area: area})
	}
	if a.Buff != nil {
		d.Effects = append(d.Effects, craft.BuffEffect{Duration: max(a.BuffRounds, 1), Deltas: *a.Buff})
	}
	if a.Status != nil {
		d.Effects = append(d.Effects, craft.StatusEffect{Condition: a.Status.Condition, Duration: a.Status.Duration, Chance: a.Status.Chance})
	}
	return d
}

// Behavior weights the actions a weighted decider chooses between.
type Behavior struct {
	Attack int `yaml:"attack"`
	Cast   int `yaml:"cast"`
	// Focus selects targets: "weakest" (lowest HP), "strongest", or "random".
	Focus string `yaml:"focus"`
}

// GemDrop is the chance that defeating the monster yields generated gems.
type GemDrop struct {
	Chance float64 `yaml:"chance"`
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
}

// Template defines a reusable monster archetype loaded from YAML.
type Template struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Level       int             `yaml:"level"`
	Regions     []int           `yaml:"regions"`
	SpawnWeight int             `yaml:"spawn_weight"` // 0 is treated as 1
	Stats       character.Stats `yaml:"stats"`
	Behavior    Behavior        `yaml:"behavior"`
	Abilities   []AbilitySpec   `yaml:"abilities"`
	// AIScript names a Lua script in the AI scripts directory. Empty uses the weighted decider.
	AIScript string   `yaml:"ai_script"`
	Loot     *GemDrop `yaml:"loot"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1, at least one region is listed, and every ability is well formed.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.ID)
	}
	if t.Stats.MaxHP < 1 {
		return fmt.Errorf("monster template %q: stats.max_hp must be >= 1", t.ID)
	}
	if len(t.Regions) == 0 {
		return fmt.Errorf("monster template %q: regions must not be empty", t.ID)
	}
	if t.SpawnWeight < 0 || t.Behavior.Attack < 0 || t.Behavior.Cast < 0 {
		return fmt.Errorf("monster template %q: weights must be >= 0", t.ID)
	}
	switch t.Behavior.Focus {
	case "", "weakest", "strongest", "random":
	default:
		return fmt.Errorf("monster template %q: unknown behavior focus %q", t.ID, t.Behavior.Focus)
	}
	for i, a := range t.Abilities {
		if a.Name == "" {
			return fmt.Errorf("monster template %q: ability[%d] must be named", t.ID, i)
		}
		if a.Damage != nil && a.Damage.Min > a.Damage.Max {
			return fmt.Errorf("monster template %q: ability %q damage min > max", t.ID, a.Name)
		}
	}
	if t.Loot != nil {
		if t.Loot.Chance < 0 || t.Loot.Chance > 1 {
			return fmt.Errorf("monster template %q: loot chance must be in [0, 1], got %f", t.ID, t.Loot.Chance)
		}
		if t.Loot.Min < 0 || t.Loot.Min > t.Loot.Max {
			return fmt.Errorf("monster template %q: loot min (%d) must be in [0, max (%d)]", t.ID, t.Loot.Min, t.Loot.Max)
		}
	}
	return nil
}

// InRegion reports whether the monster spawns in region.
func (t *Template) InRegion(region int) bool {
	for _, r := range t.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// LoadTemplateFromBytes parses a single monster template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error. Unknown fields are rejected.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Catalog indexes templates by ID.
type Catalog struct {
	byID map[string]*Template
}

// NewCatalog builds a Catalog.
//
// Postcondition: returns an error if two templates share an ID.
func NewCatalog(templates []*Template) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("monster catalog: duplicate template id %q", t.ID)
		}
		c.byID[t.ID] = t
	}
	return c, nil
}

// Get returns the template with the given ID.
func (c *Catalog) Get(id string) (*Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// ForRegion returns the templates spawning in region, sorted by ID.
func (c *Catalog) ForRegion(region int) []*Template {
	var out []*Template
	for _, t := range c.byID {
		if t.InRegion(region) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadCatalog reads all *.yaml files in dir into a Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error on the first parse or validate failure.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}
	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return NewCatalog(templates)
}
