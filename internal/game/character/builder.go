package character

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Archetype is a character class: base stats at level 1 and per-level growth.
type Archetype struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Base   Stats  `yaml:"base"`
	Growth Stats  `yaml:"growth"`
}

// DefaultArchetypes returns the built-in classes keyed by ID.
func DefaultArchetypes() map[string]*Archetype {
	return map[string]*Archetype{
		"warrior": {ID: "warrior", Name: "Warrior",
			Base:   Stats{MaxHP: 60, Attack: 14, Defense: 10, Speed: 8, Magic: 2},
			Growth: Stats{MaxHP: 12, Attack: 3, Defense: 2, Speed: 1}},
		"mage": {ID: "mage", Name: "Mage",
			Base:   Stats{MaxHP: 38, Attack: 5, Defense: 5, Speed: 10, Magic: 16},
			Growth: Stats{MaxHP: 6, Attack: 1, Defense: 1, Speed: 1, Magic: 4}},
		"rogue": {ID: "rogue", Name: "Rogue",
			Base:   Stats{MaxHP: 45, Attack: 11, Defense: 7, Speed: 15, Magic: 5},
			Growth: Stats{MaxHP: 8, Attack: 2, Defense: 1, Speed: 3, Magic: 1}},
	}
}

// LoadArchetypes reads a YAML list of archetypes from path.
//
// Postcondition: returns an error on unknown fields, empty IDs, or duplicates.
func LoadArchetypes(path string) (map[string]*Archetype, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archetypes %q: %w", path, err)
	}
	var list []*Archetype
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing archetypes %q: %w", path, err)
	}
	out := make(map[string]*Archetype, len(list))
	for _, a := range list {
		if a.ID == "" {
			return nil, fmt.Errorf("parsing archetypes %q: id must not be empty", path)
		}
		if _, dup := out[a.ID]; dup {
			return nil, fmt.Errorf("parsing archetypes %q: duplicate id %q", path, a.ID)
		}
		out[a.ID] = a
	}
	return out, nil
}

// ArchetypeIDs returns the IDs of archetypes, sorted.
func ArchetypeIDs(archetypes map[string]*Archetype) []string {
	ids := make([]string, 0, len(archetypes))
	for id := range archetypes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StatsAt returns the archetype's stats at level, which is clamped to at least 1.
func (a *Archetype) StatsAt(level int) Stats {
	n := max(level, 1) - 1
	return Stats{
		MaxHP:   a.Base.MaxHP + n*a.Growth.MaxHP,
		Attack:  a.Base.Attack + n*a.Growth.Attack,
		Defense: a.Base.Defense + n*a.Growth.Defense,
		Speed:   a.Base.Speed + n*a.Growth.Speed,
		Magic:   a.Base.Magic + n*a.Growth.Magic,
	}
}

// Build constructs a new Character of the given archetype and level at full HP
// with an empty skill book.
//
// Precondition: name must be non-empty; archetype must be non-nil.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func Build(name string, archetype *Archetype, level int) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if archetype == nil {
		return nil, errors.New("archetype must not be nil")
	}
	stats := archetype.StatsAt(level)
	if stats.MaxHP < 1 {
		stats.MaxHP = 1
	}
	return &Character{
		Name:      name,
		Class:     archetype.ID,
		Level:     max(level, 1),
		Stats:     stats,
		CurrentHP: stats.MaxHP,
		Skills:    NewSkillBook(),
	}, nil
}
