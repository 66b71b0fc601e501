// Package character defines the player character model, its skill book, and
// pure creation logic from class archetypes.
package character

import (
	"time"

	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

// Stats holds a character's base combat attributes.
type Stats struct {
	MaxHP   int `yaml:"max_hp" json:"max_hp"`
	Attack  int `yaml:"attack" json:"attack"`
	Defense int `yaml:"defense" json:"defense"`
	Speed   int `yaml:"speed" json:"speed"`
	Magic   int `yaml:"magic" json:"magic"`
}

// With returns s with deltas added. MaxHP never drops below 1 and the other
// stats never drop below 0.
func (s Stats) With(d gem.StatDeltas) Stats {
	return Stats{
		MaxHP:   max(1, s.MaxHP+d.MaxHP),
		Attack:  max(0, s.Attack+d.Attack),
		Defense: max(0, s.Defense+d.Defense),
		Speed:   max(0, s.Speed+d.Speed),
		Magic:   max(0, s.Magic+d.Magic),
	}
}

// Character represents a player character's persistent state.
//
// ID is set by the persistence layer; zero indicates an unsaved character.
type Character struct {
	ID int64

	Name       string
	Class      string // archetype ID
	Level      int
	Experience int

	Stats     Stats
	CurrentHP int
	Skills    *SkillBook

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Alive reports whether the character can still fight.
func (c *Character) Alive() bool { return c.CurrentHP > 0 }

// Learn adds an ability to the character's skill book.
// It lets a Character act as a crafting learner directly.
func (c *Character) Learn(d craft.Descriptor) error {
	if c.Skills == nil {
		c.Skills = NewSkillBook()
	}
	return c.Skills.Learn(d)
}
