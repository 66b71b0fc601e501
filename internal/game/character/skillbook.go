package character

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/skillforge/internal/game/craft"
)

// ErrDuplicateName is returned by Learn when the name is already known.
var ErrDuplicateName = craft.ErrDuplicateName

// ErrUnnamedAbility is returned by Learn for an ability without a name.
var ErrUnnamedAbility = errors.New("character: ability must be named")

// SkillBook is the ordered list of abilities a character knows.
// Names are unique, compared case-insensitively.
type SkillBook struct {
	abilities []craft.Descriptor
}

// NewSkillBook returns an empty SkillBook.
func NewSkillBook() *SkillBook {
	return &SkillBook{}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Learn appends d.
//
// Postcondition: returns an error wrapping ErrDuplicateName and leaves the book
// unchanged when an ability with the same name exists.
func (b *SkillBook) Learn(d craft.Descriptor) error {
	if normalize(d.Name) == "" {
		return ErrUnnamedAbility
	}
	if _, ok := b.Get(d.Name); ok {
		return fmt.Errorf("learning %q: %w", d.Name, ErrDuplicateName)
	}
	b.abilities = append(b.abilities, d)
	return nil
}

// Get returns the ability with the given name.
func (b *SkillBook) Get(name string) (craft.Descriptor, bool) {
	n := normalize(name)
	for _, a := range b.abilities {
		if normalize(a.Name) == n {
			return a, true
		}
	}
	return craft.Descriptor{}, false
}

// Forget removes the named ability and reports whether it was known.
func (b *SkillBook) Forget(name string) bool {
	n := normalize(name)
	for i, a := range b.abilities {
		if normalize(a.Name) == n {
			b.abilities = append(b.abilities[:i], b.abilities[i+1:]...)
			return true
		}
	}
	return false
}

// All returns the known abilities in learn order.
//
// Postcondition: the returned slice is a copy.
func (b *SkillBook) All() []craft.Descriptor {
	out := make([]craft.Descriptor, len(b.abilities))
	copy(out, b.abilities)
	return out
}

// Len returns the number of known abilities.
func (b *SkillBook) Len() int { return len(b.abilities) }
