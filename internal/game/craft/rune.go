package craft

import "github.com/google/uuid"

// Rune is a single-use inventory item that casts the wrapped ability once.
type Rune struct {
	ID      string
	Ability Descriptor
}

// NewRune wraps d in a rune with a fresh ID.
func NewRune(d Descriptor) Rune {
	return Rune{ID: uuid.NewString(), Ability: d}
}

// Name returns the name of the wrapped ability.
func (r Rune) Name() string { return r.Ability.Name }

// TargetCount returns the number of targets the wrapped ability needs.
func (r Rune) TargetCount() int { return r.Ability.TargetCount }
