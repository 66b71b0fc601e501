package craft

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/dice"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

var (
	// ErrDuplicateName is returned when an owner already has an ability with the same name.
	ErrDuplicateName = errors.New("craft: duplicate ability name")
	// ErrIndexOutOfRange is returned for a gem index outside the inventory pool.
	ErrIndexOutOfRange = errors.New("craft: index out of range")
	// ErrMissingName is returned when crafting without a name.
	ErrMissingName = errors.New("craft: ability needs a name")
	// ErrMissingDescription is returned when crafting without a description.
	ErrMissingDescription = errors.New("craft: ability needs a description")
	// ErrGemMissing is returned when a selected gem has left the inventory.
	ErrGemMissing = errors.New("craft: selected gem is not in the inventory")
	// ErrNothingToSave is returned when saving before a successful craft.
	ErrNothingToSave = errors.New("craft: no crafted ability to save")
)

// Inventory is the gem and rune store a Session draws from and saves into.
type Inventory interface {
	Gems() []*gem.Component
	AddGem(g *gem.Component) error
	RemoveGem(id string) error
	AddRune(r Rune) error
}

// Learner receives named abilities. Learn must return an error wrapping
// ErrDuplicateName when the name is already taken.
type Learner interface {
	Learn(d Descriptor) error
}

// Outcome is the result of one Craft attempt.
type Outcome struct {
	Success bool
	Roll    int
	Chance  float64
	Ability Descriptor
}

// Session is one crafting screen: a gem selection over an inventory pool, the
// name and description typed so far, and the last successfully crafted ability.
// It is not safe for concurrent use.
type Session struct {
	inv         Inventory
	gen         *gem.Generator
	logger      *zap.Logger
	sel         *Selection
	name        string
	description string
	pending     *Descriptor
}

// NewSession creates a Session over inv.
//
// Precondition: inv and gen must not be nil; logger may be nil.
func NewSession(inv Inventory, gen *gem.Generator, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{inv: inv, gen: gen, logger: logger, sel: NewSelection()}
}

// Selection exposes the current selection for read access.
func (s *Session) Selection() *Selection { return s.sel }

// Pending returns the crafted ability awaiting save, if any.
func (s *Session) Pending() (Descriptor, bool) {
	if s.pending == nil {
		return Descriptor{}, false
	}
	return *s.pending, true
}

// Select toggles the gem at index in the inventory pool and returns the
// recomputed preview.
//
// Postcondition: on ErrIndexOutOfRange the selection is unchanged.
func (s *Session) Select(index int) (Preview, error) {
	pool := s.inv.Gems()
	if index < 0 || index >= len(pool) {
		return Preview{}, fmt.Errorf("select gem %d of %d: %w", index, len(pool), ErrIndexOutOfRange)
	}
	g := pool[index]
	selected, evicted := s.sel.Toggle(g)
	s.logger.Debug("gem selection changed",
		zap.String("gem", g.ID),
		zap.Bool("selected", selected),
		zap.Int("evicted", len(evicted)),
	)
	return s.Preview()
}

// Preview resolves the current selection.
func (s *Session) Preview() (Preview, error) {
	p, err := NewPreview(s.sel)
	if err != nil {
		return Preview{}, err
	}
	p.Ability.Name = s.name
	p.Ability.Description = s.description
	return p, nil
}

// Generate creates a random gem and adds it to the inventory, not the selection.
func (s *Session) Generate(src dice.Source) (*gem.Component, error) {
	g, err := s.gen.Generate(src)
	if err != nil {
		return nil, err
	}
	if err := s.inv.AddGem(g); err != nil {
		return nil, fmt.Errorf("storing generated gem: %w", err)
	}
	return g, nil
}

// SetName sets the name the crafted ability will carry.
func (s *Session) SetName(name string) { s.name = strings.TrimSpace(name) }

// SetDescription sets the description the crafted ability will carry.
func (s *Session) SetDescription(desc string) { s.description = strings.TrimSpace(desc) }

// Craft consumes the selected gems and rolls against the success chance.
// On success the ability is held for SaveToCharacter or SaveToRune; either way
// the selection is cleared.
//
// Precondition: a name and description have been set.
// Postcondition: on a validation error, or when a selected gem is no longer in
// the inventory, nothing is consumed and the selection is kept.
func (s *Session) Craft(src dice.Source) (Outcome, error) {
	if s.name == "" {
		return Outcome{}, ErrMissingName
	}
	if s.description == "" {
		return Outcome{}, ErrMissingDescription
	}
	comps := s.sel.Components()
	ability, err := Resolve(comps)
	if err != nil {
		return Outcome{}, err
	}
	chance := SuccessChance(comps)
	held := make(map[string]bool)
	for _, g := range s.inv.Gems() {
		held[g.ID] = true
	}
	for _, g := range comps {
		if !held[g.ID] {
			return Outcome{}, fmt.Errorf("consuming gem %q: %w", g.ID, ErrGemMissing)
		}
	}
	for _, g := range comps {
		if err := s.inv.RemoveGem(g.ID); err != nil {
			return Outcome{}, fmt.Errorf("consuming gem %q: %w", g.ID, err)
		}
	}
	s.sel.Clear()

	ability.Name = s.name
	ability.Description = s.description
	roll := dice.Percent(src)
	out := Outcome{Success: float64(roll) < chance, Roll: roll, Chance: chance, Ability: ability}
	if out.Success {
		s.pending = &ability
	} else {
		s.pending = nil
	}
	s.logger.Info("craft attempted",
		zap.String("name", ability.Name),
		zap.Int("gems", len(comps)),
		zap.Float64("chance", chance),
		zap.Int("roll", roll),
		zap.Bool("success", out.Success),
	)
	return out, nil
}

// SaveToCharacter teaches the pending ability to learner under the current
// name and description.
//
// Postcondition: on ErrDuplicateName the ability stays pending so it can be renamed.
func (s *Session) SaveToCharacter(learner Learner) error {
	if s.pending == nil {
		return ErrNothingToSave
	}
	d := *s.pending
	if s.name != "" {
		d.Name = s.name
	}
	if s.description != "" {
		d.Description = s.description
	}
	if err := learner.Learn(d); err != nil {
		return fmt.Errorf("saving %q: %w", d.Name, err)
	}
	s.pending = nil
	s.logger.Info("ability learned", zap.String("name", d.Name))
	return nil
}

// SaveToRune wraps the pending ability in a rune and stores it in inv.
func (s *Session) SaveToRune(inv Inventory) (Rune, error) {
	if s.pending == nil {
		return Rune{}, ErrNothingToSave
	}
	r := NewRune(*s.pending)
	if err := inv.AddRune(r); err != nil {
		return Rune{}, fmt.Errorf("saving rune %q: %w", r.Name(), err)
	}
	s.pending = nil
	s.logger.Info("rune created", zap.String("rune", r.ID), zap.String("name", r.Name()))
	return r, nil
}
