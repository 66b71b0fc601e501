package craft

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

// ErrUnknownCategory is returned when a gem's payload is not one of the known variants.
var ErrUnknownCategory = errors.New("craft: unknown gem category")

// BaseTargetCount is the target count of an ability with no area payload.
const BaseTargetCount = 1

// Descriptor is the resolved form of a gem selection: a castable ability.
type Descriptor struct {
	Name        string
	Description string
	Element     gem.Element
	CastEffect  string
	HitEffect   string
	CastOffset  gem.Vec3
	TargetCount int
	Effects     []Effect
}

// NewDescriptor returns the baseline descriptor: no element, no effects, one target.
func NewDescriptor() Descriptor {
	return Descriptor{TargetCount: BaseTargetCount}
}

// IsArea reports whether the ability needs more than one target.
func (d Descriptor) IsArea() bool {
	return d.TargetCount > BaseTargetCount
}

// Supportive reports whether every effect of d heals or buffs, so the
// ability belongs on allies.
func (d Descriptor) Supportive() bool {
	if len(d.Effects) == 0 {
		return false
	}
	for _, e := range d.Effects {
		switch e.(type) {
		case HealEffect, BuffEffect:
		default:
			return false
		}
	}
	return true
}

// Info returns a summary line for each effect, in order.
func (d Descriptor) Info() []string {
	out := make([]string, len(d.Effects))
	for i, e := range d.Effects {
		out[i] = e.Info()
	}
	return out
}

// Resolve folds components, in order, into a Descriptor.
// The result is never derived from a previous Descriptor, so a gem evicted
// from a selection leaves no trace in the next resolution.
//
// Postcondition: returns an error wrapping ErrUnknownCategory if any component
// has a nil or unrecognised payload; the zero Descriptor is returned with it.
func Resolve(components []*gem.Component) (Descriptor, error) {
	d := NewDescriptor()
	for _, c := range components {
		if c == nil {
			return Descriptor{}, fmt.Errorf("resolving nil gem: %w", ErrUnknownCategory)
		}
		switch p := c.Payload.(type) {
		case gem.ElementPayload:
			d.Element = p.Element
			d.CastEffect = p.CastEffect
			d.HitEffect = p.HitEffect
			d.CastOffset = p.CastOffset
		case gem.DamagePayload:
			d.Effects = append(d.Effects, DamageEffect{Min: p.Min, Max: p.Max, CritChance: p.CritChance, Area: p.Area})
			d.TargetCount += p.AreaBonus()
		case gem.HealPayload:
			d.Effects = append(d.Effects, HealEffect{Amount: p.Amount, Area: p.Area})
			d.TargetCount += p.AreaBonus()
		case gem.BuffPayload:
			d.Effects = append(d.Effects, BuffEffect{Duration: p.Duration, Deltas: p.Deltas})
		case gem.StatusPayload:
			d.Effects = append(d.Effects, StatusEffect{Condition: p.Condition, Duration: p.Duration, Chance: p.Chance})
		default:
			return Descriptor{}, fmt.Errorf("resolving gem %q: %w", c.ID, ErrUnknownCategory)
		}
	}
	return d, nil
}

// SuccessChance returns the mean tier ordinal of components as a percentage.
//
// Postcondition: returns 100 for an empty slice.
func SuccessChance(components []*gem.Component) float64 {
	if len(components) == 0 {
		return 100
	}
	total := 0
	for _, c := range components {
		total += c.Tier.Ordinal()
	}
	return float64(total) / float64(len(components))
}

// Preview is what the crafting screen shows for the current selection.
type Preview struct {
	Ability  Descriptor
	Chance   float64
	Selected []string
}

// NewPreview resolves sel from scratch.
func NewPreview(sel *Selection) (Preview, error) {
	comps := sel.Components()
	d, err := Resolve(comps)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Ability: d, Chance: SuccessChance(comps), Selected: sel.IDs()}, nil
}
