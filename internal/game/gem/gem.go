// Package gem defines skill gems: the typed, immutable modifier components that
// the crafting system combines into abilities, and the tables and generator
// that produce them.
package gem

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups gems for conflict resolution and resolution rules.
// The zero value (CategoryUnknown) is intentionally invalid.
type Category int

const (
	CategoryUnknown Category = iota // zero value; intentionally invalid
	CategoryElement
	CategoryDamage
	CategoryHeal
	CategoryBuff
	CategoryStatus
)

var categoryNames = map[Category]string{
	CategoryElement: "element",
	CategoryDamage:  "damage",
	CategoryHeal:    "heal",
	CategoryBuff:    "buff",
	CategoryStatus:  "status",
}

// String returns the lower-case category label, or "unknown".
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParseCategory converts a label produced by String back into a Category.
//
// Postcondition: returns an error for any label other than the five known categories.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == strings.ToLower(s) {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("gem: unknown category %q", s)
}

// UnmarshalYAML decodes a category label.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseCategory(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Tier is the rarity rank of a gem. Its integer value is the tier ordinal: the
// percentage weight the gem contributes to a craft's success chance.
type Tier int

const (
	TierCommon    Tier = 40
	TierRare      Tier = 60
	TierUnique    Tier = 80
	TierLegendary Tier = 100
)

// Tiers lists every tier from lowest to highest.
var Tiers = []Tier{TierCommon, TierRare, TierUnique, TierLegendary}

// Ordinal returns the tier's whole-number weight.
func (t Tier) Ordinal() int { return int(t) }

// Valid reports whether t is one of the four defined tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierCommon, TierRare, TierUnique, TierLegendary:
		return true
	}
	return false
}

// String returns the lower-case tier label, or "unknown".
func (t Tier) String() string {
	switch t {
	case TierCommon:
		return "common"
	case TierRare:
		return "rare"
	case TierUnique:
		return "unique"
	case TierLegendary:
		return "legendary"
	default:
		return "unknown"
	}
}

// ParseTier converts a tier label into a Tier.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if t.String() == strings.ToLower(s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("gem: unknown tier %q", s)
}

// UnmarshalYAML decodes a tier label.
func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseTier(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Element is the elemental affinity an element gem lends to an ability.
type Element int

const (
	ElementNone Element = iota
	ElementFire
	ElementWater
	ElementEarth
	ElementWind
	ElementThunder
	ElementIce
	ElementLight
	ElementDark
	ElementArcane
)

var elementNames = []string{"none", "fire", "water", "earth", "wind", "thunder", "ice", "light", "dark", "arcane"}

// String returns the lower-case element label.
func (e Element) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return "unknown"
	}
	return elementNames[e]
}

// ParseElement converts an element label into an Element.
func ParseElement(s string) (Element, error) {
	for i, name := range elementNames {
		if name == strings.ToLower(s) {
			return Element(i), nil
		}
	}
	return ElementNone, fmt.Errorf("gem: unknown element %q", s)
}

// UnmarshalYAML decodes an element label.
func (e *Element) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseElement(value.Value)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Subtype discriminates gems within a category, e.g. "fire" or "haste".
type Subtype string

// Component is one skill gem.
//
// Invariant: a Component is never mutated after construction.
type Component struct {
	ID      string
	Name    string
	Subtype Subtype
	Tier    Tier
	Payload Payload
}

// Category returns the category implied by the payload variant.
func (c *Component) Category() Category {
	return CategoryOf(c.Payload)
}

// String returns "<tier> <name>".
func (c *Component) String() string {
	return fmt.Sprintf("%s %s", c.Tier, c.Name)
}
