package gem

import "fmt"

// Payload is the category-specific data a gem carries. The set of variants is
// closed: ElementPayload, DamagePayload, HealPayload, BuffPayload, StatusPayload.
type Payload interface {
	payload()
}

// Vec3 is an offset in scene space, carried through to presentation untouched.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// ElementPayload sets an ability's element and its cast/hit visuals.
type ElementPayload struct {
	Element    Element
	CastEffect string
	HitEffect  string
	CastOffset Vec3
}

// DamagePayload is a damage range with a crit chance in [0, 1].
// Area payloads reach ExtraTargets more targets (at least one).
type DamagePayload struct {
	Min          int
	Max          int
	CritChance   float64
	Area         bool
	ExtraTargets int
}

// HealPayload restores a flat amount of HP.
type HealPayload struct {
	Amount       int
	Area         bool
	ExtraTargets int
}

// StatDeltas are additive stat changes granted by a buff.
type StatDeltas struct {
	Attack  int `yaml:"attack" json:"attack"`
	Defense int `yaml:"defense" json:"defense"`
	Speed   int `yaml:"speed" json:"speed"`
	Magic   int `yaml:"magic" json:"magic"`
	MaxHP   int `yaml:"max_hp" json:"max_hp"`
}

// IsZero reports whether every delta is zero.
func (d StatDeltas) IsZero() bool {
	return d == StatDeltas{}
}

// String renders the non-zero deltas, e.g. "+3 attack, -1 speed".
func (d StatDeltas) String() string {
	var s string
	add := func(v int, name string) {
		if v == 0 {
			return
		}
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("%+d %s", v, name)
	}
	add(d.Attack, "attack")
	add(d.Defense, "defense")
	add(d.Speed, "speed")
	add(d.Magic, "magic")
	add(d.MaxHP, "max hp")
	if s == "" {
		return "no stat change"
	}
	return s
}

// BuffPayload grants stat deltas for Duration rounds.
type BuffPayload struct {
	Duration int
	Deltas   StatDeltas
}

// StatusPayload applies the named condition for Duration rounds with the given
// chance in [0, 1].
type StatusPayload struct {
	Condition string
	Duration  int
	Chance    float64
}

func (ElementPayload) payload() {}
func (DamagePayload) payload()  {}
func (HealPayload) payload()    {}
func (BuffPayload) payload()    {}
func (StatusPayload) payload()  {}

// AreaBonus returns how many targets an area payload adds beyond the first.
func (p DamagePayload) AreaBonus() int { return areaBonus(p.Area, p.ExtraTargets) }

// AreaBonus returns how many targets an area payload adds beyond the first.
func (p HealPayload) AreaBonus() int { return areaBonus(p.Area, p.ExtraTargets) }

func areaBonus(area bool, extra int) int {
	if !area {
		return 0
	}
	if extra < 1 {
		return 1
	}
	return extra
}

// CategoryOf maps a payload variant to its category.
//
// Postcondition: returns CategoryUnknown for nil.
func CategoryOf(p Payload) Category {
	switch p.(type) {
	case ElementPayload:
		return CategoryElement
	case DamagePayload:
		return CategoryDamage
	case HealPayload:
		return CategoryHeal
	case BuffPayload:
		return CategoryBuff
	case StatusPayload:
		return CategoryStatus
	default:
		return CategoryUnknown
	}
}
