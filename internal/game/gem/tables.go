package gem

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TypeDef describes one gem type the generator can draw.
type TypeDef struct {
	Ordinal   int        `yaml:"ordinal"`
	Name      string     `yaml:"name"`
	Subtype   Subtype    `yaml:"subtype"`
	Category  Category   `yaml:"category"`
	Element   Element    `yaml:"element"`
	Buff      StatDeltas `yaml:"buff"`
	Condition string     `yaml:"condition"`
}

// TierThreshold maps a tier roll to a tier: a roll at or below Max yields Tier.
type TierThreshold struct {
	Max  int  `yaml:"max"`
	Tier Tier `yaml:"tier"`
}

// EffectGraphic names a cast/hit animation pair and its cast offset.
type EffectGraphic struct {
	CastOffset Vec3   `yaml:"cast_offset"`
	Cast       string `yaml:"cast"`
	Hit        string `yaml:"hit"`
}

// TierEffects is the list of effect graphics available to element gems of a tier.
type TierEffects struct {
	Tier    Tier            `yaml:"tier"`
	Effects []EffectGraphic `yaml:"effects"`
}

// DamageRange bounds generated damage payloads.
// Min is drawn in [MinLow, MinHigh); Max = Min + a draw in [SpreadLow, SpreadHigh).
type DamageRange struct {
	MinLow     int     `yaml:"min_low"`
	MinHigh    int     `yaml:"min_high"`
	SpreadLow  int     `yaml:"spread_low"`
	SpreadHigh int     `yaml:"spread_high"`
	CritChance float64 `yaml:"crit_chance"`
}

// HealRange bounds generated heal amounts: [Low, High).
type HealRange struct {
	Low  int `yaml:"low"`
	High int `yaml:"high"`
}

// Tables is the static lookup data driving gem generation.
//
// Invariant (after Validate): Types is non-empty with unique ordinals;
// Thresholds ascend by Max; every tier has at least one effect graphic.
type Tables struct {
	Types          []TypeDef       `yaml:"types"`
	Thresholds     []TierThreshold `yaml:"thresholds"`
	Fallback       Tier            `yaml:"fallback"`
	Effects        []TierEffects   `yaml:"effects"`
	Damage         DamageRange     `yaml:"damage"`
	Heal           HealRange       `yaml:"heal"`
	BuffDuration   int             `yaml:"buff_duration"`
	StatusDuration int             `yaml:"status_duration"`
	StatusChance   float64         `yaml:"status_chance"`
}

// Validate checks the table invariants.
//
// Postcondition: returns nil iff the tables can drive Generator without failure.
func (t *Tables) Validate() error {
	var errs []error
	if len(t.Types) == 0 {
		errs = append(errs, errors.New("types must not be empty"))
	}
	seen := make(map[int]bool, len(t.Types))
	for _, td := range t.Types {
		if seen[td.Ordinal] {
			errs = append(errs, fmt.Errorf("duplicate type ordinal %d", td.Ordinal))
		}
		seen[td.Ordinal] = true
		if td.Name == "" || td.Subtype == "" {
			errs = append(errs, fmt.Errorf("type %d: name and subtype must not be empty", td.Ordinal))
		}
		switch td.Category {
		case CategoryElement:
			if td.Element == ElementNone {
				errs = append(errs, fmt.Errorf("type %q: element gems need an element", td.Name))
			}
		case CategoryStatus:
			if td.Condition == "" {
				errs = append(errs, fmt.Errorf("type %q: status gems need a condition", td.Name))
			}
		case CategoryDamage, CategoryHeal, CategoryBuff:
		default:
			errs = append(errs, fmt.Errorf("type %q: unknown category", td.Name))
		}
	}
	for i := 1; i < len(t.Thresholds); i++ {
		if t.Thresholds[i].Max <= t.Thresholds[i-1].Max {
			errs = append(errs, errors.New("thresholds must ascend by max"))
			break
		}
	}
	if !t.Fallback.Valid() {
		errs = append(errs, errors.New("fallback tier must be set"))
	}
	for _, tier := range Tiers {
		if len(t.EffectsFor(tier)) == 0 {
			errs = append(errs, fmt.Errorf("tier %s has no effect graphics", tier))
		}
	}
	if t.Damage.MinHigh <= t.Damage.MinLow || t.Damage.SpreadHigh <= t.Damage.SpreadLow {
		errs = append(errs, errors.New("damage ranges must be non-empty"))
	}
	if t.Heal.High <= t.Heal.Low {
		errs = append(errs, errors.New("heal range must be non-empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("gem tables validation failed: %v", errs)
	}
	return nil
}

// TierFor returns the tier selected by roll using the cumulative thresholds.
//
// Postcondition: returns the first threshold whose Max >= roll, else Fallback.
func (t *Tables) TierFor(roll int) Tier {
	for _, th := range t.Thresholds {
		if roll <= th.Max {
			return th.Tier
		}
	}
	return t.Fallback
}

// EffectsFor returns the effect graphics available for tier.
func (t *Tables) EffectsFor(tier Tier) []EffectGraphic {
	for _, te := range t.Effects {
		if te.Tier == tier {
			return te.Effects
		}
	}
	return nil
}

// sortedTypes returns Types ordered by ordinal.
func (t *Tables) sortedTypes() []TypeDef {
	out := make([]TypeDef, len(t.Types))
	copy(out, t.Types)
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// DefaultTables returns the built-in gem catalog and tier tables.
//
// Postcondition: the result passes Validate.
func DefaultTables() *Tables {
	return &Tables{
		Types: []TypeDef{
			{Ordinal: 1, Name: "Fire", Subtype: "fire", Category: CategoryElement, Element: ElementFire},
			{Ordinal: 2, Name: "Water", Subtype: "water", Category: CategoryElement, Element: ElementWater},
			{Ordinal: 3, Name: "Earth", Subtype: "earth", Category: CategoryElement, Element: ElementEarth},
			{Ordinal: 4, Name: "Wind", Subtype: "wind", Category: CategoryElement, Element: ElementWind},
			{Ordinal: 5, Name: "Thunder", Subtype: "thunder", Category: CategoryElement, Element: ElementThunder},
			{Ordinal: 6, Name: "Ice", Subtype: "ice", Category: CategoryElement, Element: ElementIce},
			{Ordinal: 7, Name: "Light", Subtype: "light", Category: CategoryElement, Element: ElementLight},
			{Ordinal: 8, Name: "Dark", Subtype: "dark", Category: CategoryElement, Element: ElementDark},
			{Ordinal: 9, Name: "Arcane", Subtype: "arcane", Category: CategoryElement, Element: ElementArcane},
			{Ordinal: 10, Name: "Damage", Subtype: "damage", Category: CategoryDamage},
			{Ordinal: 11, Name: "Heal", Subtype: "heal", Category: CategoryHeal},
			{Ordinal: 12, Name: "Might", Subtype: "might", Category: CategoryBuff, Buff: StatDeltas{Attack: 5}},
			{Ordinal: 13, Name: "Bulwark", Subtype: "bulwark", Category: CategoryBuff, Buff: StatDeltas{Defense: 5}},
			{Ordinal: 14, Name: "Haste", Subtype: "haste", Category: CategoryBuff, Buff: StatDeltas{Speed: 5}},
			{Ordinal: 15, Name: "Focus", Subtype: "focus", Category: CategoryBuff, Buff: StatDeltas{Magic: 5}},
			{Ordinal: 16, Name: "Poison", Subtype: "poison", Category: CategoryStatus, Condition: "poisoned"},
			{Ordinal: 17, Name: "Burn", Subtype: "burn", Category: CategoryStatus, Condition: "burning"},
			{Ordinal: 18, Name: "Stun", Subtype: "stun", Category: CategoryStatus, Condition: "stunned"},
			{Ordinal: 19, Name: "Sleep", Subtype: "sleep", Category: CategoryStatus, Condition: "asleep"},
		},
		Thresholds: []TierThreshold{
			{Max: 5, Tier: TierLegendary},
			{Max: 25, Tier: TierUnique},
			{Max: 60, Tier: TierRare},
		},
		Fallback: TierCommon,
		Effects: []TierEffects{
			{Tier: TierCommon, Effects: []EffectGraphic{
				{Cast: "spark_cast", Hit: "spark_hit"},
				{Cast: "puff_cast", Hit: "puff_hit"},
			}},
			{Tier: TierRare, Effects: []EffectGraphic{
				{Cast: "bolt_cast", Hit: "bolt_hit", CastOffset: Vec3{Y: 0.5}},
				{Cast: "orb_cast", Hit: "orb_hit", CastOffset: Vec3{Y: 0.5}},
			}},
			{Tier: TierUnique, Effects: []EffectGraphic{
				{Cast: "nova_cast", Hit: "nova_hit", CastOffset: Vec3{Y: 1}},
			}},
			{Tier: TierLegendary, Effects: []EffectGraphic{
				{Cast: "cataclysm_cast", Hit: "cataclysm_hit", CastOffset: Vec3{Y: 2}},
			}},
		},
		Damage:         DamageRange{MinLow: 1, MinHigh: 100, SpreadLow: 3, SpreadHigh: 50, CritChance: 0.05},
		Heal:           HealRange{Low: 10, High: 100},
		BuffDuration:   60,
		StatusDuration: 3,
		StatusChance:   1,
	}
}

// LoadTables reads gem tables from a YAML file. Unknown fields are rejected.
//
// Precondition: path must name a readable YAML file.
// Postcondition: returns validated Tables or a non-nil error.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gem tables %q: %w", path, err)
	}
	return LoadTablesFromBytes(data)
}

// LoadTablesFromBytes parses gem tables from raw YAML.
//
// Postcondition: returns validated Tables or a non-nil error.
func LoadTablesFromBytes(data []byte) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing gem tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
