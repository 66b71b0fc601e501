package craft

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

type effectJSON struct {
	Kind       string          `json:"kind"`
	Min        int             `json:"min,omitempty"`
	Max        int             `json:"max,omitempty"`
	CritChance float64         `json:"crit_chance,omitempty"`
	Area       bool            `json:"area,omitempty"`
	Amount     int             `json:"amount,omitempty"`
	Duration   int             `json:"duration,omitempty"`
	Deltas     *gem.StatDeltas `json:"deltas,omitempty"`
	Condition  string          `json:"condition,omitempty"`
	Chance     float64         `json:"chance,omitempty"`
}

type descriptorJSON struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Element     string       `json:"element"`
	CastEffect  string       `json:"cast_effect,omitempty"`
	HitEffect   string       `json:"hit_effect,omitempty"`
	CastOffset  gem.Vec3     `json:"cast_offset"`
	TargetCount int          `json:"target_count"`
	Effects     []effectJSON `json:"effects"`
}

// MarshalJSON encodes the descriptor with each effect tagged by kind.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	out := descriptorJSON{
		Name:        d.Name,
		Description: d.Description,
		Element:     d.Element.String(),
		CastEffect:  d.CastEffect,
		HitEffect:   d.HitEffect,
		CastOffset:  d.CastOffset,
		TargetCount: d.TargetCount,
		Effects:     make([]effectJSON, 0, len(d.Effects)),
	}
	for _, e := range d.Effects {
		switch v := e.(type) {
		case DamageEffect:
			out.Effects = append(out.Effects, effectJSON{Kind: "damage", Min: v.Min, Max: v.Max, CritChance: v.CritChance, Area: v.Area})
		case HealEffect:
			out.Effects = append(out.Effects, effectJSON{Kind: "heal", Amount: v.Amount, Area: v.Area})
		case BuffEffect:
			deltas := v.Deltas
			out.Effects = append(out.Effects, effectJSON{Kind: "buff", Duration: v.Duration, Deltas: &deltas})
		case StatusEffect:
			out.Effects = append(out.Effects, effectJSON{Kind: "status", Condition: v.Condition, Duration: v.Duration, Chance: v.Chance})
		default:
			return nil, fmt.Errorf("encoding effect %T: %w", e, ErrUnknownCategory)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a descriptor written by MarshalJSON.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var in descriptorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	el, err := gem.ParseElement(in.Element)
	if err != nil {
		return err
	}
	decoded := Descriptor{
		Name:        in.Name,
		Description: in.Description,
		Element:     el,
		CastEffect:  in.CastEffect,
		HitEffect:   in.HitEffect,
		CastOffset:  in.CastOffset,
		TargetCount: in.TargetCount,
	}
	for _, e := range in.Effects {
		switch e.Kind {
		case "damage":
			decoded.Effects = append(decoded.Effects, DamageEffect{Min: e.Min, Max: e.Max, CritChance: e.CritChance, Area: e.Area})
		case "heal":
			decoded.Effects = append(decoded.Effects, HealEffect{Amount: e.Amount, Area: e.Area})
		case "buff":
			var deltas gem.StatDeltas
			if e.Deltas != nil {
				deltas = *e.Deltas
			}
			decoded.Effects = append(decoded.Effects, BuffEffect{Duration: e.Duration, Deltas: deltas})
		case "status":
			decoded.Effects = append(decoded.Effects, StatusEffect{Condition: e.Condition, Duration: e.Duration, Chance: e.Chance})
		default:
			return fmt.Errorf("decoding effect kind %q: %w", e.Kind, ErrUnknownCategory)
		}
	}
	if decoded.TargetCount < BaseTargetCount {
		decoded.TargetCount = BaseTargetCount
	}
	*d = decoded
	return nil
}
