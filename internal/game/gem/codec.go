package gem

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownPayload is returned when a payload cannot be encoded or decoded.
var ErrUnknownPayload = errors.New("gem: unknown payload")

type elementJSON struct {
	Element    string `json:"element"`
	CastEffect string `json:"cast_effect,omitempty"`
	HitEffect  string `json:"hit_effect,omitempty"`
	CastOffset Vec3   `json:"cast_offset"`
}

type damageJSON struct {
	Min          int     `json:"min"`
	Max          int     `json:"max"`
	CritChance   float64 `json:"crit_chance"`
	Area         bool    `json:"area,omitempty"`
	ExtraTargets int     `json:"extra_targets,omitempty"`
}

type healJSON struct {
	Amount       int  `json:"amount"`
	Area         bool `json:"area,omitempty"`
	ExtraTargets int  `json:"extra_targets,omitempty"`
}

type buffJSON struct {
	Duration int        `json:"duration"`
	Deltas   StatDeltas `json:"deltas"`
}

type statusJSON struct {
	Condition string  `json:"condition"`
	Duration  int     `json:"duration"`
	Chance    float64 `json:"chance"`
}

// EncodePayload renders p as JSON. The category is stored alongside it and
// selects the variant on decode.
func EncodePayload(p Payload) (Category, []byte, error) {
	var v any
	switch x := p.(type) {
	case ElementPayload:
		v = elementJSON{Element: x.Element.String(), CastEffect: x.CastEffect, HitEffect: x.HitEffect, CastOffset: x.CastOffset}
	case DamagePayload:
		v = damageJSON(x)
	case HealPayload:
		v = healJSON(x)
	case BuffPayload:
		v = buffJSON(x)
	case StatusPayload:
		v = statusJSON(x)
	default:
		return CategoryUnknown, nil, fmt.Errorf("encoding %T: %w", p, ErrUnknownPayload)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return CategoryUnknown, nil, err
	}
	return CategoryOf(p), data, nil
}

// DecodePayload parses JSON written by EncodePayload for category c.
func DecodePayload(c Category, data []byte) (Payload, error) {
	switch c {
	case CategoryElement:
		var in elementJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		el, err := ParseElement(in.Element)
		if err != nil {
			return nil, err
		}
		return ElementPayload{Element: el, CastEffect: in.CastEffect, HitEffect: in.HitEffect, CastOffset: in.CastOffset}, nil
	case CategoryDamage:
		var in damageJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return DamagePayload(in), nil
	case CategoryHeal:
		var in healJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return HealPayload(in), nil
	case CategoryBuff:
		var in buffJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return BuffPayload(in), nil
	case CategoryStatus:
		var in statusJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return StatusPayload(in), nil
	default:
		return nil, fmt.Errorf("decoding category %s: %w", c, ErrUnknownPayload)
	}
}
