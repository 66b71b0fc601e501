package ai

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/monster"
	"github.com/cory-johannsen/skillforge/internal/scripting"
)

// DecideHook is the Lua global a decision script defines.
//
// It receives a view table {round, actor, combatants = {...}, abilities = {...}}
// and returns {action = "attack"|"cast", ability = <1-based index>, targets = {flat, ...}}.
const DecideHook = "decide"

// ScriptCaller is the interface required to run decision scripts.
type ScriptCaller interface {
	// Has reports whether a script is loaded under id.
	Has(id string) bool
	// CallHook calls a named Lua function in the script's VM.
	// Returns (LNil, nil) if the function is not defined or fails.
	CallHook(id, hook string, args ...any) (lua.LValue, error)
}

// Scripted asks a monster's Lua script for its decision and falls back to
// another Decider when the monster has no script or the script returns
// something unusable.
type Scripted struct {
	scripts  ScriptCaller
	catalog  *monster.Catalog
	fallback combat.Decider
	logger   *zap.Logger
}

// NewScripted creates a Scripted decider.
//
// Precondition: scripts, catalog, fallback and logger must be non-nil.
func NewScripted(scripts ScriptCaller, catalog *monster.Catalog, fallback combat.Decider, logger *zap.Logger) *Scripted {
	if scripts == nil || catalog == nil || fallback == nil || logger == nil {
		panic("ai.NewScripted: arguments must not be nil")
	}
	return &Scripted{scripts: scripts, catalog: catalog, fallback: fallback, logger: logger}
}

var _ combat.Decider = (*Scripted)(nil)
var _ ScriptCaller = (*scripting.Manager)(nil)

// Decide implements combat.Decider.
func (s *Scripted) Decide(view combat.Snapshot, actor int) combat.Decision {
	if actor < 0 || actor >= len(view.Combatants) {
		return s.fallback.Decide(view, actor)
	}
	tmpl, ok := s.catalog.Get(view.Combatants[actor].TemplateID)
	if !ok || tmpl.AIScript == "" || !s.scripts.Has(tmpl.AIScript) {
		return s.fallback.Decide(view, actor)
	}

	ret, err := s.scripts.CallHook(tmpl.AIScript, DecideHook, viewTable(view, actor, tmpl))
	if err != nil {
		s.logger.Warn("decision script failed", zap.String("script", tmpl.AIScript), zap.Error(err))
		return s.fallback.Decide(view, actor)
	}
	dec, ok := parseDecision(ret, tmpl)
	if !ok {
		s.logger.Warn("decision script returned an unusable decision",
			zap.String("script", tmpl.AIScript),
			zap.Int("actor", actor),
			zap.String("value", ret.String()),
		)
		return s.fallback.Decide(view, actor)
	}
	s.logger.Debug("scripted decision",
		zap.String("script", tmpl.AIScript),
		zap.Int("actor", actor),
		zap.Stringer("kind", dec.Kind),
		zap.Ints("targets", dec.Targets),
	)
	return dec
}

func viewTable(view combat.Snapshot, actor int, tmpl *monster.Template) map[string]any {
	cs := make([]any, len(view.Combatants))
	for i, c := range view.Combatants {
		cs[i] = map[string]any{
			"flat":       c.Flat,
			"name":       c.Name,
			"side":       c.Side.String(),
			"template":   c.TemplateID,
			"hp":         c.HP,
			"max_hp":     c.MaxHP,
			"attack":     c.Stats.Attack,
			"defense":    c.Stats.Defense,
			"speed":      c.Stats.Speed,
			"magic":      c.Stats.Magic,
			"alive":      c.Alive,
			"conditions": c.Conditions,
		}
	}
	abilities := make([]any, len(tmpl.Abilities))
	for i, a := range tmpl.Abilities {
		d := a.Descriptor()
		abilities[i] = map[string]any{
			"name":         d.Name,
			"target_count": d.TargetCount,
			"supportive":   d.Supportive(),
		}
	}
	return map[string]any{
		"round":      view.Round,
		"actor":      actor,
		"combatants": cs,
		"abilities":  abilities,
	}
}

func parseDecision(v lua.LValue, tmpl *monster.Template) (combat.Decision, bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return combat.Decision{}, false
	}
	dec := combat.Decision{Targets: scripting.IntList(t.RawGetString("targets"))}
	switch strings.ToLower(lua.LVAsString(t.RawGetString("action"))) {
	case "attack":
		dec.Kind = combat.ActionAttack
	case "cast":
		idx, isNum := t.RawGetString("ability").(lua.LNumber)
		i := int(idx) - 1
		if !isNum || i < 0 || i >= len(tmpl.Abilities) {
			return combat.Decision{}, false
		}
		ability := tmpl.Abilities[i].Descriptor()
		dec.Kind = combat.ActionCast
		dec.Ability = &ability
	default:
		return combat.Decision{}, false
	}
	return dec, true
}
