package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/skillforge/internal/game/combat"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
)

// Styles used by the Renderer.
var (
	styleHeader = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleHeal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleOutcome = lipgloss.NewStyle().
			Bold(true)
)

// Renderer writes battle narration and crafting results as styled text.
// A nil *Renderer discards everything.
type Renderer struct {
	w     io.Writer
	plain bool
}

// NewRenderer creates a Renderer writing to w. plain disables styling.
func NewRenderer(w io.Writer, plain bool) *Renderer {
	return &Renderer{w: w, plain: plain}
}

func (r *Renderer) line(style lipgloss.Style, s string) {
	if r == nil || s == "" {
		return
	}
	if !r.plain {
		s = style.Render(s)
	}
	fmt.Fprintln(r.w, s)
}

// Header writes a section title.
func (r *Renderer) Header(format string, args ...any) {
	r.line(styleHeader, " "+fmt.Sprintf(format, args...)+" ")
}

// System writes a neutral status line.
func (r *Renderer) System(format string, args ...any) {
	r.line(styleSystem, fmt.Sprintf(format, args...))
}

// Crafted writes the outcome of one craft attempt.
func (r *Renderer) Crafted(out craft.Outcome) {
	if !out.Success {
		r.line(styleDamage, fmt.Sprintf("Forging %s failed (rolled %d against %.0f%%).", out.Ability.Name, out.Roll, out.Chance))
		return
	}
	info := out.Ability.Info()
	if len(info) == 0 {
		info = []string{"no effect"}
	}
	r.line(styleHeal, fmt.Sprintf("Forged %s (rolled %d against %.0f%%): %s.", out.Ability.Name, out.Roll, out.Chance, strings.Join(info, ", ")))
}

// Events writes the narrative of every event that carries one. Outcomes and
// round starts are always shown.
func (r *Renderer) Events(events []combat.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case combat.EventOutcome:
			r.line(styleOutcome, fmt.Sprintf("Battle over after %d rounds: %s.", ev.Round, ev.Detail))
		case combat.EventRoundStarted:
			r.line(styleSystem, fmt.Sprintf("-- round %d --", ev.Round))
		case combat.EventDamage, combat.EventDefeated:
			r.line(styleDamage, ev.Narrative)
		case combat.EventHeal, combat.EventBuffApplied:
			r.line(styleHeal, ev.Narrative)
		case combat.EventConditionApplied, combat.EventConditionResisted, combat.EventEffectExpired:
			r.line(styleStatus, ev.Narrative)
		default:
			r.line(styleSystem, ev.Narrative)
		}
	}
}
