package condition

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

// Active tracks one applied status condition.
type Active struct {
	Def       *Definition
	Stacks    int
	Remaining int // rounds left
}

// Buff tracks one timed stat bundle granted by an ability.
type Buff struct {
	Source    string // name of the ability that granted it
	Deltas    gem.StatDeltas
	Remaining int
}

// ActiveSet tracks all conditions and buffs currently applied to one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	conditions map[string]*Active
	buffs      []*Buff
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*Active)}
}

// Apply adds or refreshes a condition.
// Re-applying increments stacks (capped at MaxStacks; unstackable stays at 1)
// and extends the duration to max(existing, duration).
//
// Precondition: def must not be nil; duration > 0.
// Postcondition: Has(def.ID) is true.
func (s *ActiveSet) Apply(def *Definition, stacks, duration int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if duration <= 0 {
		return fmt.Errorf("Apply: duration must be > 0, got %d", duration)
	}
	if existing, ok := s.conditions[def.ID]; ok {
		if def.MaxStacks > 0 {
			existing.Stacks = min(existing.Stacks+stacks, def.MaxStacks)
		}
		existing.Remaining = max(existing.Remaining, duration)
		return nil
	}
	effective := 1
	if def.MaxStacks > 0 {
		effective = min(max(stacks, 1), def.MaxStacks)
	}
	s.conditions[def.ID] = &Active{Def: def, Stacks: effective, Remaining: duration}
	return nil
}

// AddBuff grants deltas for duration rounds. Buffs from different sources stack.
//
// Precondition: duration > 0.
func (s *ActiveSet) AddBuff(source string, deltas gem.StatDeltas, duration int) {
	s.buffs = append(s.buffs, &Buff{Source: source, Deltas: deltas, Remaining: duration})
}

// Remove deletes the condition with the given ID. Absent IDs are a no-op.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Tick decrements every condition and buff by one round and drops the ones
// that reach zero.
//
// Postcondition: returns the expired condition IDs (sorted) and the number of expired buffs.
func (s *ActiveSet) Tick() (expired []string, expiredBuffs int) {
	for id, ac := range s.conditions {
		ac.Remaining--
		if ac.Remaining <= 0 {
			expired = append(expired, id)
			delete(s.conditions, id)
		}
	}
	sort.Strings(expired)
	kept := s.buffs[:0]
	for _, b := range s.buffs {
		b.Remaining--
		if b.Remaining > 0 {
			kept = append(kept, b)
		} else {
			expiredBuffs++
		}
	}
	s.buffs = kept
	return expired, expiredBuffs
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Stacks returns the current stack count for condition id, or 0 if not present.
func (s *ActiveSet) Stacks(id string) int {
	if ac, ok := s.conditions[id]; ok {
		return ac.Stacks
	}
	return 0
}

// All returns the active conditions sorted by ID.
// The pointed-to values are shared; callers must not modify them.
func (s *ActiveSet) All() []*Active {
	out := make([]*Active, 0, len(s.conditions))
	for _, ac := range s.conditions {
		out = append(out, ac)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.ID < out[j].Def.ID })
	return out
}

// Buffs returns a copy of the active buffs in grant order.
func (s *ActiveSet) Buffs() []Buff {
	out := make([]Buff, len(s.buffs))
	for i, b := range s.buffs {
		out[i] = *b
	}
	return out
}

// StatBonus sums the deltas of every active buff.
func (s *ActiveSet) StatBonus() gem.StatDeltas {
	var total gem.StatDeltas
	for _, b := range s.buffs {
		total.Attack += b.Deltas.Attack
		total.Defense += b.Deltas.Defense
		total.Speed += b.Deltas.Speed
		total.Magic += b.Deltas.Magic
		total.MaxHP += b.Deltas.MaxHP
	}
	return total
}

// DamagePerRound returns the end-of-round damage owed to active conditions.
//
// Postcondition: Returns >= 0.
func (s *ActiveSet) DamagePerRound() int {
	total := 0
	for _, ac := range s.conditions {
		total += ac.Def.DamagePerRound * ac.Stacks
	}
	return total
}

// SkipsTurn reports whether any active condition prevents acting.
func (s *ActiveSet) SkipsTurn() bool {
	for _, ac := range s.conditions {
		if ac.Def.SkipTurn {
			return true
		}
	}
	return false
}

// BreakOnDamage removes every condition that ends when its bearer is hit.
//
// Postcondition: returns the removed IDs, sorted.
func (s *ActiveSet) BreakOnDamage() []string {
	var removed []string
	for id, ac := range s.conditions {
		if ac.Def.BreaksOnDamage {
			removed = append(removed, id)
			delete(s.conditions, id)
		}
	}
	sort.Strings(removed)
	return removed
}
