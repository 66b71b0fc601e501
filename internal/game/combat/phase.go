package combat

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// Phase is the state of the battle round.
type Phase string

const (
	PhaseActionSelect Phase = "action_select"
	PhaseTargetSelect Phase = "target_select"
	PhaseEnemyTurn    Phase = "enemy_turn"
	PhaseResolve      Phase = "resolve"
	PhaseVictory      Phase = "victory"
	PhaseDefeat       Phase = "defeat"
	PhaseEscaped      Phase = "escaped"
)

// Terminal reports whether the battle is over.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat || p == PhaseEscaped
}

const (
	evCommit    = "commit"
	evTargeted  = "targeted"
	evEnemyTurn = "enemy_turn"
	evResolve   = "resolve"
	evNextRound = "next_round"
	evVictory   = "victory"
	evDefeat    = "defeat"
	evEscape    = "escape"
	evAbandon   = "abandon"
)

func newPhaseMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseActionSelect),
		fsm.Events{
			{Name: evCommit, Src: []string{string(PhaseActionSelect)}, Dst: string(PhaseTargetSelect)},
			{Name: evTargeted, Src: []string{string(PhaseTargetSelect)}, Dst: string(PhaseActionSelect)},
			{Name: evEnemyTurn, Src: []string{string(PhaseActionSelect)}, Dst: string(PhaseEnemyTurn)},
			{Name: evResolve, Src: []string{string(PhaseEnemyTurn)}, Dst: string(PhaseResolve)},
			{Name: evNextRound, Src: []string{string(PhaseResolve)}, Dst: string(PhaseActionSelect)},
			{Name: evVictory, Src: []string{string(PhaseResolve)}, Dst: string(PhaseVictory)},
			{Name: evDefeat, Src: []string{string(PhaseResolve)}, Dst: string(PhaseDefeat)},
			{Name: evEscape, Src: []string{string(PhaseResolve)}, Dst: string(PhaseEscaped)},
			{Name: evAbandon, Src: []string{string(PhaseTargetSelect), string(PhaseEnemyTurn)}, Dst: string(PhaseActionSelect)},
		},
		fsm.Callbacks{},
	)
}

// fire triggers event on m. A transition to the current state is not an error.
func fire(m *fsm.FSM, event string) error {
	err := m.Event(context.Background(), event)
	var same fsm.NoTransitionError
	if errors.As(err, &same) {
		return nil
	}
	return err
}
