package agents

import "fmt"

// StateKind tags the agent's current activity.
type StateKind string

const (
	StateIdle        StateKind = "Idle"
	StateTraveling   StateKind = "Traveling"
	StateMining      StateKind = "Mining"
	StateTrading     StateKind = "Trading"
	StateSocializing StateKind = "Socializing"
	StateWorking     StateKind = "Working"
	StateChilling    StateKind = "Chilling"
	StateTransacting StateKind = "Transacting"
	StateChasing     StateKind = "Chasing"
	StatePatrolling  StateKind = "Patrolling"
	StateBroken      StateKind = "Broken"
)

// Targeted reports whether states of this kind carry a target agent.
func (k StateKind) Targeted() bool {
	switch k {
	case StateTraveling, StateMining, StateTrading, StateSocializing,
		StateWorking, StateChilling, StateTransacting, StateChasing:
		return true
	}
	return false
}

// State is the agent's single active state, optionally bound to a target.
type State struct {
	Kind   StateKind `json:"kind"`
	Target *AgentID  `json:"target,omitempty"`
}

// Idle is the initial and terminal state.
func Idle() State {
	return State{Kind: StateIdle}
}

// TargetID returns the target and whether one is set.
func (s State) TargetID() (AgentID, bool) {
	if s.Target == nil {
		return 0, false
	}
	return *s.Target, true
}

func (s State) String() string {
	if s.Target != nil {
		return fmt.Sprintf("%s(%d)", s.Kind, *s.Target)
	}
	return string(s.Kind)
}
