package agents

import (
	"time"

	"github.com/paulmach/orb"
)

// TaskPhase is the resumption point of an in-flight sequence.
type TaskPhase uint8

const (
	PhaseTravel TaskPhase = iota // Moving toward the target or destination
	PhaseAct                     // Arrived: register, enter active state, run payload
	PhaseDelay                   // Waiting out the configured action delay
	PhaseDepart                  // Unregister, settle, return to Idle
)

func (p TaskPhase) String() string {
	switch p {
	case PhaseTravel:
		return "travel"
	case PhaseAct:
		return "act"
	case PhaseDelay:
		return "delay"
	case PhaseDepart:
		return "depart"
	}
	return "unknown"
}

// TaskFunc mutates the acting agent and, when present, its target.
// target is nil for target-less sequences such as Patrol.
type TaskFunc func(self, target *Agent)

// Task is the per-agent resumption token for a multi-phase sequence.
// It is advanced once per tick by the engine.
type Task struct {
	Action ActionKind
	Phase  TaskPhase

	// Target is the counterparty; nil for target-less sequences.
	Target *AgentID
	// Destination is used when Target is nil.
	Destination orb.Point

	ActiveState StateKind
	Speed       float64
	Delay       time.Duration
	Deadline    time.Duration
	StartedAt   time.Duration

	// Payload runs once on arrival; Settle runs after the delay.
	Payload TaskFunc
	Settle  TaskFunc
}
