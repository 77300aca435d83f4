// Package agents provides the agent data model, resource ledger, state reducer,
// and rule evaluation for the behavior engine.
package agents

import (
	"sort"
	"time"

	"github.com/paulmach/orb"
)

// AgentID is a stable identifier for an agent in the population arena.
type AgentID uint64

// AgentType tags what kind of entity an agent is.
type AgentType string

const (
	TypeMiner           AgentType = "Miner"
	TypeTrader          AgentType = "Trader"
	TypeSpaceStation    AgentType = "SpaceStation"
	TypeSpaceBar        AgentType = "SpaceBar"
	TypeSpaceApartments AgentType = "SpaceApartments"
	TypeAsteroid        AgentType = "Asteroid"
	TypePirateDen       AgentType = "PirateDen"
	TypePirate          AgentType = "Pirate"
	TypeMechanic        AgentType = "Mechanic"
	TypePlayer          AgentType = "Player"
	TypeCustom          AgentType = "Custom"
)

// AllTypes lists the closed set of agent types.
var AllTypes = []AgentType{
	TypeMiner, TypeTrader, TypeSpaceStation, TypeSpaceBar, TypeSpaceApartments,
	TypeAsteroid, TypePirateDen, TypePirate, TypeMechanic, TypePlayer, TypeCustom,
}

// Valid reports whether t is one of the known agent types.
func (t AgentType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Agent is any entity governed by the behavior engine.
type Agent struct {
	ID   AgentID   `json:"id"`
	Name string    `json:"name"`
	Type AgentType `json:"type"`

	Ledger Ledger `json:"ledger"`
	Rules  []Rule `json:"rules"`
	State  State  `json:"state"`

	// Location
	Position orb.Point `json:"position"`
	Velocity orb.Point `json:"velocity"`

	Home     *AgentID              `json:"home,omitempty"` // Back-reference, not owned
	Produces Good                  `json:"produces,omitempty"`
	Visitors map[AgentID]struct{}  `json:"-"`

	// Rule scheduling
	ActiveRule     string        `json:"active_rule,omitempty"`
	LastRuleEval   time.Duration `json:"last_rule_eval"`
	NextDecisionAt time.Duration `json:"next_decision_at"`

	// In-flight sequence. Nil means the task queue is empty.
	Task *Task `json:"-"`

	// Running pursuit (Pirates). Kept apart from Task: a chasing pirate
	// still evaluates its rules every decision interval.
	Chase       *Task         `json:"-"`
	ChaseStart  time.Duration `json:"chase_start,omitempty"`
	ChaseStolen bool          `json:"chase_stolen,omitempty"`
	LastShot    time.Duration `json:"last_shot,omitempty"`

	History []HistoryEntry `json:"history,omitempty"`

	Alive bool `json:"alive"`
}

// IsIdle reports whether the agent has no active state and nothing queued.
func (a *Agent) IsIdle() bool {
	return a.State.Kind == StateIdle && a.Task == nil && a.Chase == nil
}

// Busy reports whether a sequence is mid-flight for the agent. A chase
// does not count.
func (a *Agent) Busy() bool {
	return a.Task != nil
}

// AddVisitor registers v as currently engaged with a.
func (a *Agent) AddVisitor(v AgentID) {
	if a.Visitors == nil {
		a.Visitors = make(map[AgentID]struct{})
	}
	a.Visitors[v] = struct{}{}
}

// RemoveVisitor drops v from a's visitor set.
func (a *Agent) RemoveVisitor(v AgentID) {
	delete(a.Visitors, v)
}

// HasVisitor reports whether v is currently visiting a.
func (a *Agent) HasVisitor(v AgentID) bool {
	_, ok := a.Visitors[v]
	return ok
}

// VisitorIDs returns the visitor set in ascending order.
func (a *Agent) VisitorIDs() []AgentID {
	ids := make([]AgentID, 0, len(a.Visitors))
	for id := range a.Visitors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Apply runs op through the reducer and stores the result on the agent.
// This is the only path that mutates an agent's ledger or state.
func (a *Agent) Apply(op Op) {
	next := Reduce(Snapshot{Ledger: a.Ledger, State: a.State}, op)
	a.Ledger = next.Ledger
	a.State = next.State
}

// Snapshot returns a copy of the agent's ledger and state.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{Ledger: a.Ledger.Clone(), State: a.State}
}
