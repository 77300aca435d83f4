// Visit sequencing: the travel, arrive, act, delay, depart pipeline shared by
// every location-based action. Each agent carries its own resumption token
// (agents.Task) and the driver advances it once per tick. Target liveness is
// checked at every phase so a destroyed target unwinds the agent to Idle.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
)

// Visit is what an executor hands to the sequencer.
type Visit struct {
	Action      agents.ActionKind
	ActiveState agents.StateKind
	Delay       time.Duration
	Payload     agents.TaskFunc // Runs once on arrival
	Settle      agents.TaskFunc // Runs after the delay, before going idle
}

// beginVisit starts a visit to target and puts a into Traveling(target).
func (s *Simulation) beginVisit(a, target *agents.Agent, v Visit, now time.Duration) {
	s.endChase(a, "interrupted", "switching to "+string(v.Action))
	id := target.ID
	a.Task = &agents.Task{
		Action:      v.Action,
		Phase:       agents.PhaseTravel,
		Target:      &id,
		ActiveState: v.ActiveState,
		Speed:       s.cfg.SpeedFor(string(a.Type)),
		Delay:       v.Delay,
		StartedAt:   now,
		Payload:     v.Payload,
		Settle:      v.Settle,
	}
	a.Apply(agents.SetTraveling{Target: id})
	s.recordHistory(a, a.Task, "started")
}

// beginExcursion starts a target-less sequence toward dest. The active state
// is entered immediately rather than on arrival.
func (s *Simulation) beginExcursion(a *agents.Agent, dest orb.Point, v Visit, now time.Duration) {
	s.endChase(a, "interrupted", "switching to "+string(v.Action))
	a.Task = &agents.Task{
		Action:      v.Action,
		Phase:       agents.PhaseTravel,
		Destination: dest,
		ActiveState: v.ActiveState,
		Speed:       s.cfg.SpeedFor(string(a.Type)),
		Delay:       v.Delay,
		StartedAt:   now,
		Payload:     v.Payload,
		Settle:      v.Settle,
	}
	a.Apply(agents.SetActiveState{Kind: v.ActiveState})
	s.recordHistory(a, a.Task, "started")
}

// advanceTask moves a's in-flight task forward by one tick. Phases fall
// through when they complete, so an instant arrival with no delay finishes
// within a single tick.
func (s *Simulation) advanceTask(a *agents.Agent, now time.Duration) {
	t := a.Task
	var target *agents.Agent
	resolve := func() bool {
		if t.Target == nil {
			return true
		}
		tgt, ok := s.Pop.Get(*t.Target)
		if !ok {
			return false
		}
		target = tgt
		return true
	}

	switch t.Phase {
	case agents.PhaseTravel:
		if !resolve() {
			s.abortTask(a, "target lost in transit")
			return
		}
		dest := t.Destination
		if target != nil {
			dest = target.Position
		}
		if !s.Mover.MoveToward(a, dest, t.Speed, s.dt) {
			return
		}
		t.Phase = agents.PhaseAct
		fallthrough

	case agents.PhaseAct:
		if !resolve() {
			s.abortTask(a, "target lost on arrival")
			return
		}
		if target != nil {
			target.AddVisitor(a.ID)
			a.Apply(agents.SetActiveState{Kind: t.ActiveState, Target: t.Target})
		} else {
			a.Apply(agents.SetActiveState{Kind: t.ActiveState})
		}
		if t.Payload != nil {
			t.Payload(a, target)
		}
		t.Deadline = now + t.Delay
		t.Phase = agents.PhaseDelay
		fallthrough

	case agents.PhaseDelay:
		if !resolve() {
			s.abortTask(a, "target lost during "+string(t.Action))
			return
		}
		if now < t.Deadline {
			return
		}
		t.Phase = agents.PhaseDepart
		fallthrough

	case agents.PhaseDepart:
		resolve()
		if target != nil {
			target.RemoveVisitor(a.ID)
		}
		if t.Settle != nil {
			t.Settle(a, target)
		}
		s.finishTask(a, "completed")
	}
}

// abortTask unwinds a to Idle without running any remaining callbacks.
func (s *Simulation) abortTask(a *agents.Agent, reason string) {
	t := a.Task
	if t != nil && t.Target != nil {
		if tgt, ok := s.Pop.Get(*t.Target); ok {
			tgt.RemoveVisitor(a.ID)
		}
	}
	slog.Debug("task aborted", "agent", a.Name, "action", taskAction(t), "reason", reason)
	s.EmitEvent(Event{
		Agent:       a.ID,
		Description: fmt.Sprintf("%s abandons %s: %s", a.Name, taskAction(t), reason),
		Category:    "action",
	})
	s.finishTask(a, "aborted")
}

func (s *Simulation) finishTask(a *agents.Agent, outcome string) {
	s.recordHistory(a, a.Task, outcome)
	a.Task = nil
	a.Velocity = orb.Point{}
	a.Apply(agents.SetIdle{})
}

func (s *Simulation) recordHistory(a *agents.Agent, t *agents.Task, outcome string) {
	if t == nil {
		return
	}
	e := agents.HistoryEntry{
		Tick:    s.LastTick,
		At:      s.Now,
		Action:  t.Action,
		Outcome: outcome,
	}
	if t.Target != nil {
		id := *t.Target
		e.Target = &id
	}
	agents.AddHistory(a, e)
}

func taskAction(t *agents.Task) agents.ActionKind {
	if t == nil {
		return ""
	}
	return t.Action
}
