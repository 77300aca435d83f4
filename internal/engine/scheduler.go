package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/starlane/internal/agents"
)

// Advance runs one agent for one tick: it either moves an in-flight task
// forward or, when the agent is free and its decision interval has passed,
// evaluates its rules top to bottom and fires at most one. A running chase
// is stepped first and does not block evaluation. It reports whether a rule
// fired.
//
// A panic inside the agent's update is recovered and logged; the agent is
// skipped for the tick and the simulation continues. Advance is called from
// Step with the simulation lock held.
func (s *Simulation) Advance(a *agents.Agent, now time.Duration) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			fired = false
			slog.Error("agent update failed", "agent", a.Name, "id", a.ID, "panic", r)
			s.EmitEvent(Event{
				Agent:       a.ID,
				Description: fmt.Sprintf("%s skipped this tick: %v", a.Name, r),
				Category:    "fault",
			})
		}
	}()

	if !a.Alive {
		return false
	}
	s.Now = now

	if a.Task != nil {
		s.advanceTask(a, now)
		return false
	}
	if a.State.Kind == agents.StateBroken {
		return false
	}
	if a.Chase != nil {
		s.advanceChase(a, now)
		if a.Chase == nil {
			return false
		}
	}
	if now < a.NextDecisionAt {
		return false
	}
	a.LastRuleEval = now
	a.NextDecisionAt = now + s.cfg.RuleInterval()

	for _, r := range a.Rules {
		if !agents.Matches(a, r) {
			continue
		}
		if !s.Execute(a, r, now) {
			continue
		}
		a.ActiveRule = r.ID
		slog.Debug("rule fired", "agent", a.Name, "action", r.Action, "rule", r.ID)
		return true
	}

	if a.State.Kind == agents.StateIdle {
		a.ActiveRule = ""
	}
	return false
}
