// External entry points: rule replacement from the editor, read-only views
// for display, and combat damage from outside the behavior engine.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
)

// ErrUnknownAgent is returned for IDs that do not name a live agent.
var ErrUnknownAgent = errors.New("unknown agent")

// AgentView is a read-only copy of an agent's state for display.
type AgentView struct {
	ID         agents.AgentID   `json:"id"`
	Name       string           `json:"name"`
	Type       agents.AgentType `json:"type"`
	Ledger     agents.Ledger    `json:"ledger"`
	State      agents.State     `json:"state"`
	Position   orb.Point        `json:"position"`
	Velocity   orb.Point        `json:"velocity"`
	Produces   agents.Good      `json:"produces,omitempty"`
	Home       *agents.AgentID  `json:"home,omitempty"`
	ActiveRule string           `json:"active_rule,omitempty"`
	Busy       bool             `json:"busy"`
	Phase      string           `json:"phase,omitempty"`
	Visitors   []agents.AgentID `json:"visitors,omitempty"`
	Rules      []agents.Rule    `json:"rules,omitempty"`

	LastRuleEval time.Duration         `json:"last_rule_eval"`
	History      []agents.HistoryEntry `json:"history,omitempty"`
}

func viewOf(a *agents.Agent, detail bool) AgentView {
	snap := a.Snapshot()
	v := AgentView{
		ID:           a.ID,
		Name:         a.Name,
		Type:         a.Type,
		Ledger:       snap.Ledger,
		State:        snap.State,
		Position:     a.Position,
		Velocity:     a.Velocity,
		Produces:     a.Produces,
		ActiveRule:   a.ActiveRule,
		Busy:         a.Busy(),
		LastRuleEval: a.LastRuleEval,
	}
	if a.Home != nil {
		h := *a.Home
		v.Home = &h
	}
	switch {
	case a.Task != nil:
		v.Phase = a.Task.Phase.String()
	case a.Chase != nil:
		v.Phase = "chase"
	}
	if detail {
		v.Visitors = a.VisitorIDs()
		v.Rules = append([]agents.Rule(nil), a.Rules...)
		v.History = agents.RecentHistory(a, agents.MaxHistory)
	}
	return v
}

// View returns the current ledger, state and history of one agent.
func (s *Simulation) View(id agents.AgentID) (AgentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.Pop.Get(id)
	if !ok {
		return AgentView{}, fmt.Errorf("view %d: %w", id, ErrUnknownAgent)
	}
	return viewOf(a, true), nil
}

// Agents returns summary views of every live agent, optionally filtered by
// type. An empty type returns all.
func (s *Simulation) Agents(t agents.AgentType) []AgentView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AgentView, 0, s.Pop.Len())
	for _, a := range s.Pop.Snapshot() {
		if !a.Alive || (t != "" && a.Type != t) {
			continue
		}
		out = append(out, viewOf(a, false))
	}
	return out
}

// Export returns detached copies of every live agent for saving. Copies
// carry no in-flight task or visitor set.
func (s *Simulation) Export() []*agents.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*agents.Agent, 0, s.Pop.Len())
	for _, a := range s.Pop.Snapshot() {
		if !a.Alive {
			continue
		}
		c := *a
		c.Ledger = a.Ledger.Clone()
		c.Rules = append([]agents.Rule(nil), a.Rules...)
		c.History = append([]agents.HistoryEntry(nil), a.History...)
		c.Task = nil
		c.Chase = nil
		c.Visitors = nil
		if a.Home != nil {
			h := *a.Home
			c.Home = &h
		}
		if a.State.Target != nil {
			id := *a.State.Target
			c.State.Target = &id
		}
		out = append(out, &c)
	}
	return out
}

// SetRules replaces an agent's rule list. The new rules take effect at the
// agent's next decision; an in-flight task is not interrupted.
func (s *Simulation) SetRules(id agents.AgentID, rules []agents.Rule) error {
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Pop.Get(id)
	if !ok {
		return fmt.Errorf("set rules %d: %w", id, ErrUnknownAgent)
	}
	a.Rules = append([]agents.Rule(nil), rules...)
	a.NextDecisionAt = s.Now
	if a.IsIdle() {
		a.ActiveRule = ""
	}

	slog.Info("rules replaced", "agent", a.Name, "count", len(rules))
	s.EmitEvent(Event{
		Agent:       a.ID,
		Description: fmt.Sprintf("%s receives %d new rules", a.Name, len(rules)),
		Category:    "action",
	})
	return nil
}

// ApplyDamage removes health from an agent, e.g. from a laser hit reported
// by the combat collaborator. Health clamps at zero. A ship disabled mid-task
// drops the task so its next decision can break it down.
func (s *Simulation) ApplyDamage(id agents.AgentID, amount float64, source string) error {
	if amount < 0 {
		return fmt.Errorf("damage %d: negative amount %v", id, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Pop.Get(id)
	if !ok {
		return fmt.Errorf("damage %d: %w", id, ErrUnknownAgent)
	}
	a.Apply(agents.RemoveGood{Good: agents.GoodHealth, Qty: amount})
	health := a.Ledger.Get(agents.GoodHealth)

	s.EmitEvent(Event{
		Agent:       a.ID,
		Description: fmt.Sprintf("%s takes %.0f damage from %s", a.Name, amount, source),
		Category:    "combat",
		Meta:        map[string]any{"amount": amount, "source": source, "health": health},
	})

	if health <= 0 && (a.Task != nil || a.Chase != nil) {
		if a.Task != nil {
			s.abortTask(a, "disabled")
		}
		s.endChase(a, "aborted", "disabled")
		a.NextDecisionAt = s.Now
	}
	return nil
}

// SpawnAgent creates an agent of type t at pos with the runtime spawner and
// queues it for the next tick. An empty name gets a generated one.
func (s *Simulation) SpawnAgent(t agents.AgentType, name string, pos orb.Point) (AgentView, error) {
	if !t.Valid() {
		return AgentView{}, fmt.Errorf("spawn: unknown agent type %q", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Spawner == nil {
		return AgentView{}, fmt.Errorf("spawn %s: no spawner configured", t)
	}
	if !s.Sector.Contains(pos) {
		return AgentView{}, fmt.Errorf("spawn %s: position %v outside sector %s", t, pos, s.Sector)
	}
	var a *agents.Agent
	if name == "" {
		a = s.Spawner.Spawn(t, pos)
	} else {
		a = s.Spawner.SpawnNamed(t, name, pos)
	}
	s.Pop.Spawn(a)
	return viewOf(a, false), nil
}

// Announce records an operator-supplied event in the log.
func (s *Simulation) Announce(description, category string) {
	if category == "" {
		category = "intervention"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EmitEvent(Event{Description: description, Category: category})
}
