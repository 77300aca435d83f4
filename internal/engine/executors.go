// Action executors: one handler per action kind. Each resolves a target,
// reports false when there is none, and otherwise hands a payload to the
// sequencer.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/economy"
	"github.com/talgya/starlane/internal/tuning"
)

// executor runs one action for agent a. It returns true if the action
// started (or, for instant actions, took effect).
type executor func(s *Simulation, a *agents.Agent, r agents.Rule, now time.Duration) bool

// executorFor maps every action kind to its handler. Adding an ActionKind
// without a case here leaves it unhandled, which TestEveryActionHasExecutor
// catches.
func executorFor(k agents.ActionKind) (executor, bool) {
	switch k {
	case agents.ActionMineOre:
		return (*Simulation).execMineOre, true
	case agents.ActionSellOreToStation:
		return (*Simulation).execSellOre, true
	case agents.ActionBuyProduct:
		return (*Simulation).execBuyProduct, true
	case agents.ActionSellProduct:
		return (*Simulation).execSellProduct, true
	case agents.ActionSocialize:
		return (*Simulation).execSocialize, true
	case agents.ActionWork:
		return (*Simulation).execWork, true
	case agents.ActionRest:
		return (*Simulation).execRest, true
	case agents.ActionPatrol:
		return (*Simulation).execPatrol, true
	case agents.ActionGoToDen:
		return (*Simulation).execGoToDen, true
	case agents.ActionChaseTarget:
		return (*Simulation).execChase, true
	case agents.ActionSetBroken:
		return (*Simulation).execSetBroken, true
	case agents.ActionRepair:
		return (*Simulation).execRepair, true
	}
	return nil, false
}

// Execute dispatches r's action for a. It reports whether the action ran.
func (s *Simulation) Execute(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	exec, ok := executorFor(r.Action)
	if !ok {
		slog.Warn("unhandled action", "agent", a.Name, "action", r.Action)
		return false
	}
	return exec(s, a, r, now)
}

func queryFor(a *agents.Agent, r agents.Rule, implied agents.AgentType, avail Predicate) Query {
	return Query{
		Self:      a,
		Name:      r.Destination.Name,
		Type:      r.Destination.Type,
		Implied:   implied,
		Available: avail,
	}
}

func (s *Simulation) execMineOre(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	hasOre := func(t *agents.Agent) bool { return t.Ledger.Get(agents.GoodOre) > 0 }
	target, ok := s.Finder.Resolve(queryFor(a, r, agents.TypeAsteroid, hasOre))
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      agents.ActionMineOre,
		ActiveState: agents.StateMining,
		Delay:       tuning.Ms(s.cfg.Delays.Mining),
		Payload: func(self, rock *agents.Agent) {
			// Another miner may have emptied the rock while we were in transit.
			available := rock.Ledger.Get(agents.GoodOre)
			if available <= 0 {
				return
			}
			amount := min(s.cfg.Amounts.Mining, available)
			economy.Transfer(rock, self, agents.GoodOre, amount)
			s.Tally.Record(agents.GoodOre, amount, 0)
			s.EmitEvent(Event{
				Agent:       self.ID,
				Description: fmt.Sprintf("%s mines %.0f ore from %s", self.Name, amount, rock.Name),
				Category:    "mining",
				Meta:        map[string]any{"asteroid": rock.ID, "amount": amount},
			})
		},
	}, now)
	return true
}

func (s *Simulation) execSocialize(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	target, ok := s.Finder.Resolve(queryFor(a, r, agents.TypeSpaceBar, nil))
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      agents.ActionSocialize,
		ActiveState: agents.StateSocializing,
		Delay:       tuning.Ms(s.cfg.Delays.Socializing),
		Payload: func(self, bar *agents.Agent) {
			spent := self.Ledger.Get(agents.GoodMoney)
			if spent > 0 {
				economy.Transfer(self, bar, agents.GoodMoney, spent)
			}
			self.Apply(agents.SetGood{Good: agents.GoodEnergy, Qty: s.cfg.Vitals.DefaultEnergy})
			s.EmitEvent(Event{
				Agent:       self.ID,
				Description: fmt.Sprintf("%s spends %.0f at %s", self.Name, spent, bar.Name),
				Category:    "action",
			})
		},
	}, now)
	return true
}

func (s *Simulation) execWork(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	target, ok := s.Finder.Resolve(queryFor(a, r, agents.TypeSpaceStation, nil))
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      agents.ActionWork,
		ActiveState: agents.StateWorking,
		Delay:       tuning.Ms(s.cfg.Delays.Working),
		Payload: func(self, employer *agents.Agent) {
			economy.Transfer(employer, self, agents.GoodMoney, s.cfg.Amounts.WorkWage)
			self.Apply(agents.SetGood{Good: agents.GoodEnergy, Qty: 0})
		},
	}, now)
	return true
}

func (s *Simulation) execRest(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	return s.retreat(a, r, now, agents.ActionRest, agents.TypeSpaceApartments, s.cfg.Delays.Resting)
}

func (s *Simulation) execGoToDen(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	return s.retreat(a, r, now, agents.ActionGoToDen, agents.TypePirateDen, s.cfg.Delays.Den)
}

// retreat is Rest and GoToDen: go home (or somewhere of the right type),
// wait, and come back with full energy.
func (s *Simulation) retreat(a *agents.Agent, r agents.Rule, now time.Duration, action agents.ActionKind, implied agents.AgentType, delayMs int) bool {
	q := queryFor(a, r, implied, nil)
	q.UseHome = true
	target, ok := s.Finder.Resolve(q)
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      action,
		ActiveState: agents.StateChilling,
		Delay:       tuning.Ms(delayMs),
		Settle: func(self, _ *agents.Agent) {
			self.Apply(agents.SetGood{Good: agents.GoodEnergy, Qty: s.cfg.Vitals.DefaultEnergy})
		},
	}, now)
	return true
}

// execPatrol sends a on a sweep to a random point. A pirate already in
// pursuit has nothing to patrol for.
func (s *Simulation) execPatrol(a *agents.Agent, _ agents.Rule, now time.Duration) bool {
	if a.Chase != nil {
		return false
	}
	dest := s.Sector.RandomPoint(s.rng)
	s.beginExcursion(a, dest, Visit{
		Action:      agents.ActionPatrol,
		ActiveState: agents.StatePatrolling,
		Delay:       tuning.Ms(s.cfg.Delays.Patrol),
		Payload: func(self, _ *agents.Agent) {
			self.Apply(agents.RemoveGood{Good: agents.GoodEnergy, Qty: s.cfg.Amounts.PatrolEnergyCost})
		},
	}, now)
	return true
}

func (s *Simulation) execSetBroken(a *agents.Agent, _ agents.Rule, _ time.Duration) bool {
	s.endChase(a, "aborted", "broken down")
	a.Velocity = orb.Point{}
	a.Apply(agents.SetBroken{})
	slog.Info("agent broken down", "agent", a.Name, "type", a.Type)
	s.EmitEvent(Event{
		Agent:       a.ID,
		Description: fmt.Sprintf("%s has broken down", a.Name),
		Category:    "broken",
	})
	return true
}
