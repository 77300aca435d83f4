package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/economy"
	"github.com/talgya/starlane/internal/tuning"
)

// execRepair sends a mechanic to the nearest broken ship no other mechanic
// is already servicing. The ship gets full health and returns to Idle; it
// pays the mechanic's fee.
func (s *Simulation) execRepair(a *agents.Agent, _ agents.Rule, now time.Duration) bool {
	claimed := s.claimedRepairs(a)
	broken := func(t *agents.Agent) bool {
		if t.State.Kind != agents.StateBroken {
			return false
		}
		_, taken := claimed[t.ID]
		return !taken
	}
	target, ok := s.Finder.Nearest(a, s.cfg.Repair.SearchRadius, broken)
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      agents.ActionRepair,
		ActiveState: agents.StateWorking,
		Delay:       tuning.Ms(s.cfg.Delays.Repair),
		Payload: func(mechanic, ship *agents.Agent) {
			if ship.State.Kind != agents.StateBroken {
				return
			}
			ship.Apply(agents.SetGood{Good: agents.GoodHealth, Qty: s.cfg.Vitals.MaxHealth})
			ship.Apply(agents.SetIdle{})
			economy.Transfer(ship, mechanic, agents.GoodMoney, s.cfg.Amounts.RepairFee)
			slog.Info("ship repaired", "mechanic", mechanic.Name, "ship", ship.Name)
			s.EmitEvent(Event{
				Agent:       mechanic.ID,
				Description: fmt.Sprintf("%s repairs %s", mechanic.Name, ship.Name),
				Category:    "repair",
				Meta:        map[string]any{"ship": ship.ID, "fee": s.cfg.Amounts.RepairFee},
			})
		},
	}, now)
	return true
}

// claimedRepairs returns the agents other mechanics are currently targeting,
// read from their state.
func (s *Simulation) claimedRepairs(self *agents.Agent) map[agents.AgentID]struct{} {
	claimed := make(map[agents.AgentID]struct{})
	for _, m := range s.Pop.OfType(self.Type) {
		if m.ID == self.ID {
			continue
		}
		if id, ok := m.State.TargetID(); ok {
			claimed[id] = struct{}{}
		}
	}
	return claimed
}
