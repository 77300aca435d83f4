// Passive regeneration: restocks selected agents on a timer, independent of
// rule evaluation. A schedule latches on when the good drops below its
// minimum and adds a fixed amount every cycle until it reaches the maximum.
package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/tuning"
)

type regenKey struct {
	schedule int
	agent    agents.AgentID
}

type regenTimer struct {
	last   time.Duration // Start of the current cycle
	active bool          // Latched: refilling toward the maximum
}

// Regenerator applies regeneration schedules to the population.
type Regenerator struct {
	schedules []tuning.Regen
	timers    map[regenKey]*regenTimer
}

// NewRegenerator creates a regenerator for the given schedules.
func NewRegenerator(schedules []tuning.Regen) *Regenerator {
	return &Regenerator{
		schedules: schedules,
		timers:    make(map[regenKey]*regenTimer),
	}
}

// Tick inspects every matching agent once. The first observation of an
// agent only starts its timer.
func (r *Regenerator) Tick(pop []*agents.Agent, now time.Duration) {
	for i, sch := range r.schedules {
		rate := tuning.Ms(sch.RateMs)
		for _, a := range pop {
			if !a.Alive || !selects(sch, a) {
				continue
			}
			good := regenGood(sch, a)
			if good == "" {
				continue
			}
			value := a.Ledger.Get(good)

			key := regenKey{schedule: i, agent: a.ID}
			t, ok := r.timers[key]
			if !ok {
				r.timers[key] = &regenTimer{last: now, active: value < sch.MinThreshold}
				continue
			}

			if !t.active {
				if value < sch.MinThreshold {
					t.active = true
					t.last = now
				}
				continue
			}
			if value >= sch.MaxThreshold {
				t.active = false
				continue
			}
			if now-t.last < rate {
				continue
			}

			amount := min(sch.AmountPerCycle, sch.MaxThreshold-value)
			a.Apply(agents.AddGood{Good: good, Qty: amount})
			t.last = now
			if a.Ledger.Get(good) >= sch.MaxThreshold {
				t.active = false
			}
			slog.Debug("regenerated", "agent", a.Name, "good", good, "amount", amount)
		}
	}
}

// Forget drops timers for a destroyed agent.
func (r *Regenerator) Forget(id agents.AgentID) {
	for key := range r.timers {
		if key.agent == id {
			delete(r.timers, key)
		}
	}
}

func selects(sch tuning.Regen, a *agents.Agent) bool {
	if sch.AgentName != "" {
		return a.Name == sch.AgentName
	}
	return string(a.Type) == sch.AgentType
}

// regenGood resolves the schedule's good for a; "Product" means the agent's
// own product.
func regenGood(sch tuning.Regen, a *agents.Agent) agents.Good {
	good := agents.Good(sch.Good)
	if good == agents.GoodProduct {
		return a.Produces
	}
	return good
}
