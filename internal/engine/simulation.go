// Simulation ties together the population, finder, sequencer, executors and
// regeneration, and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/economy"
	"github.com/talgya/starlane/internal/entropy"
	"github.com/talgya/starlane/internal/tuning"
	"github.com/talgya/starlane/internal/world"
)

// Simulation holds the complete sector state.
type Simulation struct {
	mu sync.RWMutex

	Sector  world.Sector
	Pop     *Population
	Finder  *Finder
	Mover   Mover
	Effects Effects
	Prices  economy.PriceList
	Tally   *economy.Tally
	Regen   *Regenerator

	// Spawner creates agents injected at runtime.
	Spawner *agents.Spawner

	LastTick uint64        // Most recent tick processed
	Now      time.Duration // Simulation clock at LastTick

	Stats SimStats

	cfg tuning.Tuning
	dt  time.Duration
	rng entropy.Source

	events  []Event
	pending []Event
	subs    map[int]chan Event
	nextSub int

	projectiles map[string]Projectile
}

// SimStats tracks aggregate sector statistics.
type SimStats struct {
	Population  int                      `json:"population"`
	ByType      map[agents.AgentType]int `json:"by_type"`
	ByState     map[agents.StateKind]int `json:"by_state"`
	Busy        int                      `json:"busy"`
	Broken      int                      `json:"broken"`
	TotalWealth float64                  `json:"total_wealth"`
	Trades      int                      `json:"trades"`
	MostTraded  agents.Good              `json:"most_traded,omitempty"`
}

// NewSimulation creates a simulation over the given agents. The default
// collaborators are a straight-line mover and no-op effects; callers may
// replace Mover and Effects before the first Step.
func NewSimulation(cfg tuning.Tuning, sector world.Sector, ag []*agents.Agent, rng entropy.Source) *Simulation {
	pop := NewPopulation()
	for _, a := range ag {
		pop.Spawn(a)
	}
	pop.Commit()

	sim := &Simulation{
		Sector:      sector,
		Pop:         pop,
		Finder:      NewFinder(pop, rng),
		Mover:       LinearMover{Sector: sector, ArriveRadius: cfg.Movement.ArriveRadius},
		Effects:     NopEffects{},
		Prices:      economy.NewPriceList(cfg),
		Tally:       economy.NewTally(),
		Regen:       NewRegenerator(cfg.Regeneration),
		cfg:         cfg,
		dt:          cfg.TickDuration(),
		rng:         rng,
		subs:        make(map[int]chan Event),
		projectiles: make(map[string]Projectile),
	}
	sim.updateStats()
	return sim
}

// Config returns the tuning table the simulation runs with.
func (s *Simulation) Config() tuning.Tuning {
	return s.cfg
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

// Step advances the whole sector to tick. Structural changes queued since
// the last step are committed first; every agent is then advanced once over
// the frozen membership, followed by regeneration and effect expiry.
func (s *Simulation) Step(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	s.Now = time.Duration(tick) * s.dt
	s.commit()

	for _, a := range s.Pop.Snapshot() {
		s.Advance(a, s.Now)
	}
	s.Regen.Tick(s.Pop.Snapshot(), s.Now)
	s.expireProjectiles(s.Now)
}

func (s *Simulation) commit() {
	spawned, destroyed := s.Pop.Commit()
	for _, a := range spawned {
		s.EmitEvent(Event{
			Agent:       a.ID,
			Description: fmt.Sprintf("%s (%s) enters the sector", a.Name, a.Type),
			Category:    "lifecycle",
		})
	}
	for _, a := range destroyed {
		s.Regen.Forget(a.ID)
		s.EmitEvent(Event{
			Agent:       a.ID,
			Description: fmt.Sprintf("%s (%s) is destroyed", a.Name, a.Type),
			Category:    "lifecycle",
		})
	}
}

// Spawn queues a for insertion before the next tick.
func (s *Simulation) Spawn(a *agents.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pop.Spawn(a)
}

// Destroy queues the agent for removal before the next tick.
func (s *Simulation) Destroy(id agents.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Pop.Get(id); !ok {
		return fmt.Errorf("destroy %d: %w", id, ErrUnknownAgent)
	}
	s.Pop.Destroy(id)
	return nil
}

// Projectiles returns the lasers currently in flight.
func (s *Simulation) Projectiles() []Projectile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Projectile, 0, len(s.projectiles))
	for _, p := range s.projectiles {
		out = append(out, p)
	}
	return out
}

// Report logs a periodic summary, like a ship's log.
func (s *Simulation) Report(tick uint64) {
	s.mu.Lock()
	s.updateStats()
	stats := s.Stats
	counts := make(map[string]int)
	for _, e := range s.events {
		counts[e.Category]++
	}
	s.mu.Unlock()

	slog.Info("sector report",
		"tick", tick,
		"time", SimTime(tick, s.dt),
		"population", stats.Population,
		"busy", stats.Busy,
		"broken", stats.Broken,
		"total_wealth", fmt.Sprintf("%.0f", stats.TotalWealth),
		"trades", stats.Trades,
		"most_traded", stats.MostTraded,
		"events_trade", counts["trade"],
		"events_mining", counts["mining"],
		"events_chase", counts["chase"],
		"events_repair", counts["repair"],
		"events_fault", counts["fault"],
	)
}

// Status returns current aggregate statistics.
func (s *Simulation) Status() SimStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateStats()
	return s.Stats
}

func (s *Simulation) updateStats() {
	st := SimStats{
		ByType:  make(map[agents.AgentType]int),
		ByState: make(map[agents.StateKind]int),
	}
	for _, a := range s.Pop.Snapshot() {
		if !a.Alive {
			continue
		}
		st.Population++
		st.ByType[a.Type]++
		st.ByState[a.State.Kind]++
		if a.Busy() {
			st.Busy++
		}
		if a.State.Kind == agents.StateBroken {
			st.Broken++
		}
		st.TotalWealth += s.Prices.Wealth(a)
	}
	st.Trades = s.Tally.Trades
	st.MostTraded = s.Tally.MostTraded()
	s.Stats = st
}
