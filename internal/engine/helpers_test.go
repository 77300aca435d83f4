package engine

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/entropy"
	"github.com/talgya/starlane/internal/tuning"
	"github.com/talgya/starlane/internal/world"
)

func testConfig() tuning.Tuning {
	cfg := tuning.Default()
	cfg.Regeneration = nil
	return cfg
}

type fixture struct {
	sim  *Simulation
	tick uint64
}

func newFixture(cfg tuning.Tuning, ag ...*agents.Agent) *fixture {
	sim := NewSimulation(cfg, world.NewSector(cfg.World), ag, entropy.NewSeeded(1))
	sim.Mover = Teleport{}
	return &fixture{sim: sim}
}

func (f *fixture) step() {
	f.tick++
	f.sim.Step(f.tick)
}

// fire steps once and requires a to have started a task or a chase.
func (f *fixture) fire(t *testing.T, a *agents.Agent) {
	t.Helper()
	f.step()
	if a.Task == nil && a.Chase == nil {
		t.Fatalf("%s did not start a task (state=%v)", a.Name, a.State)
	}
}

// finish steps until a's task or chase completes.
func (f *fixture) finish(t *testing.T, a *agents.Agent) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if a.Task == nil && a.Chase == nil {
			return
		}
		f.step()
	}
	t.Fatalf("%s still busy after 1000 ticks (state=%v)", a.Name, a.State)
}

func newAgent(id agents.AgentID, typ agents.AgentType, name string, pos orb.Point, l agents.Ledger, rules ...agents.Rule) *agents.Agent {
	if l == nil {
		l = agents.Ledger{}
	}
	return &agents.Agent{
		ID:       id,
		Name:     name,
		Type:     typ,
		Ledger:   l,
		Rules:    rules,
		State:    agents.Idle(),
		Position: pos,
		Alive:    true,
	}
}

func lastHistory(a *agents.Agent) agents.HistoryEntry {
	if len(a.History) == 0 {
		return agents.HistoryEntry{}
	}
	return a.History[len(a.History)-1]
}

type recordingEffects struct {
	spawned   []Projectile
	despawned []string
}

func (r *recordingEffects) SpawnProjectile(p Projectile) { r.spawned = append(r.spawned, p) }
func (r *recordingEffects) DespawnProjectile(id string)  { r.despawned = append(r.despawned, id) }
