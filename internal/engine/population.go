// Population arena: live agents addressed by stable ID. Spawns and
// destroys are queued and committed between ticks, so every tick works over
// a frozen snapshot of membership.
package engine

import (
	"sort"

	"github.com/talgya/starlane/internal/agents"
)

// Population holds the live agents.
type Population struct {
	byID     map[agents.AgentID]*agents.Agent
	snapshot []*agents.Agent // Committed membership in ID order

	pendingSpawn   []*agents.Agent
	pendingDestroy map[agents.AgentID]struct{}
}

// NewPopulation creates an empty arena.
func NewPopulation() *Population {
	return &Population{
		byID:           make(map[agents.AgentID]*agents.Agent),
		pendingDestroy: make(map[agents.AgentID]struct{}),
	}
}

// Spawn queues a for insertion at the next commit.
func (p *Population) Spawn(a *agents.Agent) {
	p.pendingSpawn = append(p.pendingSpawn, a)
}

// Destroy queues the agent for removal at the next commit.
func (p *Population) Destroy(id agents.AgentID) {
	p.pendingDestroy[id] = struct{}{}
}

// Commit applies queued structural changes and rebuilds the snapshot.
// Destroyed agents are marked dead and dropped from every visitor set.
func (p *Population) Commit() (spawned []*agents.Agent, destroyed []*agents.Agent) {
	if len(p.pendingSpawn) == 0 && len(p.pendingDestroy) == 0 && p.snapshot != nil {
		return nil, nil
	}

	for _, a := range p.pendingSpawn {
		if _, exists := p.byID[a.ID]; exists {
			continue
		}
		a.Alive = true
		p.byID[a.ID] = a
		spawned = append(spawned, a)
	}
	p.pendingSpawn = nil

	for id := range p.pendingDestroy {
		a, ok := p.byID[id]
		if !ok {
			continue
		}
		a.Alive = false
		delete(p.byID, id)
		destroyed = append(destroyed, a)
	}
	p.pendingDestroy = make(map[agents.AgentID]struct{})
	sort.Slice(destroyed, func(i, j int) bool { return destroyed[i].ID < destroyed[j].ID })

	if len(destroyed) > 0 {
		for _, a := range p.byID {
			for _, d := range destroyed {
				a.RemoveVisitor(d.ID)
			}
		}
	}

	p.snapshot = make([]*agents.Agent, 0, len(p.byID))
	for _, a := range p.byID {
		p.snapshot = append(p.snapshot, a)
	}
	sort.Slice(p.snapshot, func(i, j int) bool { return p.snapshot[i].ID < p.snapshot[j].ID })

	return spawned, destroyed
}

// Snapshot returns the committed membership in ID order. The slice must
// not be modified.
func (p *Population) Snapshot() []*agents.Agent {
	return p.snapshot
}

// Get returns a live agent by ID.
func (p *Population) Get(id agents.AgentID) (*agents.Agent, bool) {
	a, ok := p.byID[id]
	if !ok || !a.Alive {
		return nil, false
	}
	return a, true
}

// Live reports whether id names a live agent. A nil id is never live.
func (p *Population) Live(id *agents.AgentID) bool {
	if id == nil {
		return false
	}
	_, ok := p.Get(*id)
	return ok
}

// Len returns the committed population size.
func (p *Population) Len() int {
	return len(p.snapshot)
}

// Filter returns live agents matching pred, in ID order.
func (p *Population) Filter(pred func(*agents.Agent) bool) []*agents.Agent {
	var out []*agents.Agent
	for _, a := range p.snapshot {
		if a.Alive && (pred == nil || pred(a)) {
			out = append(out, a)
		}
	}
	return out
}

// OfType returns live agents of type t.
func (p *Population) OfType(t agents.AgentType) []*agents.Agent {
	return p.Filter(func(a *agents.Agent) bool { return a.Type == t })
}

// MaxID returns the highest ID ever committed or queued, for seeding spawners.
func (p *Population) MaxID() agents.AgentID {
	var max agents.AgentID
	for id := range p.byID {
		if id > max {
			max = id
		}
	}
	for _, a := range p.pendingSpawn {
		if a.ID > max {
			max = a.ID
		}
	}
	return max
}
