package engine

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
)

func TestPopulationChangesWaitForCommit(t *testing.T) {
	p := NewPopulation()
	a := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil)
	p.Spawn(a)
	if _, ok := p.Get(1); ok || p.Len() != 0 {
		t.Fatalf("spawn visible before commit")
	}

	spawned, _ := p.Commit()
	if len(spawned) != 1 || p.Len() != 1 {
		t.Fatalf("spawned=%d len=%d", len(spawned), p.Len())
	}

	p.Destroy(1)
	if _, ok := p.Get(1); !ok {
		t.Fatalf("destroy visible before commit")
	}
	_, destroyed := p.Commit()
	if len(destroyed) != 1 || a.Alive {
		t.Fatalf("destroyed=%d alive=%v", len(destroyed), a.Alive)
	}
	if _, ok := p.Get(1); ok || p.Len() != 0 {
		t.Fatalf("agent still present after commit")
	}
}

func TestPopulationSnapshotIsOrderedAndFrozen(t *testing.T) {
	p := NewPopulation()
	for _, id := range []agents.AgentID{5, 2, 9} {
		p.Spawn(newAgent(id, agents.TypeAsteroid, "rock", orb.Point{}, nil))
	}
	p.Commit()
	snap := p.Snapshot()
	if len(snap) != 3 || snap[0].ID != 2 || snap[1].ID != 5 || snap[2].ID != 9 {
		t.Fatalf("snapshot order wrong: %v", snap)
	}

	p.Spawn(newAgent(1, agents.TypeAsteroid, "rock", orb.Point{}, nil))
	if len(p.Snapshot()) != 3 {
		t.Fatalf("snapshot changed mid-tick")
	}
	if p.MaxID() != 9 {
		t.Fatalf("max id=%d", p.MaxID())
	}
}

func TestPopulationDestroyClearsVisitors(t *testing.T) {
	p := NewPopulation()
	bar := newAgent(1, agents.TypeSpaceBar, "Nova Bar", orb.Point{}, nil)
	guest := newAgent(2, agents.TypeMiner, "Ada Voss", orb.Point{}, nil)
	p.Spawn(bar)
	p.Spawn(guest)
	p.Commit()
	bar.AddVisitor(guest.ID)

	p.Destroy(guest.ID)
	p.Commit()
	if bar.HasVisitor(guest.ID) {
		t.Fatalf("destroyed agent still listed as visitor")
	}
}

func TestPopulationFilter(t *testing.T) {
	p := NewPopulation()
	p.Spawn(newAgent(1, agents.TypeAsteroid, "a", orb.Point{}, nil))
	p.Spawn(newAgent(2, agents.TypeMiner, "b", orb.Point{}, nil))
	p.Spawn(newAgent(3, agents.TypeAsteroid, "c", orb.Point{}, nil))
	p.Commit()
	if got := p.OfType(agents.TypeAsteroid); len(got) != 2 {
		t.Fatalf("asteroids=%d", len(got))
	}
	if got := p.Filter(nil); len(got) != 3 {
		t.Fatalf("all=%d", len(got))
	}
	var nilID *agents.AgentID
	if p.Live(nilID) {
		t.Fatalf("nil id reported live")
	}
}
