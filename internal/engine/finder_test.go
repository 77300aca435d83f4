package engine

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/entropy"
)

func finderFixture(ag ...*agents.Agent) *Finder {
	pop := NewPopulation()
	for _, a := range ag {
		pop.Spawn(a)
	}
	pop.Commit()
	return NewFinder(pop, entropy.NewSeeded(3))
}

func TestFinderExactName(t *testing.T) {
	self := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil)
	a := newAgent(2, agents.TypeAsteroid, "Ceres-001", orb.Point{}, agents.Ledger{agents.GoodOre: 5})
	b := newAgent(3, agents.TypeAsteroid, "Vesta-002", orb.Point{}, agents.Ledger{agents.GoodOre: 5})
	f := finderFixture(self, a, b)

	for i := 0; i < 20; i++ {
		got, ok := f.Resolve(Query{Self: self, Name: "Vesta-002", Type: agents.TypeAsteroid, Implied: agents.TypeAsteroid})
		if !ok || got.ID != b.ID {
			t.Fatalf("name match picked %v ok=%v", got, ok)
		}
	}
}

func TestFinderNameRespectsPredicateAndType(t *testing.T) {
	self := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil)
	empty := newAgent(2, agents.TypeAsteroid, "Ceres-001", orb.Point{}, agents.Ledger{})
	full := newAgent(3, agents.TypeAsteroid, "Vesta-002", orb.Point{}, agents.Ledger{agents.GoodOre: 5})
	impostor := newAgent(4, agents.TypeSpaceBar, "Ceres-001", orb.Point{}, nil)
	f := finderFixture(self, empty, full, impostor)

	hasOre := func(a *agents.Agent) bool { return a.Ledger.Get(agents.GoodOre) > 0 }
	got, ok := f.Resolve(Query{Self: self, Name: "Ceres-001", Type: agents.TypeAsteroid, Implied: agents.TypeAsteroid, Available: hasOre})
	if !ok || got.ID != full.ID {
		t.Fatalf("expected fallback to the asteroid with ore, got %v", got)
	}
}

func TestFinderExcludesSelf(t *testing.T) {
	self := newAgent(1, agents.TypeSpaceStation, "Tycho Station", orb.Point{}, nil)
	f := finderFixture(self)
	if got, ok := f.Resolve(Query{Self: self, Name: "Tycho Station", Type: agents.TypeSpaceStation, Implied: agents.TypeSpaceStation}); ok {
		t.Fatalf("resolved to self: %v", got)
	}
}

func TestFinderTypedRandomSatisfiesPredicate(t *testing.T) {
	self := newAgent(1, agents.TypeTrader, "Bram Quill", orb.Point{}, nil)
	var ag []*agents.Agent
	ag = append(ag, self)
	for i := 0; i < 10; i++ {
		st := newAgent(agents.AgentID(10+i), agents.TypeSpaceStation, "Station", orb.Point{}, agents.Ledger{})
		if i%2 == 0 {
			st.Produces = agents.GoodFuel
		} else {
			st.Produces = agents.GoodFood
		}
		ag = append(ag, st)
	}
	f := finderFixture(ag...)
	makesFood := func(a *agents.Agent) bool { return a.Produces == agents.GoodFood }

	seen := make(map[agents.AgentID]bool)
	for i := 0; i < 200; i++ {
		got, ok := f.Resolve(Query{Self: self, Type: agents.TypeSpaceStation, Available: makesFood})
		if !ok || got.Produces != agents.GoodFood {
			t.Fatalf("pick %v does not satisfy predicate", got)
		}
		seen[got.ID] = true
	}
	if len(seen) < 2 {
		t.Fatalf("random pick never varied: %v", seen)
	}
}

func TestFinderHomeBeforeImpliedRandom(t *testing.T) {
	homeID := agents.AgentID(5)
	self := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil)
	self.Home = &homeID
	home := newAgent(5, agents.TypeSpaceApartments, "Ironhaven Apartments", orb.Point{}, nil)
	other := newAgent(6, agents.TypeSpaceApartments, "Starwell Apartments", orb.Point{}, nil)
	f := finderFixture(self, home, other)

	for i := 0; i < 20; i++ {
		got, ok := f.Resolve(Query{Self: self, Implied: agents.TypeSpaceApartments, UseHome: true})
		if !ok || got.ID != home.ID {
			t.Fatalf("home fallback picked %v", got)
		}
	}
}

func TestFinderImpliedFallbackAndNone(t *testing.T) {
	self := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil)
	rock := newAgent(2, agents.TypeAsteroid, "Ceres-001", orb.Point{}, agents.Ledger{agents.GoodOre: 1})
	f := finderFixture(self, rock)

	got, ok := f.Resolve(Query{Self: self, Name: "Nowhere", Implied: agents.TypeAsteroid})
	if !ok || got.ID != rock.ID {
		t.Fatalf("implied fallback got %v", got)
	}
	if _, ok := f.Resolve(Query{Self: self, Name: "Nowhere", Type: agents.TypePirateDen, Implied: agents.TypePirateDen}); ok {
		t.Fatalf("resolved a target that does not exist")
	}
}

func TestFinderNearest(t *testing.T) {
	self := newAgent(1, agents.TypePirate, "Kit Rook", orb.Point{0, 0}, nil)
	near := newAgent(2, agents.TypeMiner, "Ada Voss", orb.Point{30, 40}, nil)
	far := newAgent(3, agents.TypeMiner, "Cass Stone", orb.Point{300, 400}, nil)
	f := finderFixture(self, near, far)
	isMiner := func(a *agents.Agent) bool { return a.Type == agents.TypeMiner }

	if got, ok := f.Nearest(self, 0, isMiner); !ok || got.ID != near.ID {
		t.Fatalf("nearest=%v", got)
	}
	if _, ok := f.Nearest(self, 49, isMiner); ok {
		t.Fatalf("radius ignored")
	}
	if got, ok := f.Nearest(self, 50, isMiner); !ok || got.ID != near.ID {
		t.Fatalf("boundary distance excluded: %v", got)
	}
}
