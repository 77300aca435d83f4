package agents

import (
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/tuning"
)

func TestSpawnerAssignsSequentialIDs(t *testing.T) {
	s := NewSpawner(1, tuning.Default())
	a := s.Spawn(TypeMiner, orb.Point{1, 2})
	b := s.Spawn(TypeMiner, orb.Point{3, 4})
	if b.ID != a.ID+1 {
		t.Fatalf("ids %d, %d not sequential", a.ID, b.ID)
	}
	s.SetNextID(100)
	if c := s.Spawn(TypeAsteroid, orb.Point{}); c.ID != 100 {
		t.Fatalf("SetNextID ignored: %d", c.ID)
	}
}

func TestSpawnerStartingState(t *testing.T) {
	cfg := tuning.Default()
	s := NewSpawner(1, cfg)
	a := s.Spawn(TypeAsteroid, orb.Point{5, 5})

	if !a.Alive || a.State.Kind != StateIdle || a.Task != nil {
		t.Fatalf("new agent not idle and alive: %+v", a)
	}
	if got := a.Ledger.Get(GoodOre); got != cfg.StartingLedgers["Asteroid"]["Ore"] {
		t.Fatalf("asteroid ore=%v", got)
	}
	if a.Position != (orb.Point{5, 5}) {
		t.Fatalf("position=%v", a.Position)
	}
}

func TestSpawnStationStocksItsProduct(t *testing.T) {
	cfg := tuning.Default()
	s := NewSpawner(1, cfg)
	st := s.SpawnStation("Tycho Station", orb.Point{}, GoodMedicine)
	if st.Produces != GoodMedicine {
		t.Fatalf("produces=%s", st.Produces)
	}
	if got := st.Ledger.Get(GoodMedicine); got != cfg.Amounts.StationStock {
		t.Fatalf("stock=%v", got)
	}
	for _, p := range Products {
		if p != GoodMedicine && st.Ledger.Get(p) != 0 {
			t.Fatalf("station also stocks %s", p)
		}
	}
}

func TestDefaultRulesAreValid(t *testing.T) {
	for _, at := range AllTypes {
		for _, r := range DefaultRules(at) {
			if err := r.Validate(); err != nil {
				t.Fatalf("%s: %v", at, err)
			}
		}
	}
	if len(DefaultRules(TypeAsteroid)) != 0 {
		t.Fatalf("asteroids should not act")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	a := &Agent{}
	for i := 0; i < MaxHistory+5; i++ {
		AddHistory(a, HistoryEntry{Tick: uint64(i), At: time.Duration(i) * time.Second, Action: ActionPatrol, Outcome: "completed"})
	}
	if len(a.History) != MaxHistory {
		t.Fatalf("history len=%d", len(a.History))
	}
	recent := RecentHistory(a, 3)
	if len(recent) != 3 || recent[0].Tick != uint64(MaxHistory+4) {
		t.Fatalf("recent=%+v", recent)
	}
	if CountOutcomes(a)["completed"] != MaxHistory {
		t.Fatalf("outcomes=%v", CountOutcomes(a))
	}
}

func TestVisitors(t *testing.T) {
	a := &Agent{}
	a.AddVisitor(9)
	a.AddVisitor(2)
	if !a.HasVisitor(9) {
		t.Fatalf("visitor 9 missing")
	}
	ids := a.VisitorIDs()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 9 {
		t.Fatalf("ids=%v", ids)
	}
	a.RemoveVisitor(9)
	if a.HasVisitor(9) {
		t.Fatalf("visitor 9 not removed")
	}
}
