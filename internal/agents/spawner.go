// Agent spawning: creates agents with per-type starting ledgers, default
// rule sets and generated names. Placement in the world is the caller's job.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/tuning"
)

// Spawner creates agents for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID
	cfg    tuning.Tuning
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64, cfg tuning.Tuning) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
		cfg:    cfg,
	}
}

// SetNextID sets the next agent ID to be issued (used when restoring from DB).
func (s *Spawner) SetNextID(id AgentID) {
	s.nextID = id
}

// Spawn creates an agent of type t with a generated name.
func (s *Spawner) Spawn(t AgentType, pos orb.Point) *Agent {
	return s.SpawnNamed(t, s.generateName(t), pos)
}

// SpawnNamed creates an agent of type t with the given name.
func (s *Spawner) SpawnNamed(t AgentType, name string, pos orb.Point) *Agent {
	id := s.nextID
	s.nextID++

	a := &Agent{
		ID:       id,
		Name:     name,
		Type:     t,
		Ledger:   s.startingLedger(t),
		Rules:    DefaultRules(t),
		State:    Idle(),
		Position: pos,
		Visitors: make(map[AgentID]struct{}),
		Alive:    true,
	}

	switch t {
	case TypeSpaceStation:
		// Stations produce one product and start stocked with it.
		a.Produces = Products[s.rng.Intn(len(Products))]
		a.Ledger.Set(a.Produces, s.cfg.Amounts.StationStock)
	case TypeTrader:
		// Traders deal in one product line.
		a.Produces = Products[s.rng.Intn(len(Products))]
	}
	return a
}

// SpawnStation creates a station producing a specific product.
func (s *Spawner) SpawnStation(name string, pos orb.Point, product Good) *Agent {
	a := s.SpawnNamed(TypeSpaceStation, name, pos)
	delete(a.Ledger, a.Produces)
	a.Produces = product
	a.Ledger.Set(product, s.cfg.Amounts.StationStock)
	return a
}

func (s *Spawner) startingLedger(t AgentType) Ledger {
	l := make(Ledger)
	for good, qty := range s.cfg.StartingLedgers[string(t)] {
		l.Set(Good(good), qty)
	}
	return l
}

func (s *Spawner) generateName(t AgentType) string {
	switch t {
	case TypeMiner, TypeTrader, TypePirate, TypeMechanic, TypePlayer:
		first := pilotNames[s.rng.Intn(len(pilotNames))]
		last := pilotSurnames[s.rng.Intn(len(pilotSurnames))]
		return first + " " + last
	case TypeAsteroid:
		return fmt.Sprintf("%s-%03d", asteroidPrefixes[s.rng.Intn(len(asteroidPrefixes))], s.rng.Intn(1000))
	default:
		return placeNames[s.rng.Intn(len(placeNames))] + " " + string(t)
	}
}

var pilotNames = []string{
	"Ada", "Bram", "Cass", "Dorian", "Eira", "Fenn", "Greer", "Halvard",
	"Ilse", "Joss", "Kit", "Lior", "Mara", "Nico", "Oswin", "Pell",
}

var pilotSurnames = []string{
	"Voss", "Quill", "Harrow", "Stone", "Vale", "Marsh", "Ashby", "Crane",
	"Dusk", "Ferro", "Kade", "Lune", "Mercer", "Rook", "Sable", "Thorne",
}

var asteroidPrefixes = []string{"Ceres", "Vesta", "Pallas", "Hygiea", "Juno", "Psyche"}

var placeNames = []string{
	"Copperfield", "Deepwell", "Embercroft", "Greenvale", "Marshwood",
	"Halcyon", "Meridian", "Perihelion", "Tycho", "Kepler",
}
