// Sector generation using layered simplex noise.
// Noise density decides where asteroid fields form; facilities are spread out
// with a minimum spacing and ships start near their home facility.
package world

import (
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
)

// GenConfig holds sector generation parameters.
type GenConfig struct {
	Seed   int64 // Random seed (0 = random)
	Sector Sector

	Stations   int
	Bars       int
	Apartments int
	Dens       int

	AsteroidFields    int
	AsteroidsPerField int
	FieldRadius       float64

	Miners    int
	Traders   int
	Pirates   int
	Mechanics int
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig(sector Sector) GenConfig {
	return GenConfig{
		Sector:            sector,
		Stations:          4,
		Bars:              2,
		Apartments:        2,
		Dens:              1,
		AsteroidFields:    3,
		AsteroidsPerField: 5,
		FieldRadius:       120,
		Miners:            8,
		Traders:           6,
		Pirates:           3,
		Mechanics:         2,
	}
}

// SmallTestConfig returns a tiny sector for rapid iteration.
func SmallTestConfig(sector Sector) GenConfig {
	return GenConfig{
		Seed:              42,
		Sector:            sector,
		Stations:          1,
		Bars:              1,
		Apartments:        1,
		Dens:              1,
		AsteroidFields:    1,
		AsteroidsPerField: 2,
		FieldRadius:       50,
		Miners:            2,
		Traders:           1,
		Pirates:           1,
		Mechanics:         1,
	}
}

// Placement is one agent the layout asks the caller to spawn.
type Placement struct {
	Type     agents.AgentType `json:"type"`
	Name     string           `json:"name,omitempty"` // Empty means let the spawner name it
	Position orb.Point        `json:"position"`
	Product  agents.Good      `json:"product,omitempty"`
	Home     int              `json:"home"` // Index into Layout.Placements, -1 for none
}

// Layout is the generated starting arrangement of a sector.
type Layout struct {
	Seed       int64       `json:"seed"`
	Sector     Sector      `json:"sector"`
	Placements []Placement `json:"placements"`
}

// Generate lays out facilities, asteroid fields and ships.
func Generate(cfg GenConfig) *Layout {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))
	density := opensimplex.NewNormalized(seed + 1)

	l := &Layout{Seed: seed, Sector: cfg.Sector}
	spacing := minSpacing(cfg)

	var taken []orb.Point
	facilities := []struct {
		t     agents.AgentType
		count int
	}{
		{agents.TypeSpaceStation, cfg.Stations},
		{agents.TypeSpaceBar, cfg.Bars},
		{agents.TypeSpaceApartments, cfg.Apartments},
		{agents.TypePirateDen, cfg.Dens},
	}
	facilityCount := 0
	for _, f := range facilities {
		facilityCount += f.count
	}
	names := generateNames(rng, facilityCount)

	for _, f := range facilities {
		for i := 0; i < f.count; i++ {
			pos := placeSpaced(rng, cfg.Sector, taken, spacing)
			taken = append(taken, pos)
			p := Placement{
				Type:     f.t,
				Name:     names[0] + " " + facilityLabel(f.t),
				Position: pos,
				Home:     -1,
			}
			names = names[1:]
			if f.t == agents.TypeSpaceStation {
				// Cycle products so every line has at least one station when possible.
				p.Product = agents.Products[i%len(agents.Products)]
			}
			l.Placements = append(l.Placements, p)
		}
	}

	for _, center := range fieldCenters(rng, density, cfg, taken) {
		for i := 0; i < cfg.AsteroidsPerField; i++ {
			l.Placements = append(l.Placements, Placement{
				Type:     agents.TypeAsteroid,
				Position: cfg.Sector.Near(rng, center, cfg.FieldRadius),
				Home:     -1,
			})
		}
	}

	ships := []struct {
		t     agents.AgentType
		count int
		home  agents.AgentType
	}{
		{agents.TypeMiner, cfg.Miners, agents.TypeSpaceApartments},
		{agents.TypeTrader, cfg.Traders, agents.TypeSpaceApartments},
		{agents.TypeMechanic, cfg.Mechanics, agents.TypeSpaceApartments},
		{agents.TypePirate, cfg.Pirates, agents.TypePirateDen},
	}
	for _, s := range ships {
		homes := l.indexesOf(s.home)
		for i := 0; i < s.count; i++ {
			p := Placement{Type: s.t, Home: -1, Position: cfg.Sector.RandomPoint(rng)}
			if len(homes) > 0 {
				p.Home = homes[i%len(homes)]
				p.Position = cfg.Sector.Near(rng, l.Placements[p.Home].Position, spacing/2)
			}
			l.Placements = append(l.Placements, p)
		}
	}

	return l
}

// fieldCenters picks the densest noise samples as asteroid field centers,
// keeping them clear of facilities and each other.
func fieldCenters(rng *rand.Rand, noise opensimplex.Noise, cfg GenConfig, avoid []orb.Point) []orb.Point {
	if cfg.AsteroidFields <= 0 {
		return nil
	}
	type scored struct {
		p     orb.Point
		score float64
	}
	samples := make([]scored, 0, 64)
	for i := 0; i < 64; i++ {
		p := cfg.Sector.RandomPoint(rng)
		samples = append(samples, scored{p, octaveNoise(noise, p.X(), p.Y(), 3, 0.002, 0.5)})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].score > samples[j].score
	})

	var centers []orb.Point
	for _, s := range samples {
		if len(centers) >= cfg.AsteroidFields {
			break
		}
		if tooClose(s.p, avoid, cfg.FieldRadius) || tooClose(s.p, centers, cfg.FieldRadius*2) {
			continue
		}
		centers = append(centers, s.p)
	}
	// Crowded sectors fall back to the best samples regardless of spacing.
	for i := 0; len(centers) < cfg.AsteroidFields; i++ {
		centers = append(centers, samples[i%len(samples)].p)
	}
	return centers
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func (l *Layout) indexesOf(t agents.AgentType) []int {
	var out []int
	for i, p := range l.Placements {
		if p.Type == t {
			out = append(out, i)
		}
	}
	return out
}

// TypeCounts returns a summary of the layout by agent type.
func TypeCounts(l *Layout) map[agents.AgentType]int {
	counts := make(map[agents.AgentType]int)
	for _, p := range l.Placements {
		counts[p.Type]++
	}
	return counts
}

func facilityLabel(t agents.AgentType) string {
	switch t {
	case agents.TypeSpaceStation:
		return "Station"
	case agents.TypeSpaceBar:
		return "Bar"
	case agents.TypeSpaceApartments:
		return "Apartments"
	case agents.TypePirateDen:
		return "Den"
	default:
		return string(t)
	}
}
