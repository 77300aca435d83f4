// Facility placement: spreads facilities across the sector with a minimum
// spacing and gives them procedural names.
package world

import (
	"math"
	"math/rand"

	"github.com/paulmach/orb"
)

// placementAttempts bounds the rejection sampling in placeSpaced.
const placementAttempts = 200

// minSpacing scales the facility spacing to the sector size and count, so
// small test sectors still fit everything.
func minSpacing(cfg GenConfig) float64 {
	n := cfg.Stations + cfg.Bars + cfg.Apartments + cfg.Dens
	if n < 1 {
		n = 1
	}
	area := cfg.Sector.Width() * cfg.Sector.Height()
	return math.Sqrt(area/float64(n)) / 2
}

// placeSpaced samples positions until one is at least spacing away from
// every taken position. After too many misses it takes the best candidate.
func placeSpaced(rng *rand.Rand, s Sector, taken []orb.Point, spacing float64) orb.Point {
	best := s.RandomPoint(rng)
	bestDist := nearestDistance(best, taken)
	for i := 0; i < placementAttempts; i++ {
		if bestDist >= spacing {
			return best
		}
		p := s.RandomPoint(rng)
		if d := nearestDistance(p, taken); d > bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func nearestDistance(p orb.Point, others []orb.Point) float64 {
	nearest := math.Inf(1)
	for _, o := range others {
		if d := Distance(p, o); d < nearest {
			nearest = d
		}
	}
	return nearest
}

func tooClose(p orb.Point, existing []orb.Point, minDist float64) bool {
	return nearestDistance(p, existing) < minDist
}

// generateNames produces procedural facility names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Ash", "Stone", "Cross", "Black", "Silver", "Red", "White",
		"Dark", "Bright", "High", "Far", "Deep", "Long", "Gold", "Frost",
		"Storm", "Thorn", "Copper", "Star", "Void", "Sun", "Nova", "Comet",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "gate", "keep", "stead", "field", "crest",
		"port", "well", "reach", "helm", "point", "watch", "fall", "rest",
		"drift", "spire", "ring", "dock",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] || len(used) >= len(prefixes)*len(suffixes) {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
