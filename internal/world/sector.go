// Package world provides the sector geometry, positions and procedural layout
// that the behavior engine moves agents through.
package world

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/talgya/starlane/internal/tuning"
)

// Sector is the rectangular region of space agents live and patrol in.
type Sector struct {
	Bound orb.Bound `json:"bound"`
}

// NewSector builds a sector from the tuning world bounds.
func NewSector(w tuning.World) Sector {
	return Sector{Bound: orb.Bound{
		Min: orb.Point{w.MinX, w.MinY},
		Max: orb.Point{w.MaxX, w.MaxY},
	}}
}

// Contains reports whether p lies inside the sector.
func (s Sector) Contains(p orb.Point) bool {
	return s.Bound.Contains(p)
}

// Clamp returns p moved onto the nearest point inside the sector.
func (s Sector) Clamp(p orb.Point) orb.Point {
	return orb.Point{
		math.Max(s.Bound.Min.X(), math.Min(s.Bound.Max.X(), p.X())),
		math.Max(s.Bound.Min.Y(), math.Min(s.Bound.Max.Y(), p.Y())),
	}
}

// Rand is the subset of a random source the sector needs. Both *rand.Rand
// and entropy sources satisfy it.
type Rand interface {
	Float64() float64
}

// RandomPoint picks a uniformly random position inside the sector.
func (s Sector) RandomPoint(rng Rand) orb.Point {
	return orb.Point{
		s.Bound.Min.X() + rng.Float64()*(s.Bound.Max.X()-s.Bound.Min.X()),
		s.Bound.Min.Y() + rng.Float64()*(s.Bound.Max.Y()-s.Bound.Min.Y()),
	}
}

// Center returns the middle of the sector.
func (s Sector) Center() orb.Point {
	return s.Bound.Center()
}

// Width and Height of the sector in world units.
func (s Sector) Width() float64  { return s.Bound.Max.X() - s.Bound.Min.X() }
func (s Sector) Height() float64 { return s.Bound.Max.Y() - s.Bound.Min.Y() }

func (s Sector) String() string {
	return fmt.Sprintf("Sector(%.0fx%.0f)", s.Width(), s.Height())
}

// Distance is the straight-line distance between two positions.
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// StepToward moves from toward to by at most maxStep. It reports true and
// returns to exactly when the remaining distance fits in one step.
func StepToward(from, to orb.Point, maxStep float64) (orb.Point, bool) {
	d := planar.Distance(from, to)
	if d <= maxStep || d == 0 {
		return to, true
	}
	f := maxStep / d
	return orb.Point{
		from.X() + (to.X()-from.X())*f,
		from.Y() + (to.Y()-from.Y())*f,
	}, false
}

// Velocity returns the vector of magnitude speed pointing from toward to.
func Velocity(from, to orb.Point, speed float64) orb.Point {
	d := planar.Distance(from, to)
	if d == 0 {
		return orb.Point{}
	}
	return orb.Point{(to.X() - from.X()) / d * speed, (to.Y() - from.Y()) / d * speed}
}

// Near returns a random point within radius of center, clamped to the sector.
func (s Sector) Near(rng Rand, center orb.Point, radius float64) orb.Point {
	angle := rng.Float64() * 2 * math.Pi
	r := radius * math.Sqrt(rng.Float64())
	return s.Clamp(orb.Point{center.X() + r*math.Cos(angle), center.Y() + r*math.Sin(angle)})
}
