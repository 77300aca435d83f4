package engine

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/world"
)

// Mover is the physical movement collaborator. MoveToward advances a by up
// to dt at speed toward dest and reports whether it has arrived. It has no
// timeout: an unreachable destination keeps returning false.
type Mover interface {
	MoveToward(a *agents.Agent, dest orb.Point, speed float64, dt time.Duration) (arrived bool)
}

// LinearMover flies agents in a straight line inside the sector.
type LinearMover struct {
	Sector       world.Sector
	ArriveRadius float64
}

// MoveToward implements Mover.
func (m LinearMover) MoveToward(a *agents.Agent, dest orb.Point, speed float64, dt time.Duration) bool {
	dest = m.Sector.Clamp(dest)
	if world.Distance(a.Position, dest) <= m.ArriveRadius {
		a.Velocity = orb.Point{}
		return true
	}

	step := speed * dt.Seconds()
	next, reached := world.StepToward(a.Position, dest, step)
	a.Velocity = world.Velocity(a.Position, dest, speed)
	a.Position = next
	if reached || world.Distance(next, dest) <= m.ArriveRadius {
		a.Velocity = orb.Point{}
		return true
	}
	return false
}

// Teleport is a Mover that arrives immediately. Used by tests and headless
// runs where travel time does not matter.
type Teleport struct{}

// MoveToward implements Mover.
func (Teleport) MoveToward(a *agents.Agent, dest orb.Point, _ float64, _ time.Duration) bool {
	a.Position = dest
	a.Velocity = orb.Point{}
	return true
}
