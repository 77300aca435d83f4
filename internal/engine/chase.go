// Pirate chases: ChaseTarget picks the nearest eligible ship inside the
// detection radius. The chase does not go through the visit sequencer; its
// per-tick loop runs from Advance ahead of rule evaluation, pursues the
// prey, fires lasers on an interval and steals once when close enough.
// Idle prey drifts away from its pursuer. A chase ends on timeout or when
// the target is lost, and is dropped when the pirate starts a visit or
// breaks down.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/economy"
	"github.com/talgya/starlane/internal/tuning"
	"github.com/talgya/starlane/internal/world"
)

// Projectile is a transient laser shot. It has no gameplay effect of its
// own; combat damage arrives separately through ApplyDamage.
type Projectile struct {
	ID        string         `json:"id"`
	Shooter   agents.AgentID `json:"shooter"`
	Target    agents.AgentID `json:"target"`
	From      orb.Point      `json:"from"`
	To        orb.Point      `json:"to"`
	SpawnedAt time.Duration  `json:"spawned_at"`
	ExpiresAt time.Duration  `json:"expires_at"`
}

// Effects is the collaborator that renders transient entities.
type Effects interface {
	SpawnProjectile(p Projectile)
	DespawnProjectile(id string)
}

// NopEffects discards effects.
type NopEffects struct{}

func (NopEffects) SpawnProjectile(Projectile) {}
func (NopEffects) DespawnProjectile(string)   {}

func (s *Simulation) execChase(a *agents.Agent, _ agents.Rule, now time.Duration) bool {
	// Re-entry guard: a running chase keeps its target and start time.
	if a.Chase != nil || a.State.Kind == agents.StateChasing {
		return false
	}
	prey, ok := s.Finder.Nearest(a, s.cfg.Chase.DetectionRadius, s.chaseable)
	if !ok {
		return false
	}

	id := prey.ID
	a.ChaseStart = now
	a.ChaseStolen = false
	a.LastShot = now - tuning.Ms(s.cfg.Chase.FireIntervalMs) // First shot on the first chase tick
	a.Chase = &agents.Task{
		Action:    agents.ActionChaseTarget,
		Target:    &id,
		Speed:     s.cfg.Chase.Speed,
		Deadline:  now + tuning.Ms(s.cfg.Chase.DurationMs),
		StartedAt: now,
	}
	a.Apply(agents.SetActiveState{Kind: agents.StateChasing, Target: &id})
	s.recordHistory(a, a.Chase, "started")

	slog.Info("chase started", "pirate", a.Name, "target", prey.Name)
	s.EmitEvent(Event{
		Agent:       a.ID,
		Description: fmt.Sprintf("%s gives chase to %s", a.Name, prey.Name),
		Category:    "chase",
		Meta:        map[string]any{"target": prey.ID},
	})
	return true
}

func (s *Simulation) chaseable(t *agents.Agent) bool {
	if t.State.Kind == agents.StateBroken {
		return false
	}
	for _, typ := range s.cfg.Chase.Targets {
		if string(t.Type) == typ {
			return true
		}
	}
	return false
}

// advanceChase runs one tick of an active chase.
func (s *Simulation) advanceChase(a *agents.Agent, now time.Duration) {
	t := a.Chase
	prey, ok := s.Pop.Get(*t.Target)
	if !ok {
		s.endChase(a, "aborted", "target gone")
		return
	}
	if now >= t.Deadline {
		s.endChase(a, "completed", "chase timed out")
		return
	}
	dist := world.Distance(a.Position, prey.Position)
	if dist > s.cfg.Chase.LoseRadius {
		s.endChase(a, "completed", "target escaped")
		return
	}

	s.flee(prey, a)
	s.Mover.MoveToward(a, prey.Position, t.Speed, s.dt)
	dist = world.Distance(a.Position, prey.Position)

	interval := tuning.Ms(s.cfg.Chase.FireIntervalMs)
	if now-a.LastShot >= interval {
		a.LastShot = now
		s.fire(a, prey, now)
	}

	if !a.ChaseStolen && dist <= s.cfg.Chase.StealRadius {
		a.ChaseStolen = true
		s.steal(a, prey)
	}
}

func (s *Simulation) steal(pirate, prey *agents.Agent) {
	good := agents.Good(s.cfg.Chase.StealGood)
	amount := min(s.cfg.Chase.StealAmount, prey.Ledger.Get(good))
	if amount <= 0 {
		return
	}
	economy.Transfer(prey, pirate, good, amount)
	slog.Info("cargo stolen", "pirate", pirate.Name, "victim", prey.Name, "good", good, "amount", amount)
	s.EmitEvent(Event{
		Agent:       pirate.ID,
		Description: fmt.Sprintf("%s steals %.0f %s from %s", pirate.Name, amount, good, prey.Name),
		Category:    "chase",
		Meta:        map[string]any{"victim": prey.ID, "good": good, "amount": amount},
	})
}

// flee moves prey one step directly away from pirate. Prey that is busy
// with its own sequence or broken down holds its course.
func (s *Simulation) flee(prey, pirate *agents.Agent) {
	speed := s.cfg.Chase.FleeSpeed
	if speed <= 0 || prey.Task != nil || prey.Chase != nil || prey.State.Kind == agents.StateBroken {
		return
	}
	away := world.Velocity(pirate.Position, prey.Position, 1)
	if away == (orb.Point{}) {
		return
	}
	step := speed * s.dt.Seconds()
	dest := orb.Point{prey.Position.X() + away.X()*step, prey.Position.Y() + away.Y()*step}
	s.Mover.MoveToward(prey, dest, speed, s.dt)
}

// endChase stops a's pursuit, if any, and returns it to Idle.
func (s *Simulation) endChase(a *agents.Agent, outcome, reason string) {
	c := a.Chase
	if c == nil {
		return
	}
	s.EmitEvent(Event{
		Agent:       a.ID,
		Description: fmt.Sprintf("%s breaks off the chase: %s", a.Name, reason),
		Category:    "chase",
	})
	s.recordHistory(a, c, outcome)
	a.Chase = nil
	a.Velocity = orb.Point{}
	if a.State.Kind == agents.StateChasing {
		a.Apply(agents.SetIdle{})
	}
	if prey, ok := s.Pop.Get(*c.Target); ok && prey.Task == nil {
		prey.Velocity = orb.Point{}
	}
}

// fire spawns a laser from shooter toward target.
func (s *Simulation) fire(shooter, target *agents.Agent, now time.Duration) {
	p := Projectile{
		ID:        uuid.NewString(),
		Shooter:   shooter.ID,
		Target:    target.ID,
		From:      shooter.Position,
		To:        target.Position,
		SpawnedAt: now,
		ExpiresAt: now + tuning.Ms(s.cfg.Chase.LaserLifetimeMs),
	}
	s.projectiles[p.ID] = p
	s.Effects.SpawnProjectile(p)
}

// expireProjectiles despawns lasers past their lifetime.
func (s *Simulation) expireProjectiles(now time.Duration) {
	for id, p := range s.projectiles {
		if now >= p.ExpiresAt {
			delete(s.projectiles, id)
			s.Effects.DespawnProjectile(id)
		}
	}
}
