// Target resolution: turns a rule's destination hints into a concrete live
// counterparty. Strategies run in a fixed order; exhausting them all is
// "no target", never an error.
package engine

import (
	"math"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/entropy"
	"github.com/talgya/starlane/internal/world"
)

// Predicate is a type-specific availability check, e.g. "has ore".
type Predicate func(*agents.Agent) bool

// Query describes what an executor is looking for.
type Query struct {
	Self *agents.Agent

	Name string           // Exact name hint
	Type agents.AgentType // Typed hint

	// Implied is the type the action makes sense against, used for the
	// final random fallback and to constrain name matches.
	Implied   agents.AgentType
	Available Predicate

	// UseHome tries the agent's home before the implied-type fallback.
	UseHome bool
}

// Finder resolves queries against the committed population.
type Finder struct {
	pop *Population
	rng entropy.Source
}

// NewFinder creates a finder over pop.
func NewFinder(pop *Population, rng entropy.Source) *Finder {
	return &Finder{pop: pop, rng: rng}
}

// Resolve tries exact name, then typed random, then home, then implied-type
// random. It returns false when no strategy finds a candidate.
func (f *Finder) Resolve(q Query) (*agents.Agent, bool) {
	if q.Name != "" {
		if a, ok := f.ByName(q); ok {
			return a, true
		}
	}
	if q.Type != "" {
		if a, ok := f.RandomOfType(q, q.Type); ok {
			return a, true
		}
	}
	if q.UseHome && q.Self.Home != nil {
		if home, ok := f.pop.Get(*q.Self.Home); ok && f.eligible(q, home, q.Implied) {
			return home, true
		}
	}
	if q.Implied != "" {
		return f.RandomOfType(q, q.Implied)
	}
	return nil, false
}

// ByName returns the first live agent, in ID order, whose name matches
// exactly and that passes the type and availability checks.
func (f *Finder) ByName(q Query) (*agents.Agent, bool) {
	required := q.Type
	if required == "" {
		required = q.Implied
	}
	for _, a := range f.pop.Snapshot() {
		if a.Name == q.Name && f.eligible(q, a, required) {
			return a, true
		}
	}
	return nil, false
}

// RandomOfType picks uniformly among eligible live agents of type t.
func (f *Finder) RandomOfType(q Query, t agents.AgentType) (*agents.Agent, bool) {
	candidates := f.pop.Filter(func(a *agents.Agent) bool {
		return f.eligible(q, a, t)
	})
	return entropy.Pick(f.rng, candidates)
}

// Nearest returns the closest live agent to self satisfying pred within
// radius. A radius of 0 or less means unlimited. Ties go to the lower ID.
func (f *Finder) Nearest(self *agents.Agent, radius float64, pred Predicate) (*agents.Agent, bool) {
	var best *agents.Agent
	bestDist := math.Inf(1)
	for _, a := range f.pop.Snapshot() {
		if a.ID == self.ID || !a.Alive || (pred != nil && !pred(a)) {
			continue
		}
		d := world.Distance(self.Position, a.Position)
		if radius > 0 && d > radius {
			continue
		}
		if d < bestDist {
			best, bestDist = a, d
		}
	}
	return best, best != nil
}

func (f *Finder) eligible(q Query, a *agents.Agent, t agents.AgentType) bool {
	if !a.Alive || (q.Self != nil && a.ID == q.Self.ID) {
		return false
	}
	if t != "" && a.Type != t {
		return false
	}
	return q.Available == nil || q.Available(a)
}
