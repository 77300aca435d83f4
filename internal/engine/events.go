package engine

import (
	"time"

	"github.com/talgya/starlane/internal/agents"
)

// MaxEvents bounds the in-memory event log.
const MaxEvents = 1000

// subscriberBuffer is the per-subscriber channel depth. Slow subscribers
// drop events rather than stall the tick.
const subscriberBuffer = 64

// Event is a notable occurrence in the sector.
type Event struct {
	Tick        uint64         `json:"tick"`
	At          time.Duration  `json:"at"`
	Agent       agents.AgentID `json:"agent,omitempty"`
	Description string         `json:"description"`
	Category    string         `json:"category"` // "action", "trade", "mining", "chase", "combat", "repair", "broken", "fault", "lifecycle"
	Meta        map[string]any `json:"meta,omitempty"`
}

// EmitEvent appends e to the log and fans it out to subscribers.
// Callers must hold the simulation lock.
func (s *Simulation) EmitEvent(e Event) {
	if e.Tick == 0 {
		e.Tick = s.LastTick
	}
	if e.At == 0 {
		e.At = s.Now
	}
	s.events = append(s.events, e)
	if len(s.events) > MaxEvents {
		s.events = s.events[len(s.events)-MaxEvents:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
	s.pending = append(s.pending, e)
	if len(s.pending) > MaxEvents {
		s.pending = s.pending[len(s.pending)-MaxEvents:]
	}
}

// Subscribe returns a channel receiving every future event and a function
// that cancels the subscription.
func (s *Simulation) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// RecentEvents returns up to n of the newest events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	out := make([]Event, n)
	copy(out, s.events[len(s.events)-n:])
	return out
}

// DrainPending returns events emitted since the last drain. The persistence
// layer flushes these on autosave.
func (s *Simulation) DrainPending() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}
