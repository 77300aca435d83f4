// Package engine provides the tick-based behavior engine: the population
// arena, target finder, visit sequencer, action executors, regeneration and
// the per-agent rule scheduler, plus the loop that drives them.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Engine drives the simulation forward.
type Engine struct {
	mu       sync.Mutex
	tick     uint64        // Current tick counter (monotonic, never resets)
	speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Wall-clock duration of one tick at speed 1

	// ReportEvery is the tick period of OnReport; 0 disables it.
	ReportEvery uint64

	// Callbacks populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnReport func(tick uint64) // Every ReportEvery ticks
}

// NewEngine creates an engine that ticks every interval at speed 1.
func NewEngine(interval time.Duration) *Engine {
	return &Engine{
		speed:    1.0,
		Interval: interval,
	}
}

// Tick returns the last tick run.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// SetTick resumes counting from tick (used when restoring from the DB).
func (e *Engine) SetTick(tick uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick = tick
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. 0 pauses.
func (e *Engine) SetSpeed(speed float64) error {
	if speed < 0 {
		return fmt.Errorf("speed %v: must not be negative", speed)
	}
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("engine speed changed", "speed", speed)
	return nil
}

// Run starts the simulation loop. Blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("simulation engine started", "tick", e.Tick(), "speed", e.Speed())

	for {
		if ctx.Err() != nil {
			break
		}
		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			if !sleepCtx(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target && !sleepCtx(ctx, target-elapsed) {
			break
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick())
}

// Step advances the engine by one tick and runs the callbacks.
func (e *Engine) Step() {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
	}
	if e.ReportEvery > 0 && tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(tick)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// SimTime formats the simulation clock at tick as elapsed hours, minutes
// and seconds.
func SimTime(tick uint64, tickDuration time.Duration) string {
	total := time.Duration(tick) * tickDuration
	h := int(total.Hours())
	m := int(total.Minutes()) % 60
	sec := total.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("T+%d:%02d:%04.1f", h, m, sec)
}
