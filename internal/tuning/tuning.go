// Package tuning holds the flat table of named constants that parameterizes
// every behavior in the engine: delays, transfer amounts, prices, vitals,
// radii and regeneration schedules. Nothing in the engine hard-codes these.
package tuning

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid tuning")

type Tuning struct {
	TickDurationMs int `yaml:"tick_duration_ms"` // One simulation tick
	RuleIntervalMs int `yaml:"rule_interval_ms"` // Minimum gap between rule evaluations per agent
	ReportEvery    int `yaml:"report_every_ticks"`

	World    World    `yaml:"world"`
	Delays   Delays   `yaml:"delays_ms"`
	Amounts  Amounts  `yaml:"amounts"`
	Prices   Prices   `yaml:"prices"`
	Vitals   Vitals   `yaml:"vitals"`
	Movement Movement `yaml:"movement"`
	Chase    Chase    `yaml:"chase"`
	Repair   Repair   `yaml:"repair"`

	Regeneration []Regen `yaml:"regeneration"`

	// StartingLedgers seeds new agents by type name.
	StartingLedgers map[string]map[string]float64 `yaml:"starting_ledgers"`
}

// World bounds the patrol area and generated positions.
type World struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// Delays are per-action payload delays in milliseconds.
type Delays struct {
	Mining      int `yaml:"mining"`
	Trading     int `yaml:"trading"`
	Socializing int `yaml:"socializing"`
	Working     int `yaml:"working"`
	Resting     int `yaml:"resting"`
	Den         int `yaml:"den"`
	Patrol      int `yaml:"patrol"`
	Repair      int `yaml:"repair"`
}

// Amounts are canonical transfer quantities.
type Amounts struct {
	Mining           float64 `yaml:"mining"`
	BuyQuantity      float64 `yaml:"buy_quantity"`
	WorkWage         float64 `yaml:"work_wage"`
	PatrolEnergyCost float64 `yaml:"patrol_energy_cost"`
	RepairFee        float64 `yaml:"repair_fee"`
	StationStock     float64 `yaml:"station_stock"` // Initial stock of a station's own product
}

// Prices are per-unit prices.
type Prices struct {
	Ore      float64            `yaml:"ore"`
	Products map[string]float64 `yaml:"products"`
	Default  float64            `yaml:"default_product"`
}

// Vitals are the defaults agents reset to.
type Vitals struct {
	DefaultEnergy float64 `yaml:"default_energy"`
	MaxHealth     float64 `yaml:"max_health"`
}

// Movement configures travel speeds, in world units per second.
type Movement struct {
	ArriveRadius float64            `yaml:"arrive_radius"`
	DefaultSpeed float64            `yaml:"default_speed"`
	Speeds       map[string]float64 `yaml:"speeds"`
}

// Chase configures the pirate pursuit loop.
type Chase struct {
	DetectionRadius float64  `yaml:"detection_radius"`
	LoseRadius      float64  `yaml:"lose_radius"`
	DurationMs      int      `yaml:"duration_ms"`
	FireIntervalMs  int      `yaml:"fire_interval_ms"`
	LaserLifetimeMs int      `yaml:"laser_lifetime_ms"`
	StealRadius     float64  `yaml:"steal_radius"`
	StealGood       string   `yaml:"steal_good"`
	StealAmount     float64  `yaml:"steal_amount"`
	Speed           float64  `yaml:"speed"`
	FleeSpeed       float64  `yaml:"flee_speed"` // Idle prey drifts away at this speed; 0 disables
	Targets         []string `yaml:"targets"` // Agent types a pirate will chase
}

// Repair configures the mechanic's search.
type Repair struct {
	SearchRadius float64 `yaml:"search_radius"` // 0 means unlimited
}

// Regen describes one passive restock schedule. Exactly one of AgentType or
// AgentName selects the agents it applies to. Good "Product" means each
// agent's own product.
type Regen struct {
	AgentType      string  `yaml:"agent_type,omitempty"`
	AgentName      string  `yaml:"agent_name,omitempty"`
	Good           string  `yaml:"good"`
	MinThreshold   float64 `yaml:"min_threshold"`
	MaxThreshold   float64 `yaml:"max_threshold"`
	AmountPerCycle float64 `yaml:"amount_per_cycle"`
	RateMs         int     `yaml:"rate_ms"`
}

// Ms converts a millisecond count from the table to a duration.
func Ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// TickDuration is the simulated time one tick advances.
func (t Tuning) TickDuration() time.Duration { return Ms(t.TickDurationMs) }

// RuleInterval is the minimum gap between an agent's rule evaluations.
func (t Tuning) RuleInterval() time.Duration { return Ms(t.RuleIntervalMs) }

// SpeedFor returns the travel speed for an agent type.
func (t Tuning) SpeedFor(agentType string) float64 {
	if s, ok := t.Movement.Speeds[agentType]; ok && s > 0 {
		return s
	}
	return t.Movement.DefaultSpeed
}

// ProductPrice returns the per-unit price of a product.
func (t Tuning) ProductPrice(product string) float64 {
	if p, ok := t.Prices.Products[product]; ok {
		return p
	}
	return t.Prices.Default
}

// Load reads a YAML tuning file over the defaults and validates the result.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate checks the table for values the engine cannot run with.
func (t Tuning) Validate() error {
	if t.TickDurationMs <= 0 {
		return fmt.Errorf("%w: tick_duration_ms must be positive", ErrInvalid)
	}
	if t.RuleIntervalMs < 0 {
		return fmt.Errorf("%w: rule_interval_ms must not be negative", ErrInvalid)
	}
	if t.World.MaxX <= t.World.MinX || t.World.MaxY <= t.World.MinY {
		return fmt.Errorf("%w: world bounds are empty", ErrInvalid)
	}
	if t.Movement.DefaultSpeed <= 0 {
		return fmt.Errorf("%w: movement.default_speed must be positive", ErrInvalid)
	}
	if t.Chase.FleeSpeed < 0 || (t.Chase.FleeSpeed > 0 && t.Chase.FleeSpeed >= t.Chase.Speed) {
		return fmt.Errorf("%w: chase.flee_speed must be below chase.speed", ErrInvalid)
	}
	for i, r := range t.Regeneration {
		if r.RateMs <= 0 {
			return fmt.Errorf("%w: regeneration[%d]: rate_ms must be positive", ErrInvalid, i)
		}
		if r.MaxThreshold < r.MinThreshold {
			return fmt.Errorf("%w: regeneration[%d]: max_threshold below min_threshold", ErrInvalid, i)
		}
		if r.Good == "" {
			return fmt.Errorf("%w: regeneration[%d]: good is required", ErrInvalid, i)
		}
		if (r.AgentType == "") == (r.AgentName == "") {
			return fmt.Errorf("%w: regeneration[%d]: set exactly one of agent_type or agent_name", ErrInvalid, i)
		}
	}
	return nil
}
