package tuning

// Default returns the complete constant table used when no file overrides it.
// configs/tuning.yaml mirrors these values.
func Default() Tuning {
	return Tuning{
		TickDurationMs: 100,
		RuleIntervalMs: 500,
		ReportEvery:    600,

		World: World{MinX: 0, MinY: 0, MaxX: 2000, MaxY: 2000},

		Delays: Delays{
			Mining:      3000,
			Trading:     2000,
			Socializing: 4000,
			Working:     5000,
			Resting:     6000,
			Den:         5000,
			Patrol:      1000,
			Repair:      3000,
		},

		Amounts: Amounts{
			Mining:           10,
			BuyQuantity:      1,
			WorkWage:         25,
			PatrolEnergyCost: 10,
			RepairFee:        50,
			StationStock:     20,
		},

		Prices: Prices{
			Ore: 5,
			Products: map[string]float64{
				"Fuel":     20,
				"Food":     10,
				"Medicine": 30,
				"Tech":     50,
			},
			Default: 15,
		},

		Vitals: Vitals{DefaultEnergy: 100, MaxHealth: 100},

		Movement: Movement{
			ArriveRadius: 8,
			DefaultSpeed: 80,
			Speeds: map[string]float64{
				"Miner":    90,
				"Trader":   110,
				"Pirate":   120,
				"Mechanic": 100,
			},
		},

		Chase: Chase{
			DetectionRadius: 300,
			LoseRadius:      600,
			DurationMs:      15000,
			FireIntervalMs:  1000,
			LaserLifetimeMs: 800,
			StealRadius:     30,
			StealGood:       "Ore",
			StealAmount:     10,
			Speed:           140,
			FleeSpeed:       80,
			Targets:         []string{"Miner", "Trader"},
		},

		Repair: Repair{SearchRadius: 0},

		Regeneration: []Regen{
			{AgentType: "Asteroid", Good: "Ore", MinThreshold: 10, MaxThreshold: 50, AmountPerCycle: 5, RateMs: 1000},
			{AgentType: "SpaceStation", Good: "Product", MinThreshold: 5, MaxThreshold: 20, AmountPerCycle: 1, RateMs: 3000},
			{AgentType: "SpaceBar", Good: "Money", MinThreshold: 20, MaxThreshold: 100, AmountPerCycle: 10, RateMs: 5000},
		},

		StartingLedgers: map[string]map[string]float64{
			"Miner":           {"Money": 20, "Energy": 100, "Health": 100},
			"Trader":          {"Money": 100, "Energy": 100, "Health": 100},
			"Pirate":          {"Money": 0, "Energy": 100, "Health": 100},
			"Mechanic":        {"Money": 10, "Energy": 100, "Health": 100},
			"SpaceStation":    {"Money": 1000, "Ore": 0},
			"SpaceBar":        {"Money": 50},
			"SpaceApartments": {},
			"Asteroid":        {"Ore": 50},
			"PirateDen":       {"Treasure": 0},
			"Player":          {"Money": 100, "Energy": 100, "Health": 100},
		},
	}
}
