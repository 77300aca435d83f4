package economy

import (
	"testing"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/tuning"
)

func newAgent(l agents.Ledger) *agents.Agent {
	return &agents.Agent{Ledger: l, State: agents.Idle()}
}

func TestTransferConservesQuantity(t *testing.T) {
	a := newAgent(agents.Ledger{agents.GoodOre: 10})
	b := newAgent(agents.Ledger{})
	Transfer(a, b, agents.GoodOre, 4)
	if a.Ledger.Get(agents.GoodOre) != 6 || b.Ledger.Get(agents.GoodOre) != 4 {
		t.Fatalf("a=%v b=%v", a.Ledger, b.Ledger)
	}
}

func TestTransferAllowsOverdraft(t *testing.T) {
	a := newAgent(agents.Ledger{agents.GoodMoney: 5})
	b := newAgent(agents.Ledger{})
	Transfer(a, b, agents.GoodMoney, 8)
	if a.Ledger.Get(agents.GoodMoney) != -3 {
		t.Fatalf("money=%v", a.Ledger.Get(agents.GoodMoney))
	}
}

func TestSwap(t *testing.T) {
	station := newAgent(agents.Ledger{agents.GoodFuel: 5, agents.GoodMoney: 100})
	trader := newAgent(agents.Ledger{agents.GoodMoney: 50})
	Swap(station, trader, agents.GoodFuel, 2, 20)

	if trader.Ledger.Get(agents.GoodFuel) != 2 || trader.Ledger.Get(agents.GoodMoney) != 10 {
		t.Fatalf("trader=%v", trader.Ledger)
	}
	if station.Ledger.Get(agents.GoodFuel) != 3 || station.Ledger.Get(agents.GoodMoney) != 140 {
		t.Fatalf("station=%v", station.Ledger)
	}
}

func TestPriceList(t *testing.T) {
	cfg := tuning.Default()
	p := NewPriceList(cfg)
	if p.Unit(agents.GoodOre) != cfg.Prices.Ore {
		t.Fatalf("ore price=%v", p.Unit(agents.GoodOre))
	}
	if p.Unit(agents.GoodTech) != cfg.Prices.Products["Tech"] {
		t.Fatalf("tech price=%v", p.Unit(agents.GoodTech))
	}
	if p.Unit(agents.Good("Spice")) != cfg.Prices.Default {
		t.Fatalf("unknown product should use default price")
	}
	a := newAgent(agents.Ledger{agents.GoodMoney: 10, agents.GoodOre: 2})
	if w := p.Wealth(a); w != 10+2*cfg.Prices.Ore {
		t.Fatalf("wealth=%v", w)
	}
}

func TestTally(t *testing.T) {
	tl := NewTally()
	if tl.MostTraded() != "" {
		t.Fatalf("empty tally has a most traded good")
	}
	tl.Record(agents.GoodOre, 10, 50)
	tl.Record(agents.GoodFuel, 1, 20)
	tl.Record(agents.GoodOre, 5, 25)
	if tl.Trades != 3 || tl.Value != 95 || tl.MostTraded() != agents.GoodOre {
		t.Fatalf("tally=%+v most=%s", tl, tl.MostTraded())
	}
}
