// Package economy provides pricing and two-party goods transfers between
// agents. Transfers are a sequence of single-agent ledger ops; they are not
// atomic across the pair.
package economy

import (
	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/tuning"
)

// PriceList resolves per-unit prices from the tuning table.
type PriceList struct {
	cfg tuning.Tuning
}

// NewPriceList creates a price list over cfg.
func NewPriceList(cfg tuning.Tuning) PriceList {
	return PriceList{cfg: cfg}
}

// Unit returns the price of one unit of good.
func (p PriceList) Unit(good agents.Good) float64 {
	if good == agents.GoodOre {
		return p.cfg.Prices.Ore
	}
	return p.cfg.ProductPrice(string(good))
}

// Transfer moves qty of good from one agent to another. The source is
// debited first; nothing guards the pair between the two calls.
func Transfer(from, to *agents.Agent, good agents.Good, qty float64) {
	from.Apply(agents.RemoveGood{Good: good, Qty: qty})
	to.Apply(agents.AddGood{Good: good, Qty: qty})
}

// Swap sells qty of good from seller to buyer at unitPrice: goods move one
// way and money the other.
func Swap(seller, buyer *agents.Agent, good agents.Good, qty, unitPrice float64) {
	Transfer(seller, buyer, good, qty)
	Transfer(buyer, seller, agents.GoodMoney, qty*unitPrice)
}

// Wealth values an agent's holdings: money plus ore and products at list price.
func (p PriceList) Wealth(a *agents.Agent) float64 {
	total := a.Ledger.Get(agents.GoodMoney)
	total += a.Ledger.Get(agents.GoodOre) * p.Unit(agents.GoodOre)
	for _, prod := range agents.Products {
		total += a.Ledger.Get(prod) * p.Unit(prod)
	}
	return total
}

// Tally counts completed trades by good.
type Tally struct {
	Trades int                     `json:"trades"`
	Volume map[agents.Good]float64 `json:"volume"`
	Value  float64                 `json:"value"`
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{Volume: make(map[agents.Good]float64)}
}

// Record adds one trade to the tally.
func (t *Tally) Record(good agents.Good, qty, value float64) {
	t.Trades++
	t.Volume[good] += qty
	t.Value += value
}

// MostTraded returns the good with the highest volume, or "" if none.
func (t *Tally) MostTraded() agents.Good {
	var best agents.Good
	bestVol := 0.0
	for g, v := range t.Volume {
		if v > bestVol || (v == bestVol && v > 0 && g < best) {
			best, bestVol = g, v
		}
	}
	return best
}
