// Trade executors: ore sales and product buying and selling at stations.
// Each is a two-good swap priced from the tuning table. Quantities are
// read at payload time, so a visit with nothing left to sell trades nothing.
package engine

import (
	"fmt"
	"time"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/economy"
	"github.com/talgya/starlane/internal/tuning"
)

func (s *Simulation) execSellOre(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	target, ok := s.Finder.Resolve(queryFor(a, r, agents.TypeSpaceStation, nil))
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      agents.ActionSellOreToStation,
		ActiveState: agents.StateTrading,
		Delay:       tuning.Ms(s.cfg.Delays.Trading),
		Payload: func(self, station *agents.Agent) {
			qty := self.Ledger.Get(agents.GoodOre)
			if qty <= 0 {
				return
			}
			s.swap(self, station, agents.GoodOre, qty)
		},
	}, now)
	return true
}

// productFor picks the product a trade rule is about: the rule's explicit
// product type, then the agent's own line. Empty means "whatever the
// station makes".
func productFor(a *agents.Agent, r agents.Rule) agents.Good {
	if r.Condition.ProductType != "" {
		return r.Condition.ProductType
	}
	return a.Produces
}

func (s *Simulation) execBuyProduct(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	want := productFor(a, r)
	inStock := func(st *agents.Agent) bool {
		if st.Produces == "" || (want != "" && st.Produces != want) {
			return false
		}
		return st.Ledger.Get(st.Produces) > 0
	}
	target, ok := s.Finder.Resolve(queryFor(a, r, agents.TypeSpaceStation, inStock))
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      agents.ActionBuyProduct,
		ActiveState: agents.StateTransacting,
		Delay:       tuning.Ms(s.cfg.Delays.Trading),
		Payload: func(self, station *agents.Agent) {
			product := station.Produces
			qty := min(s.cfg.Amounts.BuyQuantity, station.Ledger.Get(product))
			if qty <= 0 {
				return
			}
			s.swap(station, self, product, qty)
		},
	}, now)
	return true
}

func (s *Simulation) execSellProduct(a *agents.Agent, r agents.Rule, now time.Duration) bool {
	product := productFor(a, r)
	// Sell where the product is not made.
	buyer := func(st *agents.Agent) bool { return st.Produces != product }
	target, ok := s.Finder.Resolve(queryFor(a, r, agents.TypeSpaceStation, buyer))
	if !ok {
		return false
	}
	s.beginVisit(a, target, Visit{
		Action:      agents.ActionSellProduct,
		ActiveState: agents.StateTrading,
		Delay:       tuning.Ms(s.cfg.Delays.Trading),
		Payload: func(self, station *agents.Agent) {
			qty := self.Ledger.Get(product)
			if qty <= 0 {
				return
			}
			s.swap(self, station, product, qty)
		},
	}, now)
	return true
}

// swap moves qty of good from seller to buyer at list price and records it.
func (s *Simulation) swap(seller, buyer *agents.Agent, good agents.Good, qty float64) {
	price := s.Prices.Unit(good)
	economy.Swap(seller, buyer, good, qty, price)
	s.Tally.Record(good, qty, qty*price)
	s.EmitEvent(Event{
		Agent:       seller.ID,
		Description: fmt.Sprintf("%s sells %.0f %s to %s for %.0f", seller.Name, qty, good, buyer.Name, qty*price),
		Category:    "trade",
		Meta: map[string]any{
			"seller": seller.ID,
			"buyer":  buyer.ID,
			"good":   good,
			"qty":    qty,
			"price":  price,
		},
	})
}
