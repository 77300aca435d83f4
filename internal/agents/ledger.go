package agents

// Good identifies a resource, product, or vital stat tracked per agent.
type Good string

const (
	GoodOre      Good = "Ore"
	GoodMoney    Good = "Money"
	GoodTreasure Good = "Treasure"
	GoodHealth   Good = "Health"
	GoodEnergy   Good = "Energy"

	// GoodProduct is the generic product class. Rules written against it
	// resolve to a concrete product at evaluation time.
	GoodProduct Good = "Product"

	GoodFuel     Good = "Fuel"
	GoodFood     Good = "Food"
	GoodMedicine Good = "Medicine"
	GoodTech     Good = "Tech"
)

// Products lists the concrete tradable products.
var Products = []Good{GoodFuel, GoodFood, GoodMedicine, GoodTech}

// IsProduct reports whether g is a concrete tradable product.
func (g Good) IsProduct() bool {
	for _, p := range Products {
		if g == p {
			return true
		}
	}
	return false
}

// Ledger maps goods to quantities. Missing entries read as zero.
//
// Only Health is clamped (never below zero). Every other good may go
// negative: there is no overdraft protection.
type Ledger map[Good]float64

// Get returns the quantity of good, defaulting to 0.
func (l Ledger) Get(good Good) float64 {
	return l[good]
}

// Add increases good by qty.
func (l Ledger) Add(good Good, qty float64) {
	l[good] = clampGood(good, l[good]+qty)
}

// Remove decreases good by qty.
func (l Ledger) Remove(good Good, qty float64) {
	l[good] = clampGood(good, l[good]-qty)
}

// Set overwrites good with qty.
func (l Ledger) Set(good Good, qty float64) {
	l[good] = clampGood(good, qty)
}

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for g, q := range l {
		out[g] = q
	}
	return out
}

// clampGood is shared by the ledger and the reducer.
func clampGood(good Good, qty float64) float64 {
	if good == GoodHealth && qty < 0 {
		return 0
	}
	return qty
}
