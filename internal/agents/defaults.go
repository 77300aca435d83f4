package agents

// DefaultRules returns the stock rule list for an agent type. Types that do
// not act on their own (stations, asteroids, players) get none.
func DefaultRules(t AgentType) []Rule {
	switch t {
	case TypeMiner:
		return []Rule{
			NewRule(GoodHealth, OpLessEqual, 0, ActionSetBroken),
			NewRule(GoodEnergy, OpLess, 20, ActionRest).To("", TypeSpaceApartments),
			NewRule(GoodOre, OpGreaterEqual, 30, ActionSellOreToStation).To("", TypeSpaceStation),
			NewRule(GoodMoney, OpGreaterEqual, 60, ActionSocialize).To("", TypeSpaceBar),
			NewRule(GoodOre, OpLess, 30, ActionMineOre).To("", TypeAsteroid),
		}
	case TypeTrader:
		return []Rule{
			NewRule(GoodHealth, OpLessEqual, 0, ActionSetBroken),
			NewRule(GoodEnergy, OpLess, 20, ActionRest).To("", TypeSpaceApartments),
			NewRule(GoodProduct, OpGreater, 0, ActionSellProduct).To("", TypeSpaceStation),
			NewRule(GoodMoney, OpGreaterEqual, 10, ActionBuyProduct).To("", TypeSpaceStation),
			NewRule(GoodMoney, OpLess, 10, ActionWork).To("", TypeSpaceStation),
		}
	case TypePirate:
		return []Rule{
			NewRule(GoodHealth, OpLessEqual, 0, ActionSetBroken),
			NewRule(GoodEnergy, OpLess, 15, ActionGoToDen).To("", TypePirateDen),
			NewRule(GoodEnergy, OpGreaterEqual, 15, ActionChaseTarget),
			NewRule(GoodEnergy, OpGreaterEqual, 15, ActionPatrol),
		}
	case TypeMechanic:
		return []Rule{
			NewRule(GoodEnergy, OpLess, 20, ActionRest).To("", TypeSpaceApartments),
			NewRule(GoodEnergy, OpGreaterEqual, 0, ActionRepair),
			NewRule(GoodEnergy, OpGreaterEqual, 20, ActionPatrol),
		}
	}
	return nil
}
