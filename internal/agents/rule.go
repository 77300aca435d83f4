// Rule evaluation: one threshold comparison per rule, evaluated top to bottom
// against the agent's own ledger each decision cycle.
package agents

import (
	"fmt"

	"github.com/google/uuid"
)

// ActionKind enumerates what a rule does when it fires. The set is closed;
// the engine's dispatcher switches over every kind.
type ActionKind string

const (
	ActionMineOre          ActionKind = "MineOre"
	ActionSellOreToStation ActionKind = "SellOreToStation"
	ActionBuyProduct       ActionKind = "BuyProduct"
	ActionSellProduct      ActionKind = "SellProduct"
	ActionSocialize        ActionKind = "Socialize"
	ActionWork             ActionKind = "Work"
	ActionRest             ActionKind = "Rest"
	ActionPatrol           ActionKind = "Patrol"
	ActionGoToDen          ActionKind = "GoToDen"
	ActionChaseTarget      ActionKind = "ChaseTarget"
	ActionSetBroken        ActionKind = "SetBroken"
	ActionRepair           ActionKind = "Repair" // Mechanics only
)

// AllActions lists the closed set of action kinds.
var AllActions = []ActionKind{
	ActionMineOre, ActionSellOreToStation, ActionBuyProduct, ActionSellProduct,
	ActionSocialize, ActionWork, ActionRest, ActionPatrol, ActionGoToDen,
	ActionChaseTarget, ActionSetBroken, ActionRepair,
}

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	for _, known := range AllActions {
		if k == known {
			return true
		}
	}
	return false
}

// Operator is a comparison from the recognized set.
type Operator string

const (
	OpEqual        Operator = "="
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
)

// Condition compares one good against a threshold.
type Condition struct {
	Good      Good     `json:"good"`
	Operator  Operator `json:"operator"`
	Threshold float64  `json:"threshold"`

	// ProductType overrides product resolution when Good is GoodProduct.
	ProductType Good `json:"product_type,omitempty"`
}

// Destination carries optional target hints for a rule.
type Destination struct {
	Name string    `json:"name,omitempty"`
	Type AgentType `json:"type,omitempty"`
}

// Rule is a condition/action pair.
type Rule struct {
	ID          string      `json:"id"`
	Condition   Condition   `json:"condition"`
	Action      ActionKind  `json:"action"`
	Destination Destination `json:"destination"`
	Required    bool        `json:"required,omitempty"`
}

// NewRuleID returns a fresh rule identifier.
func NewRuleID() string {
	return uuid.NewString()
}

// NewRule builds a rule with a fresh ID.
func NewRule(good Good, op Operator, threshold float64, action ActionKind) Rule {
	return Rule{
		ID:        NewRuleID(),
		Condition: Condition{Good: good, Operator: op, Threshold: threshold},
		Action:    action,
	}
}

// To sets destination hints and returns the rule.
func (r Rule) To(name string, t AgentType) Rule {
	r.Destination = Destination{Name: name, Type: t}
	return r
}

// Validate checks the rule's identifiers. Unknown operators are not an error
// here: they evaluate to false.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule has no id")
	}
	if !r.Action.Valid() {
		return fmt.Errorf("rule %s: unknown action %q", r.ID, r.Action)
	}
	if r.Destination.Type != "" && !r.Destination.Type.Valid() {
		return fmt.Errorf("rule %s: unknown destination type %q", r.ID, r.Destination.Type)
	}
	return nil
}

// Evaluate applies the rule's operator to observed and its threshold.
// An unrecognized operator evaluates to false.
func Evaluate(r Rule, observed float64) bool {
	t := r.Condition.Threshold
	switch r.Condition.Operator {
	case OpEqual:
		return observed == t
	case OpLess:
		return observed < t
	case OpGreater:
		return observed > t
	case OpLessEqual:
		return observed <= t
	case OpGreaterEqual:
		return observed >= t
	default:
		return false
	}
}

// ResolveGood returns the concrete good a condition reads for agent a.
// The generic product class resolves to the rule's override, then the
// agent's own product, then stays literal.
func ResolveGood(a *Agent, c Condition) Good {
	if c.Good != GoodProduct {
		return c.Good
	}
	if c.ProductType != "" {
		return c.ProductType
	}
	if a.Produces != "" {
		return a.Produces
	}
	return c.Good
}

// ObservedValue looks up the resolved good of c in a's ledger.
func ObservedValue(a *Agent, c Condition) float64 {
	return a.Ledger.Get(ResolveGood(a, c))
}

// Matches reports whether r's condition holds for a right now.
func Matches(a *Agent, r Rule) bool {
	return Evaluate(r, ObservedValue(a, r.Condition))
}
