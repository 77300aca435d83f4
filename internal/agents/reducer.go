package agents

// Snapshot is the reducer's view of one agent: its ledger and state.
type Snapshot struct {
	Ledger Ledger
	State  State
}

// Op is a state or ledger transition. The set of ops is closed.
type Op interface {
	isOp()
}

type (
	// SetState replaces the state wholesale.
	SetState struct{ State State }
	// SetIdle returns the agent to Idle with no target.
	SetIdle struct{}
	// SetTraveling moves the agent into Traveling(target).
	SetTraveling struct{ Target AgentID }
	// SetActiveState enters an activity state. Target is nil for Patrolling.
	SetActiveState struct {
		Kind   StateKind
		Target *AgentID
	}
	// SetBroken moves the agent into the terminal-until-repaired Broken state.
	SetBroken struct{}
	AddGood   struct {
		Good Good
		Qty  float64
	}
	RemoveGood struct {
		Good Good
		Qty  float64
	}
	SetGood struct {
		Good Good
		Qty  float64
	}
)

func (SetState) isOp()       {}
func (SetIdle) isOp()        {}
func (SetTraveling) isOp()   {}
func (SetActiveState) isOp() {}
func (SetBroken) isOp()      {}
func (AddGood) isOp()        {}
func (RemoveGood) isOp()     {}
func (SetGood) isOp()        {}

// Reduce returns the snapshot that results from applying op to s.
// It never mutates s: ledger ops work on a clone.
func Reduce(s Snapshot, op Op) Snapshot {
	switch o := op.(type) {
	case SetState:
		s.State = State{Kind: o.State.Kind, Target: copyID(o.State.Target)}
	case SetIdle:
		s.State = Idle()
	case SetTraveling:
		s.State = State{Kind: StateTraveling, Target: copyID(&o.Target)}
	case SetActiveState:
		s.State = State{Kind: o.Kind, Target: copyID(o.Target)}
	case SetBroken:
		s.State = State{Kind: StateBroken}
	case AddGood:
		s.Ledger = cloneLedger(s.Ledger)
		s.Ledger.Add(o.Good, o.Qty)
	case RemoveGood:
		s.Ledger = cloneLedger(s.Ledger)
		s.Ledger.Remove(o.Good, o.Qty)
	case SetGood:
		s.Ledger = cloneLedger(s.Ledger)
		s.Ledger.Set(o.Good, o.Qty)
	}
	return s
}

func cloneLedger(l Ledger) Ledger {
	if l == nil {
		return make(Ledger)
	}
	return l.Clone()
}

func copyID(id *AgentID) *AgentID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
