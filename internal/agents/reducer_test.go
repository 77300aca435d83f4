package agents

import "testing"

func TestReduceStateTransitions(t *testing.T) {
	target := AgentID(7)
	cases := []struct {
		name string
		op   Op
		want StateKind
		tgt  bool
	}{
		{"idle", SetIdle{}, StateIdle, false},
		{"traveling", SetTraveling{Target: target}, StateTraveling, true},
		{"mining", SetActiveState{Kind: StateMining, Target: &target}, StateMining, true},
		{"patrolling", SetActiveState{Kind: StatePatrolling}, StatePatrolling, false},
		{"broken", SetBroken{}, StateBroken, false},
		{"set state", SetState{State: State{Kind: StateChasing, Target: &target}}, StateChasing, true},
	}

	for _, tc := range cases {
		start := Snapshot{Ledger: Ledger{GoodOre: 1}, State: State{Kind: StateWorking, Target: &target}}
		got := Reduce(start, tc.op)
		if got.State.Kind != tc.want {
			t.Fatalf("%s: kind=%s want %s", tc.name, got.State.Kind, tc.want)
		}
		id, ok := got.State.TargetID()
		if ok != tc.tgt {
			t.Fatalf("%s: target present=%v want %v", tc.name, ok, tc.tgt)
		}
		if ok && id != target {
			t.Fatalf("%s: target=%d", tc.name, id)
		}
		if got.Ledger.Get(GoodOre) != 1 {
			t.Fatalf("%s: state op touched the ledger", tc.name)
		}
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	target := AgentID(3)
	start := Snapshot{Ledger: Ledger{GoodMoney: 10}, State: Idle()}

	_ = Reduce(start, AddGood{Good: GoodMoney, Qty: 5})
	_ = Reduce(start, RemoveGood{Good: GoodMoney, Qty: 5})
	_ = Reduce(start, SetGood{Good: GoodOre, Qty: 9})
	_ = Reduce(start, SetTraveling{Target: target})

	if start.Ledger.Get(GoodMoney) != 10 || start.Ledger.Get(GoodOre) != 0 {
		t.Fatalf("input ledger mutated: %+v", start.Ledger)
	}
	if start.State.Kind != StateIdle {
		t.Fatalf("input state mutated: %v", start.State)
	}
}

func TestReduceTargetIsCopied(t *testing.T) {
	target := AgentID(3)
	got := Reduce(Snapshot{}, SetActiveState{Kind: StateTrading, Target: &target})
	target = 99
	if id, _ := got.State.TargetID(); id != 3 {
		t.Fatalf("state aliases caller's pointer: target=%d", id)
	}
}

func TestReduceClampsHealthLikeLedger(t *testing.T) {
	ops := []Op{
		RemoveGood{Good: GoodHealth, Qty: 500},
		SetGood{Good: GoodHealth, Qty: -2},
		AddGood{Good: GoodHealth, Qty: -9},
	}
	for _, op := range ops {
		viaReducer := Reduce(Snapshot{Ledger: Ledger{GoodHealth: 4}}, op)
		direct := Ledger{GoodHealth: 4}
		switch o := op.(type) {
		case RemoveGood:
			direct.Remove(o.Good, o.Qty)
		case SetGood:
			direct.Set(o.Good, o.Qty)
		case AddGood:
			direct.Add(o.Good, o.Qty)
		}
		if viaReducer.Ledger.Get(GoodHealth) != direct.Get(GoodHealth) {
			t.Fatalf("%T: reducer=%v ledger=%v", op, viaReducer.Ledger.Get(GoodHealth), direct.Get(GoodHealth))
		}
		if viaReducer.Ledger.Get(GoodHealth) < 0 {
			t.Fatalf("%T: health negative", op)
		}
	}
}

func TestReduceNilLedger(t *testing.T) {
	got := Reduce(Snapshot{}, AddGood{Good: GoodOre, Qty: 2})
	if got.Ledger.Get(GoodOre) != 2 {
		t.Fatalf("ore=%v", got.Ledger.Get(GoodOre))
	}
}

func TestAgentApply(t *testing.T) {
	a := &Agent{Ledger: Ledger{}, State: Idle()}
	a.Apply(SetGood{Good: GoodEnergy, Qty: 40})
	a.Apply(SetBroken{})
	if a.Ledger.Get(GoodEnergy) != 40 || a.State.Kind != StateBroken {
		t.Fatalf("apply: ledger=%v state=%v", a.Ledger, a.State)
	}
}
