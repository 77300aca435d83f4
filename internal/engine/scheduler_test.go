package engine

import (
	"context"
	"errors"
	"maps"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
)

func TestEveryActionHasExecutor(t *testing.T) {
	for _, k := range agents.AllActions {
		if _, ok := executorFor(k); !ok {
			t.Errorf("no executor for %s", k)
		}
	}
	if _, ok := executorFor("Teleport"); ok {
		t.Errorf("unknown action has an executor")
	}
}

func TestFirstStartableRuleWins(t *testing.T) {
	mine := agents.NewRule(agents.GoodOre, agents.OpLess, 30, agents.ActionMineOre)
	work := agents.NewRule(agents.GoodMoney, agents.OpLess, 10, agents.ActionWork)
	social := agents.NewRule(agents.GoodMoney, agents.OpLess, 10, agents.ActionSocialize)
	trader := newAgent(1, agents.TypeTrader, "Bram Quill", orb.Point{}, agents.Ledger{agents.GoodEnergy: 50}, mine, work, social)
	st := newAgent(2, agents.TypeSpaceStation, "Tycho Station", orb.Point{}, agents.Ledger{agents.GoodMoney: 100})
	bar := newAgent(3, agents.TypeSpaceBar, "Nova Bar", orb.Point{}, nil)
	f := newFixture(testConfig(), trader, st, bar)

	f.fire(t, trader)
	if trader.Task.Action != agents.ActionWork || trader.ActiveRule != work.ID {
		t.Fatalf("fired %s (rule %s)", trader.Task.Action, trader.ActiveRule)
	}
	if n := agents.CountOutcomes(trader)["started"]; n != 1 {
		t.Fatalf("%d actions started in one tick", n)
	}
}

func TestBusyAgentSkipsEvaluation(t *testing.T) {
	rule := agents.NewRule(agents.GoodEnergy, agents.OpLess, 20, agents.ActionRest)
	miner := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, agents.Ledger{agents.GoodEnergy: 5}, rule)
	flat := newAgent(2, agents.TypeSpaceApartments, "Ironhaven Apartments", orb.Point{}, nil)
	f := newFixture(testConfig(), miner, flat)

	f.fire(t, miner)
	evaluated := miner.LastRuleEval
	for i := 0; i < 20; i++ {
		f.step()
	}
	if miner.Task == nil {
		t.Fatalf("rest finished early")
	}
	if miner.LastRuleEval != evaluated {
		t.Fatalf("rules evaluated while busy: %v then %v", evaluated, miner.LastRuleEval)
	}
}

func TestRuleIntervalThrottlesEvaluation(t *testing.T) {
	cfg := testConfig()
	rule := agents.NewRule(agents.GoodOre, agents.OpLess, 30, agents.ActionMineOre)
	miner := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil, rule)
	f := newFixture(cfg, miner)

	f.step()
	first := miner.LastRuleEval
	if first != cfg.TickDuration() {
		t.Fatalf("first evaluation at %v", first)
	}
	ticksPerDecision := int(cfg.RuleInterval() / cfg.TickDuration())
	for i := 1; i < ticksPerDecision; i++ {
		f.step()
		if miner.LastRuleEval != first {
			t.Fatalf("evaluated again after %d ticks", i)
		}
	}
	f.step()
	if miner.LastRuleEval != first+cfg.RuleInterval() {
		t.Fatalf("second evaluation at %v", miner.LastRuleEval)
	}
}

func TestFalseConditionLeavesAgentUntouched(t *testing.T) {
	rule := agents.NewRule(agents.GoodOre, agents.OpGreater, 100, agents.ActionSellOreToStation)
	miner := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{5, 5}, agents.Ledger{agents.GoodOre: 40, agents.GoodMoney: 3}, rule)
	st := newAgent(2, agents.TypeSpaceStation, "Tycho Station", orb.Point{}, nil)
	f := newFixture(testConfig(), miner, st)
	before := maps.Clone(miner.Ledger)

	for i := 0; i < 10; i++ {
		f.step()
	}
	if !maps.Equal(before, miner.Ledger) {
		t.Fatalf("ledger changed: %v -> %v", before, miner.Ledger)
	}
	if miner.Task != nil || miner.State.Kind != agents.StateIdle || miner.ActiveRule != "" {
		t.Fatalf("agent mutated: state=%v rule=%q", miner.State, miner.ActiveRule)
	}
	if miner.Position != (orb.Point{5, 5}) || len(miner.History) != 0 {
		t.Fatalf("agent moved or acted")
	}
}

type panicMover struct{}

func (panicMover) MoveToward(*agents.Agent, orb.Point, float64, time.Duration) bool {
	panic("thruster fault")
}

func TestPanicIsContainedToOneAgent(t *testing.T) {
	mine := agents.NewRule(agents.GoodOre, agents.OpLess, 30, agents.ActionMineOre)
	faulty := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil, mine)
	rock := newAgent(2, agents.TypeAsteroid, "Ceres-001", orb.Point{50, 0}, agents.Ledger{agents.GoodOre: 50})
	work := agents.NewRule(agents.GoodMoney, agents.OpLess, 10, agents.ActionWork)
	worker := newAgent(3, agents.TypeTrader, "Bram Quill", orb.Point{}, nil, work)
	st := newAgent(4, agents.TypeSpaceStation, "Tycho Station", orb.Point{}, agents.Ledger{agents.GoodMoney: 100})
	f := newFixture(testConfig(), faulty, rock, worker, st)
	f.sim.Mover = panicMover{}

	f.step()
	if faulty.Task == nil || worker.Task == nil {
		t.Fatalf("both agents should have started")
	}
	f.step()

	faults := 0
	for _, e := range f.sim.RecentEvents(0) {
		if e.Category == "fault" {
			faults++
		}
	}
	if faults != 2 {
		t.Fatalf("fault events=%d", faults)
	}
	if f.sim.CurrentTick() != 2 || !faulty.Alive {
		t.Fatalf("simulation did not carry on")
	}
}

func TestSetRules(t *testing.T) {
	miner := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, nil)
	f := newFixture(testConfig(), miner)

	if err := f.sim.SetRules(99, nil); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("unknown agent err=%v", err)
	}
	bad := agents.NewRule(agents.GoodOre, agents.OpLess, 1, "Teleport")
	if err := f.sim.SetRules(miner.ID, []agents.Rule{bad}); err == nil {
		t.Fatalf("invalid rule accepted")
	}

	rules := agents.DefaultRules(agents.TypeMiner)
	if err := f.sim.SetRules(miner.ID, rules); err != nil {
		t.Fatalf("set rules: %v", err)
	}
	rules[0].Action = agents.ActionPatrol
	if miner.Rules[0].Action != agents.ActionSetBroken {
		t.Fatalf("rules not copied")
	}

	v, err := f.sim.View(miner.ID)
	if err != nil || len(v.Rules) != len(rules) {
		t.Fatalf("view rules=%d err=%v", len(v.Rules), err)
	}
}

func TestApplyDamageDisablesShip(t *testing.T) {
	miner := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, agents.Ledger{agents.GoodHealth: 100, agents.GoodEnergy: 100}, agents.DefaultRules(agents.TypeMiner)...)
	rock := newAgent(2, agents.TypeAsteroid, "Ceres-001", orb.Point{}, agents.Ledger{agents.GoodOre: 50})
	f := newFixture(testConfig(), miner, rock)

	f.fire(t, miner)
	if err := f.sim.ApplyDamage(miner.ID, -1, "test"); err == nil {
		t.Fatalf("negative damage accepted")
	}
	if err := f.sim.ApplyDamage(42, 10, "test"); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("unknown agent err=%v", err)
	}
	if err := f.sim.ApplyDamage(miner.ID, 30, "Kit Rook"); err != nil {
		t.Fatalf("damage: %v", err)
	}
	if miner.Ledger.Get(agents.GoodHealth) != 70 || miner.Task == nil {
		t.Fatalf("light damage: health=%v task=%v", miner.Ledger.Get(agents.GoodHealth), miner.Task)
	}

	if err := f.sim.ApplyDamage(miner.ID, 500, "Kit Rook"); err != nil {
		t.Fatalf("damage: %v", err)
	}
	if miner.Ledger.Get(agents.GoodHealth) != 0 || miner.Task != nil {
		t.Fatalf("heavy damage: health=%v task=%v", miner.Ledger.Get(agents.GoodHealth), miner.Task)
	}
	f.step()
	if miner.State.Kind != agents.StateBroken {
		t.Fatalf("state=%v", miner.State)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	miner := newAgent(1, agents.TypeMiner, "Ada Voss", orb.Point{}, agents.Ledger{agents.GoodHealth: 100})
	f := newFixture(testConfig(), miner)
	ch, cancel := f.sim.Subscribe()

	if err := f.sim.ApplyDamage(miner.ID, 5, "debris"); err != nil {
		t.Fatalf("damage: %v", err)
	}
	select {
	case e := <-ch:
		if e.Category != "combat" || e.Agent != miner.ID {
			t.Fatalf("event=%+v", e)
		}
	default:
		t.Fatalf("no event delivered")
	}

	cancel()
	if _, open := <-ch; open {
		t.Fatalf("channel still open after cancel")
	}
	if n := len(f.sim.DrainPending()); n != 1 {
		t.Fatalf("pending=%d", n)
	}
	if n := len(f.sim.DrainPending()); n != 0 {
		t.Fatalf("pending after drain=%d", n)
	}
}

func TestEngineCallbacks(t *testing.T) {
	e := NewEngine(time.Millisecond)
	e.ReportEvery = 3
	var ticks, reports []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnReport = func(tick uint64) { reports = append(reports, tick) }

	for i := 0; i < 7; i++ {
		e.Step()
	}
	if len(ticks) != 7 || ticks[6] != 7 {
		t.Fatalf("ticks=%v", ticks)
	}
	if len(reports) != 2 || reports[0] != 3 || reports[1] != 6 {
		t.Fatalf("reports=%v", reports)
	}
	if err := e.SetSpeed(-1); err == nil {
		t.Fatalf("negative speed accepted")
	}
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	e := NewEngine(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	e.OnTick = func(tick uint64) {
		if tick == 5 {
			cancel()
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if e.Tick() != 5 {
		t.Fatalf("tick=%d", e.Tick())
	}
}

func TestSimTime(t *testing.T) {
	if got := SimTime(36000, 100*time.Millisecond); got != "T+1:00:00.0" {
		t.Fatalf("got %q", got)
	}
	if got := SimTime(615, 100*time.Millisecond); got != "T+0:01:01.5" {
		t.Fatalf("got %q", got)
	}
}
