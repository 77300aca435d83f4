package agents

import "testing"

func TestLedgerMissingGoodReadsZero(t *testing.T) {
	l := Ledger{}
	if got := l.Get(GoodOre); got != 0 {
		t.Fatalf("Get(Ore)=%v", got)
	}
}

func TestLedgerHealthNeverNegative(t *testing.T) {
	l := Ledger{GoodHealth: 10}
	steps := []func(){
		func() { l.Remove(GoodHealth, 25) },
		func() { l.Add(GoodHealth, 3) },
		func() { l.Set(GoodHealth, -7) },
		func() { l.Add(GoodHealth, -100) },
		func() { l.Remove(GoodHealth, 1) },
	}
	for i, step := range steps {
		step()
		if l.Get(GoodHealth) < 0 {
			t.Fatalf("step %d: health=%v", i, l.Get(GoodHealth))
		}
	}
}

func TestLedgerOtherGoodsMayGoNegative(t *testing.T) {
	l := Ledger{GoodMoney: 5}
	l.Remove(GoodMoney, 20)
	if got := l.Get(GoodMoney); got != -15 {
		t.Fatalf("money=%v, want -15 (no overdraft protection)", got)
	}
}

func TestLedgerSetRoundTrip(t *testing.T) {
	cases := []struct {
		good Good
		qty  float64
		want float64
	}{
		{GoodOre, 42, 42},
		{GoodMoney, -3, -3},
		{GoodHealth, 70, 70},
		{GoodHealth, -1, 0},
	}
	for _, tc := range cases {
		l := Ledger{}
		l.Set(tc.good, tc.qty)
		if got := l.Get(tc.good); got != tc.want {
			t.Fatalf("Set(%s,%v) then Get=%v want %v", tc.good, tc.qty, got, tc.want)
		}
	}
}

func TestLedgerCloneIsIndependent(t *testing.T) {
	l := Ledger{GoodOre: 1}
	c := l.Clone()
	c.Add(GoodOre, 5)
	if l.Get(GoodOre) != 1 {
		t.Fatalf("clone shares storage with original")
	}
}
