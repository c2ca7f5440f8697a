package points

import (
	"reflect"
	"testing"
)

func TestApplyClamps(t *testing.T) {
	tests := []struct {
		balance, delta, want int
	}{
		{500, 30, 530},
		{500, -550, 0},
		{0, -10, 0},
		{550, -550, 0},
	}
	for _, tt := range tests {
		if got := Apply(tt.balance, tt.delta); got != tt.want {
			t.Errorf("Apply(%d, %d) = %d, want %d", tt.balance, tt.delta, got, tt.want)
		}
	}
}

func TestCanAfford(t *testing.T) {
	if CanAfford(500, 550) {
		t.Error("500 should not afford 550")
	}
	if !CanAfford(550, 550) {
		t.Error("550 should afford 550")
	}
	if CanAfford(500, -1) {
		t.Error("negative cost should be refused")
	}
}

func TestLedgerSettle(t *testing.T) {
	l := NewLedger()
	l.Record(Delta{UserKey: "Y1", Amount: 30, Reason: ReasonSpinPrize})
	l.Record(Delta{UserKey: "Y2", Amount: 10, Reason: ReasonManualBonus})
	l.Record(Delta{UserKey: "Y2", Amount: 10, Reason: ReasonManualBonus})
	l.Record(Delta{UserKey: "Y3", Amount: -550, Reason: ReasonRedemption})

	if got := l.Pending("Y1"); len(got) != 1 || got[0].At.IsZero() {
		t.Fatalf("pending = %+v", got)
	}

	local := map[string]int{"Y1": 530, "Y2": 120, "Y3": 0}
	server := map[string]int{"Y1": 500, "Y2": 120}
	got := l.Settle(local, server)
	want := []Drift{
		{UserKey: "Y1", Pending: 1, Drift: -30},
		{UserKey: "Y2", Pending: 2, Drift: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Settle = %+v, want %+v", got, want)
	}
	for _, key := range []string{"Y1", "Y2", "Y3"} {
		if p := l.Pending(key); len(p) != 0 {
			t.Errorf("%s still pending: %+v", key, p)
		}
	}
	if got := l.Settle(local, server); len(got) != 0 {
		t.Errorf("second settle = %+v", got)
	}
}
