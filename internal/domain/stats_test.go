package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

func kg(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestTank_WithdrawClampsAtZero(t *testing.T) {
	tank := domain.Tank{CurrentLevelKg: kg(500), CapacityKg: kg(3200)}

	taken, underflow := tank.Withdraw(kg(5000))
	if !underflow {
		t.Error("expected underflow")
	}
	if !taken.Equal(kg(500)) {
		t.Errorf("taken = %s, want 500", taken)
	}
	if !tank.CurrentLevelKg.IsZero() {
		t.Errorf("level = %s, want 0", tank.CurrentLevelKg)
	}
}

func TestTank_DepositClampsAtCapacity(t *testing.T) {
	tank := domain.Tank{CurrentLevelKg: kg(3000), CapacityKg: kg(3200)}

	added, overflow := tank.Deposit(kg(500))
	if !overflow {
		t.Error("expected overflow")
	}
	if !added.Equal(kg(200)) {
		t.Errorf("added = %s, want 200", added)
	}
	if !tank.CurrentLevelKg.Equal(kg(3200)) {
		t.Errorf("level = %s, want 3200", tank.CurrentLevelKg)
	}
}

func TestTank_StaysWithinBounds(t *testing.T) {
	tank := domain.Tank{CurrentLevelKg: kg(1000), CapacityKg: kg(3200)}
	ops := []int64{-400, 2500, -5000, 100, 9000, -3199, -2}

	for _, op := range ops {
		if op > 0 {
			tank.Deposit(kg(op))
		} else {
			tank.Withdraw(kg(-op))
		}
		if tank.CurrentLevelKg.IsNegative() || tank.CurrentLevelKg.GreaterThan(tank.CapacityKg) {
			t.Fatalf("level %s out of [0, %s] after %d", tank.CurrentLevelKg, tank.CapacityKg, op)
		}
	}
}

func TestTank_Alert(t *testing.T) {
	cases := []struct {
		level int64
		want  domain.TankAlert
	}{
		{3200, domain.TankAlertNone},
		{800, domain.TankAlertNone},
		{799, domain.TankAlertLow},
		{480, domain.TankAlertLow},
		{479, domain.TankAlertCritical},
		{0, domain.TankAlertCritical},
	}

	for _, tc := range cases {
		tank := domain.Tank{CurrentLevelKg: kg(tc.level), CapacityKg: kg(3200)}
		if got := tank.Alert(); got != tc.want {
			t.Errorf("Alert() at %d = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestTankUpdate_Validate(t *testing.T) {
	ok := domain.TankUpdate{CapacityKg: kg(3200), CurrentLevelKg: kg(2000)}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	over := domain.TankUpdate{CapacityKg: kg(3200), CurrentLevelKg: kg(4000)}
	if err := over.Validate(); err == nil {
		t.Error("expected error for level above capacity")
	}

	neg := domain.TankUpdate{CapacityKg: kg(3200), CurrentLevelKg: kg(-1)}
	if err := neg.Validate(); err == nil {
		t.Error("expected error for negative level")
	}
}

func TestComputeFleetStats(t *testing.T) {
	cylinders := []domain.Cylinder{
		{CapacityKg: kg(25), State: domain.StateFull},
		{CapacityKg: kg(10), State: domain.StateEmpty},
		{CapacityKg: kg(10), State: domain.StateFull},
		{CapacityKg: decimal.RequireFromString("10.0"), State: domain.StateMaintenance},
	}

	stats := domain.ComputeFleetStats(cylinders)

	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.ByState[domain.StateFull] != 2 {
		t.Errorf("full = %d, want 2", stats.ByState[domain.StateFull])
	}
	if stats.ByState[domain.StateOutOfService] != 0 {
		t.Errorf("out_of_service = %d, want 0", stats.ByState[domain.StateOutOfService])
	}
	if len(stats.ByCapacity) != 2 {
		t.Fatalf("got %d buckets, want 2", len(stats.ByCapacity))
	}
	if !stats.ByCapacity[0].CapacityKg.Equal(kg(10)) {
		t.Errorf("first bucket = %s, want 10", stats.ByCapacity[0].CapacityKg)
	}
	if stats.ByCapacity[0].Total != 3 {
		t.Errorf("10kg total = %d, want 3", stats.ByCapacity[0].Total)
	}
}

func TestMaintenanceDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		d := now.AddDate(0, 0, days)
		return &d
	}

	cases := []struct {
		name string
		next *time.Time
		want bool
	}{
		{"no date", nil, false},
		{"overdue", at(-3), true},
		{"inside window", at(60), true},
		{"edge", at(90), true},
		{"outside window", at(91), false},
	}

	for _, tc := range cases {
		c := domain.Cylinder{NextHydrostaticTest: tc.next}
		if got := domain.MaintenanceDue(c, now, domain.DefaultMaintenanceLookahead); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestComputeDailyActivity(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, loc)
	today := time.Date(2025, 5, 10, 23, 30, 0, 0, loc)
	// 2025-05-11 03:00 UTC is still the 10th in COT.
	lateUTC := time.Date(2025, 5, 11, 3, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 5, 9, 18, 0, 0, 0, loc)

	fillings := []domain.Filling{
		{Status: domain.FillingApproved, AmountKg: kg(10), DateTime: today},
		{Status: domain.FillingApproved, AmountKg: kg(25), DateTime: lateUTC},
		{Status: domain.FillingRejected, DateTime: today},
		{Status: domain.FillingApproved, AmountKg: kg(10), DateTime: yesterday},
	}
	transfers := []domain.Transfer{
		{ToLocation: domain.LocationFillingStation, DateTime: today},
		{ToLocation: domain.LocationDispatch, DateTime: yesterday},
	}
	movements := []domain.TankMovement{
		{MovementType: domain.MovementEntry, AmountKg: kg(1000), DateTime: today},
		{MovementType: domain.MovementExit, AmountKg: kg(35), DateTime: today},
	}

	act := domain.ComputeDailyActivity(now, fillings, transfers, movements)

	if act.Fillings != 3 || act.ApprovedFillings != 2 || act.RejectedFillings != 1 {
		t.Errorf("fillings = %d/%d/%d, want 3/2/1", act.Fillings, act.ApprovedFillings, act.RejectedFillings)
	}
	if !act.FilledKg.Equal(kg(35)) {
		t.Errorf("FilledKg = %s, want 35", act.FilledKg)
	}
	if act.Transfers != 1 || act.TransfersTo[domain.LocationFillingStation] != 1 {
		t.Errorf("transfers = %d (%v), want 1 to filling_station", act.Transfers, act.TransfersTo)
	}
	if act.TankEntries != 1 || act.TankExits != 1 || !act.TankExitKg.Equal(kg(35)) {
		t.Errorf("tank = %d entries, %d exits, %s kg out", act.TankEntries, act.TankExits, act.TankExitKg)
	}
}

func TestRecentActivity(t *testing.T) {
	base := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	fillings := []domain.Filling{
		{ID: "f1", DateTime: base.Add(3 * time.Hour)},
		{ID: "f2", DateTime: base.Add(1 * time.Hour)},
		{ID: "f3", DateTime: base},
	}
	transfers := []domain.Transfer{
		{ID: "t1", DateTime: base.Add(2 * time.Hour)},
	}

	got := domain.RecentActivity(fillings, transfers, 2, 4)

	want := []string{"f1", "t1", "f2"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].RecordID != id {
			t.Errorf("entry %d = %q, want %q", i, got[i].RecordID, id)
		}
	}
}
