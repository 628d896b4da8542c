package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

func TestRegisterCylinder_InitialState(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	next := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	in := domain.NewCylinder{SerialNumber: "  CYL-100 ", CapacityKg: decimal.NewFromInt(10), NextHydrostaticTest: &next}
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	c := domain.RegisterCylinder("id-1", in, now)

	if c.SerialNumber != "CYL-100" {
		t.Errorf("SerialNumber = %q, want %q", c.SerialNumber, "CYL-100")
	}
	if c.State != domain.StateEmpty {
		t.Errorf("State = %q, want %q", c.State, domain.StateEmpty)
	}
	if c.Location != domain.LocationDispatch {
		t.Errorf("Location = %q, want %q", c.Location, domain.LocationDispatch)
	}
	if c.ValveType != domain.ValveStandard {
		t.Errorf("ValveType = %q, want %q", c.ValveType, domain.ValveStandard)
	}
	if c.NextHydrostaticTest.Hour() != 0 {
		t.Errorf("NextHydrostaticTest should be a date, got %v", c.NextHydrostaticTest)
	}
}

func TestNewCylinder_Validate(t *testing.T) {
	cases := []struct {
		name  string
		in    domain.NewCylinder
		class error
	}{
		{"empty serial", domain.NewCylinder{SerialNumber: "  ", CapacityKg: decimal.NewFromInt(10)}, domain.ErrValidation},
		{"zero capacity", domain.NewCylinder{SerialNumber: "A", CapacityKg: decimal.Zero}, domain.ErrInvalidCapacity},
		{"negative capacity", domain.NewCylinder{SerialNumber: "A", CapacityKg: decimal.NewFromInt(-5)}, domain.ErrInvalidCapacity},
		{"bad valve", domain.NewCylinder{SerialNumber: "A", CapacityKg: decimal.NewFromInt(5), ValveType: "brass"}, domain.ErrValidation},
	}

	for _, tc := range cases {
		err := tc.in.Validate()
		if !errors.Is(err, tc.class) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.class)
		}
	}
}

func TestCylinderUpdate_Apply(t *testing.T) {
	c := domain.Cylinder{State: domain.StateEmpty, Location: domain.LocationDispatch}
	state := domain.StateMaintenance
	loc := domain.LocationMaintenance

	if err := (domain.CylinderUpdate{State: &state, Location: &loc}).Apply(&c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.State != domain.StateMaintenance || c.Location != domain.LocationMaintenance {
		t.Errorf("got %q/%q, want maintenance/maintenance", c.State, c.Location)
	}

	bogus := domain.CylinderState("melted")
	if err := (domain.CylinderUpdate{State: &bogus}).Apply(&c); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCheckPairing(t *testing.T) {
	cases := []struct {
		state    domain.CylinderState
		loc      domain.Location
		diverges bool
	}{
		{domain.StateEmpty, domain.LocationDispatch, false},
		{domain.StateFull, domain.LocationFillingStation, false},
		{domain.StateFilling, domain.LocationFillingStation, false},
		{domain.StateMaintenance, domain.LocationMaintenance, false},
		{domain.StateOutOfService, domain.LocationOutOfService, false},
		{domain.StateMaintenance, domain.LocationDispatch, true},
		{domain.StateEmpty, domain.LocationMaintenance, true},
		{domain.StateFilling, domain.LocationDispatch, true},
		{domain.StateFull, domain.LocationOutOfService, true},
	}

	for _, tc := range cases {
		got := domain.CheckPairing(tc.state, tc.loc) != nil
		if got != tc.diverges {
			t.Errorf("CheckPairing(%q, %q) diverges = %v, want %v", tc.state, tc.loc, got, tc.diverges)
		}
	}
}

func TestTransitions_AllEventsHaveEntries(t *testing.T) {
	events := []domain.Event{
		domain.EventStartFilling,
		domain.EventApproveFilling,
		domain.EventDischarge,
		domain.EventSendToMaintenance,
		domain.EventRelease,
		domain.EventRetire,
		domain.EventReinstate,
	}

	for _, event := range events {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == event {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("event %q has no transition defined", event)
		}
	}
}

func TestTransitions_ApproveOnlyFromEmptyOrFilling(t *testing.T) {
	for _, tr := range domain.Transitions {
		if tr.Event != domain.EventApproveFilling {
			continue
		}
		if tr.Src != domain.StateEmpty && tr.Src != domain.StateFilling {
			t.Errorf("unexpected approve_filling source %q", tr.Src)
		}
		if tr.Dst != domain.StateFull {
			t.Errorf("approve_filling destination = %q, want full", tr.Dst)
		}
	}
}
