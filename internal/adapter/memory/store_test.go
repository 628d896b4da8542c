package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/adapter/memory"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func cylinder(id, serial string) domain.Cylinder {
	return domain.Cylinder{
		ID:           id,
		SerialNumber: serial,
		CapacityKg:   decimal.NewFromInt(25),
		ValveType:    domain.ValveStandard,
		State:        domain.StateEmpty,
		Location:     domain.LocationDispatch,
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
}

func TestStore_CreateAndGetCylinder(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	if err := s.CreateCylinder(ctx, cylinder("c1", "CYL-1")); err != nil {
		t.Fatalf("CreateCylinder: %v", err)
	}

	got, err := s.GetCylinderBySerial(ctx, "CYL-1")
	if err != nil {
		t.Fatalf("GetCylinderBySerial: %v", err)
	}
	if got.ID != "c1" {
		t.Errorf("ID = %q, want c1", got.ID)
	}

	if _, err := s.GetCylinder(ctx, "nope"); !errors.Is(err, domain.ErrCylinderNotFound) {
		t.Errorf("expected ErrCylinderNotFound, got %v", err)
	}
}

func TestStore_DuplicateSerial(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	_ = s.CreateCylinder(ctx, cylinder("c1", "CYL-1"))
	err := s.CreateCylinder(ctx, cylinder("c2", "CYL-1"))

	var dup *domain.DuplicateSerialError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSerialError, got %v", err)
	}
}

func TestStore_AtomicRollsBackOnError(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_ = s.SaveTank(ctx, domain.Tank{CurrentLevelKg: decimal.NewFromInt(100), CapacityKg: decimal.NewFromInt(3200)})

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx domain.Repository) error {
		if err := tx.CreateCylinder(ctx, cylinder("c1", "CYL-1")); err != nil {
			return err
		}
		if err := tx.SaveTank(ctx, domain.Tank{CurrentLevelKg: decimal.Zero, CapacityKg: decimal.NewFromInt(3200)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.GetCylinder(ctx, "c1"); !errors.Is(err, domain.ErrCylinderNotFound) {
		t.Errorf("cylinder should not exist after rollback, got %v", err)
	}
	tank, _ := s.GetTank(ctx)
	if !tank.CurrentLevelKg.Equal(decimal.NewFromInt(100)) {
		t.Errorf("tank level = %s, want 100", tank.CurrentLevelKg)
	}
}

func TestStore_AtomicCommits(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := s.Atomic(ctx, func(tx domain.Repository) error {
		return tx.CreateCylinder(ctx, cylinder("c1", "CYL-1"))
	})
	if err != nil {
		t.Fatalf("Atomic: %v", err)
	}
	if _, err := s.GetCylinder(ctx, "c1"); err != nil {
		t.Errorf("expected committed cylinder, got %v", err)
	}
}

func TestStore_ListFillingsNewestFirstWithRef(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_ = s.CreateCylinder(ctx, cylinder("c1", "CYL-1"))

	for i, id := range []string{"f1", "f2", "f3"} {
		f := domain.Filling{
			ID:         id,
			CylinderID: "c1",
			Operator:   "Ana",
			Status:     domain.FillingApproved,
			AmountKg:   decimal.NewFromInt(25),
			DateTime:   t0.Add(time.Duration(i) * time.Hour),
		}
		if err := s.CreateFilling(ctx, f); err != nil {
			t.Fatalf("CreateFilling: %v", err)
		}
	}

	got, err := s.ListFillings(ctx, domain.RecordFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListFillings: %v", err)
	}
	if len(got) != 2 || got[0].ID != "f3" || got[1].ID != "f2" {
		t.Fatalf("got %+v, want f3, f2", got)
	}
	if got[0].Cylinder == nil || got[0].Cylinder.SerialNumber != "CYL-1" {
		t.Errorf("cylinder ref = %+v, want CYL-1", got[0].Cylinder)
	}

	since := t0.Add(time.Hour)
	until := t0.Add(2 * time.Hour)
	got, _ = s.ListFillings(ctx, domain.RecordFilter{Since: &since, Until: &until})
	if len(got) != 1 || got[0].ID != "f2" {
		t.Errorf("range filter returned %+v, want f2", got)
	}
}

func TestStore_ListFillingsTieBreak(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_ = s.CreateCylinder(ctx, cylinder("c1", "CYL-1"))

	// Same date; f-b was created later, f-a and f-c share a creation time.
	for _, f := range []domain.Filling{
		{ID: "f-c", CreatedAt: t0},
		{ID: "f-b", CreatedAt: t0.Add(time.Second)},
		{ID: "f-a", CreatedAt: t0},
	} {
		f.CylinderID = "c1"
		f.Operator = "Ana"
		f.Status = domain.FillingApproved
		f.AmountKg = decimal.NewFromInt(25)
		f.DateTime = t0
		if err := s.CreateFilling(ctx, f); err != nil {
			t.Fatalf("CreateFilling: %v", err)
		}
	}

	got, err := s.ListFillings(ctx, domain.RecordFilter{})
	if err != nil {
		t.Fatalf("ListFillings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d fillings, want 3", len(got))
	}
	want := []string{"f-b", "f-a", "f-c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order = %v, want %v", fillingIDs(got), want)
		}
	}
}

func fillingIDs(fs []domain.Filling) []string {
	ids := make([]string, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return ids
}

func TestStore_ListTransfersCopiesBatch(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	tr := domain.Transfer{
		ID:           "t1",
		FromLocation: domain.LocationDispatch,
		ToLocation:   domain.LocationAssignments,
		Operator:     "Ana",
		Batch: &domain.Batch{
			ClientName:         "Sur",
			CapacityKg:         decimal.NewFromInt(25),
			Quantity:           6,
			DeliveryNoteNumber: "GR-1",
			DriverName:         "Luis",
		},
		DateTime: t0,
	}
	if err := s.CreateTransfer(ctx, tr); err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}

	got, _ := s.ListTransfers(ctx, domain.RecordFilter{})
	got[0].Batch.Quantity = 99

	again, _ := s.ListTransfers(ctx, domain.RecordFilter{})
	if again[0].Batch.Quantity != 6 {
		t.Errorf("stored batch quantity = %d, want 6", again[0].Batch.Quantity)
	}
}

func TestStore_FillingForUnknownCylinder(t *testing.T) {
	s := memory.New()
	err := s.CreateFilling(context.Background(), domain.Filling{ID: "f1", CylinderID: "ghost"})
	if !errors.Is(err, domain.ErrCylinderNotFound) {
		t.Errorf("expected ErrCylinderNotFound, got %v", err)
	}
}

func TestStore_MaintenanceLifecycle(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_ = s.CreateCylinder(ctx, cylinder("c1", "CYL-1"))

	rec := domain.MaintenanceRecord{
		ID:            "m1",
		CylinderID:    "c1",
		Type:          domain.MaintenanceInspection,
		Description:   "inspección visual",
		Technician:    "Marta",
		DatePerformed: t0,
		Status:        domain.MaintenancePending,
		CreatedAt:     t0,
	}
	if err := s.CreateMaintenance(ctx, rec); err != nil {
		t.Fatalf("CreateMaintenance: %v", err)
	}

	rec.Status = domain.MaintenanceCompleted
	if err := s.UpdateMaintenance(ctx, rec); err != nil {
		t.Fatalf("UpdateMaintenance: %v", err)
	}

	completed := domain.MaintenanceCompleted
	list, _ := s.ListMaintenance(ctx, domain.MaintenanceFilter{Status: &completed})
	if len(list) != 1 || list[0].Cylinder == nil {
		t.Fatalf("ListMaintenance = %+v", list)
	}

	if err := s.DeleteMaintenance(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMaintenance: %v", err)
	}
	if err := s.DeleteMaintenance(ctx, "m1"); !errors.Is(err, domain.ErrMaintenanceNotFound) {
		t.Errorf("second delete: expected ErrMaintenanceNotFound, got %v", err)
	}
}

func TestStore_TankNotConfigured(t *testing.T) {
	s := memory.New()
	if _, err := s.GetTank(context.Background()); !errors.Is(err, domain.ErrTankNotFound) {
		t.Errorf("expected ErrTankNotFound, got %v", err)
	}
}

func TestStore_ListCylindersFilterAndPaging(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for i, serial := range []string{"A", "B", "C"} {
		c := cylinder(serial, serial)
		c.CreatedAt = t0.Add(time.Duration(i) * time.Minute)
		if serial == "B" {
			c.State = domain.StateFull
		}
		_ = s.CreateCylinder(ctx, c)
	}

	full := domain.StateFull
	got, _ := s.ListCylinders(ctx, domain.CylinderFilter{State: &full})
	if len(got) != 1 || got[0].SerialNumber != "B" {
		t.Errorf("state filter = %+v", got)
	}

	got, _ = s.ListCylinders(ctx, domain.CylinderFilter{Offset: 1, Limit: 1})
	if len(got) != 1 || got[0].SerialNumber != "B" {
		t.Errorf("paging = %+v, want B", got)
	}

	got, _ = s.ListCylinders(ctx, domain.CylinderFilter{Offset: 10})
	if got == nil || len(got) != 0 {
		t.Errorf("offset past end = %+v, want empty", got)
	}
}
