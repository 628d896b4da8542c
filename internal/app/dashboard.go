package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// Recent activity shows the latest two fillings and two transfers.
const (
	recentPerKind = 2
	recentLimit   = 4
)

// Dashboard is the operational overview.
type Dashboard struct {
	// Tank is nil until the tank has been configured.
	Tank           *domain.Tank
	TankPercentage decimal.Decimal
	TankAlert      domain.TankAlert
	Fleet          domain.FleetStats
	DueForTest     []domain.Cylinder
	Today          domain.DailyActivity
	Recent         []domain.Activity
}

// FleetStats summarizes the whole fleet.
func (s *LedgerService) FleetStats(ctx context.Context) (domain.FleetStats, error) {
	cylinders, err := s.repo.ListCylinders(ctx, domain.CylinderFilter{})
	if err != nil {
		return domain.FleetStats{}, fmt.Errorf("listing cylinders: %w", err)
	}
	return domain.ComputeFleetStats(cylinders), nil
}

// DueForTest returns the cylinders whose hydrostatic test falls within the
// configured lookahead, overdue ones included.
func (s *LedgerService) DueForTest(ctx context.Context) ([]domain.Cylinder, error) {
	cylinders, err := s.repo.ListCylinders(ctx, domain.CylinderFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing cylinders: %w", err)
	}
	return domain.CylindersDueForTest(cylinders, s.now(), s.lookahead), nil
}

// Dashboard assembles the tank, fleet, due-test, daily and recent views.
func (s *LedgerService) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.clock().In(s.location)
	var d Dashboard

	tank, err := s.repo.GetTank(ctx)
	switch {
	case err == nil:
		d.Tank = &tank
		d.TankPercentage = tank.Percentage()
		d.TankAlert = tank.Alert()
	case errors.Is(err, domain.ErrTankNotFound):
		d.TankPercentage = decimal.Zero
		d.TankAlert = domain.TankAlertNone
	default:
		return Dashboard{}, fmt.Errorf("loading tank: %w", err)
	}

	cylinders, err := s.repo.ListCylinders(ctx, domain.CylinderFilter{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("listing cylinders: %w", err)
	}
	d.Fleet = domain.ComputeFleetStats(cylinders)
	d.DueForTest = domain.CylindersDueForTest(cylinders, now, s.lookahead)

	y, m, day := now.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 0, 1)
	today := domain.RecordFilter{Since: &start, Until: &end}

	fillings, err := s.repo.ListFillings(ctx, today)
	if err != nil {
		return Dashboard{}, fmt.Errorf("listing fillings: %w", err)
	}
	transfers, err := s.repo.ListTransfers(ctx, today)
	if err != nil {
		return Dashboard{}, fmt.Errorf("listing transfers: %w", err)
	}
	movements, err := s.repo.ListTankMovements(ctx, today)
	if err != nil {
		return Dashboard{}, fmt.Errorf("listing tank movements: %w", err)
	}
	d.Today = domain.ComputeDailyActivity(now, fillings, transfers, movements)

	latestFillings, err := s.repo.ListFillings(ctx, domain.RecordFilter{Limit: recentPerKind})
	if err != nil {
		return Dashboard{}, fmt.Errorf("listing recent fillings: %w", err)
	}
	latestTransfers, err := s.repo.ListTransfers(ctx, domain.RecordFilter{Limit: recentPerKind})
	if err != nil {
		return Dashboard{}, fmt.Errorf("listing recent transfers: %w", err)
	}
	d.Recent = domain.RecentActivity(latestFillings, latestTransfers, recentPerKind, recentLimit)

	return d, nil
}

// Snapshot returns every ledger record for the report exporter.
func (s *LedgerService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	var err error

	if snap.Cylinders, err = s.repo.ListCylinders(ctx, domain.CylinderFilter{}); err != nil {
		return domain.Snapshot{}, fmt.Errorf("listing cylinders: %w", err)
	}
	if snap.Fillings, err = s.repo.ListFillings(ctx, domain.RecordFilter{}); err != nil {
		return domain.Snapshot{}, fmt.Errorf("listing fillings: %w", err)
	}
	if snap.Transfers, err = s.repo.ListTransfers(ctx, domain.RecordFilter{}); err != nil {
		return domain.Snapshot{}, fmt.Errorf("listing transfers: %w", err)
	}
	if snap.Maintenance, err = s.repo.ListMaintenance(ctx, domain.MaintenanceFilter{}); err != nil {
		return domain.Snapshot{}, fmt.Errorf("listing maintenance: %w", err)
	}
	if snap.TankMovements, err = s.repo.ListTankMovements(ctx, domain.RecordFilter{}); err != nil {
		return domain.Snapshot{}, fmt.Errorf("listing tank movements: %w", err)
	}
	return snap, nil
}
