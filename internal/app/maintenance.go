package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// RecordMaintenance records a maintenance intervention on an existing
// cylinder. The cylinder's own state is left untouched.
func (s *LedgerService) RecordMaintenance(ctx context.Context, in domain.NewMaintenance) (domain.MaintenanceRecord, error) {
	if err := in.Validate(); err != nil {
		return domain.MaintenanceRecord{}, err
	}

	var rec domain.MaintenanceRecord
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		c, err := tx.GetCylinder(ctx, in.CylinderID)
		if err != nil {
			return err
		}
		rec = domain.NewMaintenanceRecord(newID(), in, s.now())
		if err := tx.CreateMaintenance(ctx, rec); err != nil {
			return fmt.Errorf("creating maintenance record: %w", err)
		}
		rec.Cylinder = c.Ref()
		return nil
	})
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindMaintenanceCreated,
		CylinderID: rec.CylinderID,
		Serial:     rec.Cylinder.SerialNumber,
		RecordID:   rec.ID,
		OccurredAt: rec.CreatedAt,
	})
	return rec, nil
}

// GetMaintenance returns a maintenance record by its identifier.
func (s *LedgerService) GetMaintenance(ctx context.Context, id string) (domain.MaintenanceRecord, error) {
	return s.repo.GetMaintenance(ctx, id)
}

// ListMaintenance returns maintenance records, most recently performed first.
func (s *LedgerService) ListMaintenance(ctx context.Context, filter domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	return s.repo.ListMaintenance(ctx, filter)
}

// UpdateMaintenance replaces the provided mutable fields of a record.
func (s *LedgerService) UpdateMaintenance(ctx context.Context, id string, u domain.MaintenanceUpdate) (domain.MaintenanceRecord, error) {
	var rec domain.MaintenanceRecord
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		var err error
		rec, err = tx.GetMaintenance(ctx, id)
		if err != nil {
			return err
		}
		if err := u.Apply(&rec, s.now()); err != nil {
			return err
		}
		if err := tx.UpdateMaintenance(ctx, rec); err != nil {
			return fmt.Errorf("updating maintenance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindMaintenanceUpdated,
		CylinderID: rec.CylinderID,
		RecordID:   rec.ID,
		OccurredAt: rec.UpdatedAt,
	})
	return rec, nil
}

// DeleteMaintenance removes a maintenance record. The cylinder is unaffected.
func (s *LedgerService) DeleteMaintenance(ctx context.Context, id string) error {
	var rec domain.MaintenanceRecord
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		var err error
		rec, err = tx.GetMaintenance(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteMaintenance(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindMaintenanceDeleted,
		CylinderID: rec.CylinderID,
		RecordID:   rec.ID,
		OccurredAt: s.now(),
	})
	return nil
}
