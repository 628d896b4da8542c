package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// RecordTransfer records a relocation. Individual transfers require the
// cylinder to sit at the origin and move it to the destination; client batch
// transfers touch no tracked cylinder.
func (s *LedgerService) RecordTransfer(ctx context.Context, in domain.NewTransfer) (domain.Transfer, error) {
	if err := in.Validate(); err != nil {
		return domain.Transfer{}, err
	}

	var t domain.Transfer
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		now := s.now()
		t = domain.Transfer{
			ID:           newID(),
			CylinderID:   in.CylinderID,
			FromLocation: in.FromLocation,
			ToLocation:   in.ToLocation,
			Operator:     in.Operator,
			Notes:        in.Notes,
			Batch:        in.Batch,
			DateTime:     now,
			CreatedAt:    now,
		}

		if !in.IsBatch() {
			c, err := tx.GetCylinder(ctx, in.CylinderID)
			if err != nil {
				return err
			}
			if c.Location != in.FromLocation {
				return &domain.LocationMismatchError{
					CylinderID: c.ID,
					Expected:   in.FromLocation,
					Actual:     c.Location,
				}
			}

			c.Location = in.ToLocation
			if err := s.enforcePairing(ctx, c, domain.CheckPairing(c.State, c.Location)); err != nil {
				return err
			}
			c.UpdatedAt = now
			if err := tx.UpdateCylinder(ctx, c); err != nil {
				return fmt.Errorf("updating cylinder: %w", err)
			}
			t.Cylinder = c.Ref()
		}

		if err := tx.CreateTransfer(ctx, t); err != nil {
			return fmt.Errorf("creating transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Transfer{}, err
	}

	event := domain.LedgerEvent{
		Kind:       domain.KindTransferRecorded,
		CylinderID: t.CylinderID,
		RecordID:   t.ID,
		OccurredAt: t.DateTime,
	}
	if t.Cylinder != nil {
		event.Serial = t.Cylinder.SerialNumber
	}
	s.publish(ctx, event)
	return t, nil
}

// ListTransfers returns transfers newest first.
func (s *LedgerService) ListTransfers(ctx context.Context, filter domain.RecordFilter) ([]domain.Transfer, error) {
	return s.repo.ListTransfers(ctx, filter)
}
