package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// FillingOutcome is the result of recording a filling.
type FillingOutcome struct {
	Filling  domain.Filling
	Cylinder domain.Cylinder
	// Tank is the tank after the deduction; nil for rejected fillings.
	Tank *domain.Tank
	// TankUnderflow is set when the filled amount exceeded the tank level
	// and the deduction was clamped at zero.
	TankUnderflow bool
}

// RecordFilling records a filling attempt. An approved filling marks the
// cylinder full, deducts the amount from the tank and logs an exit movement,
// all in one transaction. A rejected filling changes nothing else.
func (s *LedgerService) RecordFilling(ctx context.Context, in domain.NewFilling) (FillingOutcome, error) {
	if err := in.Validate(); err != nil {
		return FillingOutcome{}, err
	}

	var out FillingOutcome
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		c, err := tx.GetCylinder(ctx, in.CylinderID)
		if err != nil {
			return err
		}

		now := s.now()
		f := domain.Filling{
			ID:              newID(),
			CylinderID:      c.ID,
			Operator:        in.Operator,
			AmountKg:        in.AmountKg,
			Status:          in.Status,
			RejectionReason: in.RejectionReason,
			DateTime:        now,
			CreatedAt:       now,
		}

		if f.Status == domain.FillingRejected {
			if err := tx.CreateFilling(ctx, f); err != nil {
				return fmt.Errorf("creating filling: %w", err)
			}
			f.Cylinder = c.Ref()
			out = FillingOutcome{Filling: f, Cylinder: c}
			return nil
		}

		newState, err := s.validator.Apply(ctx, c.State, domain.EventApproveFilling)
		if err != nil {
			return err
		}
		if err := s.enforcePairing(ctx, c, domain.CheckFillable(c)); err != nil {
			return err
		}

		tank, err := tx.GetTank(ctx)
		if err != nil {
			return err
		}
		taken, underflow := tank.Withdraw(f.AmountKg)
		tank.LastUpdated = now
		tank.Operator = f.Operator

		if err := tx.CreateFilling(ctx, f); err != nil {
			return fmt.Errorf("creating filling: %w", err)
		}

		c.State = newState
		c.UpdatedAt = now
		if err := tx.UpdateCylinder(ctx, c); err != nil {
			return fmt.Errorf("updating cylinder: %w", err)
		}

		if err := tx.SaveTank(ctx, tank); err != nil {
			return fmt.Errorf("saving tank: %w", err)
		}
		if taken.IsPositive() {
			mv := domain.TankMovement{
				ID:           newID(),
				MovementType: domain.MovementExit,
				AmountKg:     taken,
				Operator:     f.Operator,
				Notes:        "llenado cilindro " + c.SerialNumber,
				FillingID:    f.ID,
				DateTime:     now,
				CreatedAt:    now,
			}
			if err := tx.CreateTankMovement(ctx, mv); err != nil {
				return fmt.Errorf("creating tank movement: %w", err)
			}
		}

		f.Cylinder = c.Ref()
		out = FillingOutcome{Filling: f, Cylinder: c, Tank: &tank, TankUnderflow: underflow}
		return nil
	})
	if err != nil {
		return FillingOutcome{}, err
	}

	if out.TankUnderflow {
		s.logger.WarnContext(ctx, "filling exceeded tank level, deduction clamped at zero",
			"filling_id", out.Filling.ID,
			"serial", out.Cylinder.SerialNumber,
			"amount_kg", out.Filling.AmountKg.String(),
		)
	}

	kind := domain.KindFillingApproved
	if out.Filling.Status == domain.FillingRejected {
		kind = domain.KindFillingRejected
	}
	s.publish(ctx, domain.LedgerEvent{
		Kind:       kind,
		CylinderID: out.Cylinder.ID,
		Serial:     out.Cylinder.SerialNumber,
		RecordID:   out.Filling.ID,
		OccurredAt: out.Filling.DateTime,
		Tank:       out.Tank,
	})
	return out, nil
}

// ListFillings returns fillings newest first.
func (s *LedgerService) ListFillings(ctx context.Context, filter domain.RecordFilter) ([]domain.Filling, error) {
	return s.repo.ListFillings(ctx, filter)
}
