package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// MovementOutcome is the result of recording a tank movement.
type MovementOutcome struct {
	Movement domain.TankMovement
	Tank     domain.Tank
	// AppliedKg is the amount that actually changed the level.
	AppliedKg decimal.Decimal
	// Clamped is set when the level hit zero or capacity.
	Clamped bool
}

// GetTank returns the tank snapshot.
func (s *LedgerService) GetTank(ctx context.Context) (domain.Tank, error) {
	return s.repo.GetTank(ctx)
}

// ConfigureTank replaces the tank snapshot.
func (s *LedgerService) ConfigureTank(ctx context.Context, u domain.TankUpdate) (domain.Tank, error) {
	if err := u.Validate(); err != nil {
		return domain.Tank{}, err
	}

	tank := domain.Tank{
		CurrentLevelKg: u.CurrentLevelKg,
		CapacityKg:     u.CapacityKg,
		LastUpdated:    s.now(),
		Operator:       u.Operator,
		Notes:          u.Notes,
	}
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		return tx.SaveTank(ctx, tank)
	})
	if err != nil {
		return domain.Tank{}, fmt.Errorf("saving tank: %w", err)
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindTankConfigured,
		OccurredAt: tank.LastUpdated,
		Tank:       &tank,
	})
	return tank, nil
}

// EnsureTank creates an empty tank with the given capacity when none exists.
func (s *LedgerService) EnsureTank(ctx context.Context, capacity decimal.Decimal) (domain.Tank, error) {
	if !capacity.IsPositive() {
		return domain.Tank{}, domain.ErrInvalidCapacity
	}

	var tank domain.Tank
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		var err error
		tank, err = tx.GetTank(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTankNotFound) {
			return err
		}
		tank = domain.Tank{
			CurrentLevelKg: decimal.Zero,
			CapacityKg:     capacity,
			LastUpdated:    s.now(),
		}
		return tx.SaveTank(ctx, tank)
	})
	if err != nil {
		return domain.Tank{}, fmt.Errorf("ensuring tank: %w", err)
	}
	return tank, nil
}

// RecordTankMovement records a manual entry or exit and adjusts the level,
// clamped to [0, capacity]. The movement keeps the declared amount.
func (s *LedgerService) RecordTankMovement(ctx context.Context, in domain.NewTankMovement) (MovementOutcome, error) {
	if err := in.Validate(); err != nil {
		return MovementOutcome{}, err
	}

	var out MovementOutcome
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		tank, err := tx.GetTank(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		var applied decimal.Decimal
		var clamped bool
		if in.MovementType == domain.MovementEntry {
			applied, clamped = tank.Deposit(in.AmountKg)
		} else {
			applied, clamped = tank.Withdraw(in.AmountKg)
		}
		tank.LastUpdated = now
		tank.Operator = in.Operator

		mv := domain.TankMovement{
			ID:           newID(),
			MovementType: in.MovementType,
			AmountKg:     in.AmountKg,
			Operator:     in.Operator,
			Supplier:     in.Supplier,
			Notes:        in.Notes,
			DateTime:     now,
			CreatedAt:    now,
		}
		if err := tx.CreateTankMovement(ctx, mv); err != nil {
			return fmt.Errorf("creating tank movement: %w", err)
		}
		if err := tx.SaveTank(ctx, tank); err != nil {
			return fmt.Errorf("saving tank: %w", err)
		}

		out = MovementOutcome{Movement: mv, Tank: tank, AppliedKg: applied, Clamped: clamped}
		return nil
	})
	if err != nil {
		return MovementOutcome{}, err
	}

	if out.Clamped {
		s.logger.WarnContext(ctx, "tank movement clamped",
			"movement_id", out.Movement.ID,
			"type", out.Movement.MovementType,
			"requested_kg", out.Movement.AmountKg.String(),
			"applied_kg", out.AppliedKg.String(),
		)
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindTankMovement,
		RecordID:   out.Movement.ID,
		OccurredAt: out.Movement.DateTime,
		Tank:       &out.Tank,
	})
	return out, nil
}

// ListTankMovements returns tank movements newest first.
func (s *LedgerService) ListTankMovements(ctx context.Context, filter domain.RecordFilter) ([]domain.TankMovement, error) {
	return s.repo.ListTankMovements(ctx, filter)
}
