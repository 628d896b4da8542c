package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// RegisterCylinder validates and persists a new cylinder, empty at dispatch.
func (s *LedgerService) RegisterCylinder(ctx context.Context, in domain.NewCylinder) (domain.Cylinder, error) {
	if err := in.Validate(); err != nil {
		return domain.Cylinder{}, err
	}

	var c domain.Cylinder
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		// Check serial uniqueness before creating; the store's unique index
		// still catches concurrent registrations.
		_, err := tx.GetCylinderBySerial(ctx, in.SerialNumber)
		if err == nil {
			return &domain.DuplicateSerialError{Serial: in.SerialNumber}
		}
		if !errors.Is(err, domain.ErrCylinderNotFound) {
			return fmt.Errorf("checking serial number: %w", err)
		}

		c = domain.RegisterCylinder(newID(), in, s.now())
		if err := tx.CreateCylinder(ctx, c); err != nil {
			return fmt.Errorf("creating cylinder: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cylinder{}, err
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindCylinderRegistered,
		CylinderID: c.ID,
		Serial:     c.SerialNumber,
		RecordID:   c.ID,
		OccurredAt: c.CreatedAt,
	})
	return c, nil
}

// GetCylinder returns a cylinder by its identifier.
func (s *LedgerService) GetCylinder(ctx context.Context, id string) (domain.Cylinder, error) {
	return s.repo.GetCylinder(ctx, id)
}

// GetCylinderBySerial returns a cylinder by its serial number.
func (s *LedgerService) GetCylinderBySerial(ctx context.Context, serial string) (domain.Cylinder, error) {
	return s.repo.GetCylinderBySerial(ctx, serial)
}

// ListCylinders returns cylinders matching the given filter.
func (s *LedgerService) ListCylinders(ctx context.Context, filter domain.CylinderFilter) ([]domain.Cylinder, error) {
	return s.repo.ListCylinders(ctx, filter)
}

// UpdateCylinder applies a direct edit. Any state may be set from any state;
// the resulting pair is checked under the pairing policy.
func (s *LedgerService) UpdateCylinder(ctx context.Context, id string, u domain.CylinderUpdate) (domain.Cylinder, error) {
	var c domain.Cylinder
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		var err error
		c, err = tx.GetCylinder(ctx, id)
		if err != nil {
			return err
		}
		if err := u.Apply(&c); err != nil {
			return err
		}
		if err := s.enforcePairing(ctx, c, domain.CheckPairing(c.State, c.Location)); err != nil {
			return err
		}
		c.UpdatedAt = s.now()
		if err := tx.UpdateCylinder(ctx, c); err != nil {
			return fmt.Errorf("updating cylinder: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cylinder{}, err
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindCylinderUpdated,
		CylinderID: c.ID,
		Serial:     c.SerialNumber,
		RecordID:   c.ID,
		OccurredAt: c.UpdatedAt,
	})
	return c, nil
}

// ApplyCylinderEvent fires a named transition on a cylinder. Events that
// change the service status also move the cylinder to the matching location.
func (s *LedgerService) ApplyCylinderEvent(ctx context.Context, id string, event domain.Event) (domain.Cylinder, error) {
	var c domain.Cylinder
	err := s.repo.Atomic(ctx, func(tx domain.Repository) error {
		var err error
		c, err = tx.GetCylinder(ctx, id)
		if err != nil {
			return err
		}

		newState, err := s.validator.Apply(ctx, c.State, event)
		if err != nil {
			return err
		}
		c.State = newState
		if loc, ok := domain.EventLocation(event); ok {
			c.Location = loc
		}
		if err := s.enforcePairing(ctx, c, domain.CheckPairing(c.State, c.Location)); err != nil {
			return err
		}

		c.UpdatedAt = s.now()
		if err := tx.UpdateCylinder(ctx, c); err != nil {
			return fmt.Errorf("updating cylinder: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cylinder{}, err
	}

	s.publish(ctx, domain.LedgerEvent{
		Kind:       domain.KindCylinderUpdated,
		CylinderID: c.ID,
		Serial:     c.SerialNumber,
		RecordID:   c.ID,
		OccurredAt: c.UpdatedAt,
	})
	return c, nil
}
