package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every ledger error wraps exactly one of these so callers can
// translate by class without knowing each specific condition.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// classError is a named condition that belongs to an error class.
type classError struct {
	msg   string
	class error
}

func (e *classError) Error() string { return e.msg }
func (e *classError) Unwrap() error { return e.class }

func newClassError(class error, msg string) error {
	return &classError{msg: msg, class: class}
}

// Sentinel errors for simple conditions without extra context.
var (
	ErrInvalidCapacity        = newClassError(ErrValidation, "capacity must be greater than zero")
	ErrInvalidAmount          = newClassError(ErrValidation, "amount must be greater than zero")
	ErrMissingRejectionReason = newClassError(ErrValidation, "rejected filling requires a rejection reason")
	ErrSameLocation           = newClassError(ErrValidation, "origin and destination must differ")

	ErrCylinderNotFound    = newClassError(ErrNotFound, "cylinder not found")
	ErrMaintenanceNotFound = newClassError(ErrNotFound, "maintenance record not found")
	ErrTankNotFound        = newClassError(ErrNotFound, "tank inventory not initialized")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingBatchFieldsError is returned when a client batch transfer lacks
// any of its required fields.
type MissingBatchFieldsError struct {
	Fields []string
}

func (e *MissingBatchFieldsError) Error() string {
	return fmt.Sprintf("batch transfer missing fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingBatchFieldsError) Unwrap() error { return ErrValidation }

// DuplicateSerialError is returned when a serial number is already registered.
type DuplicateSerialError struct {
	Serial string
}

func (e *DuplicateSerialError) Error() string {
	return fmt.Sprintf("serial number %q is already registered", e.Serial)
}

func (e *DuplicateSerialError) Unwrap() error { return ErrConflict }

// LocationMismatchError is returned when a transfer names an origin that is
// not the cylinder's current location.
type LocationMismatchError struct {
	CylinderID string
	Expected   Location
	Actual     Location
}

func (e *LocationMismatchError) Error() string {
	return fmt.Sprintf("cylinder %s is at %q, not %q", e.CylinderID, e.Actual, e.Expected)
}

func (e *LocationMismatchError) Unwrap() error { return ErrConflict }

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current CylinderState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

func (e *TransitionError) Unwrap() error { return ErrConflict }

// PairingError is returned under the reject policy when a cylinder's state
// and location diverge from the conventional pairing.
type PairingError struct {
	State    CylinderState
	Location Location
	Reason   string
}

func (e *PairingError) Error() string {
	return fmt.Sprintf("state %q at location %q: %s", e.State, e.Location, e.Reason)
}

func (e *PairingError) Unwrap() error { return ErrConflict }
