package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Alert thresholds as a fraction of tank capacity.
var (
	TankLowThreshold      = decimal.RequireFromString("0.25")
	TankCriticalThreshold = decimal.RequireFromString("0.15")
)

// TankAlert is the alert level derived from the tank fill ratio.
type TankAlert string

const (
	TankAlertNone     TankAlert = "none"
	TankAlertLow      TankAlert = "low"
	TankAlertCritical TankAlert = "critical"
)

// Tank is the singleton bulk liquid-CO2 reservoir.
type Tank struct {
	CurrentLevelKg decimal.Decimal
	CapacityKg     decimal.Decimal
	LastUpdated    time.Time
	Operator       string
	Notes          string
}

// Ratio returns level/capacity, or zero for a tank without capacity.
func (t Tank) Ratio() decimal.Decimal {
	if !t.CapacityKg.IsPositive() {
		return decimal.Zero
	}
	return t.CurrentLevelKg.Div(t.CapacityKg)
}

// Percentage returns the fill level in percent rounded to one decimal.
func (t Tank) Percentage() decimal.Decimal {
	return t.Ratio().Mul(decimal.NewFromInt(100)).Round(1)
}

// Alert classifies the fill level: critical below 15%, low below 25%.
func (t Tank) Alert() TankAlert {
	r := t.Ratio()
	switch {
	case r.LessThan(TankCriticalThreshold):
		return TankAlertCritical
	case r.LessThan(TankLowThreshold):
		return TankAlertLow
	}
	return TankAlertNone
}

// Withdraw removes amount from the tank, clamping at zero. It returns the
// amount actually withdrawn and whether the request exceeded the level.
func (t *Tank) Withdraw(amount decimal.Decimal) (decimal.Decimal, bool) {
	if amount.GreaterThan(t.CurrentLevelKg) {
		taken := t.CurrentLevelKg
		t.CurrentLevelKg = decimal.Zero
		return taken, true
	}
	t.CurrentLevelKg = t.CurrentLevelKg.Sub(amount)
	return amount, false
}

// Deposit adds amount to the tank, clamping at capacity. It returns the
// amount actually added and whether the request exceeded the free space.
func (t *Tank) Deposit(amount decimal.Decimal) (decimal.Decimal, bool) {
	free := t.CapacityKg.Sub(t.CurrentLevelKg)
	if amount.GreaterThan(free) {
		t.CurrentLevelKg = t.CapacityKg
		return free, true
	}
	t.CurrentLevelKg = t.CurrentLevelKg.Add(amount)
	return amount, false
}

// TankUpdate replaces the tank snapshot.
type TankUpdate struct {
	CapacityKg     decimal.Decimal
	CurrentLevelKg decimal.Decimal
	Operator       string
	Notes          string
}

// Validate checks that 0 <= level <= capacity and capacity > 0.
func (u *TankUpdate) Validate() error {
	u.Operator = strings.TrimSpace(u.Operator)
	u.Notes = strings.TrimSpace(u.Notes)

	if !u.CapacityKg.IsPositive() {
		return ErrInvalidCapacity
	}
	if u.CurrentLevelKg.IsNegative() {
		return &ValidationError{Field: "current_level_kg", Reason: "must not be negative"}
	}
	if u.CurrentLevelKg.GreaterThan(u.CapacityKg) {
		return &ValidationError{Field: "current_level_kg", Reason: "must not exceed capacity"}
	}
	return nil
}

// MovementType is the direction of a tank movement.
type MovementType string

const (
	MovementEntry MovementType = "entry"
	MovementExit  MovementType = "exit"
)

// TankMovement records CO2 entering or leaving the tank.
type TankMovement struct {
	ID           string
	MovementType MovementType
	AmountKg     decimal.Decimal
	Operator     string
	Supplier     string
	Notes        string
	FillingID    string
	DateTime     time.Time
	CreatedAt    time.Time
}

// NewTankMovement holds the input for recording a tank movement.
type NewTankMovement struct {
	MovementType MovementType
	AmountKg     decimal.Decimal
	Operator     string
	Supplier     string
	Notes        string
}

// Validate normalizes and checks the movement input.
func (n *NewTankMovement) Validate() error {
	n.Operator = strings.TrimSpace(n.Operator)
	n.Supplier = strings.TrimSpace(n.Supplier)
	n.Notes = strings.TrimSpace(n.Notes)

	if n.MovementType != MovementEntry && n.MovementType != MovementExit {
		return &ValidationError{Field: "movement_type", Reason: "must be entry or exit"}
	}
	if !n.AmountKg.IsPositive() {
		return ErrInvalidAmount
	}
	if n.Operator == "" {
		return &ValidationError{Field: "operator", Reason: "must not be empty"}
	}
	if n.MovementType == MovementExit && n.Supplier != "" {
		return &ValidationError{Field: "supplier", Reason: "only allowed on entries"}
	}
	return nil
}
