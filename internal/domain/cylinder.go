package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CylinderState represents the fill/service state of a cylinder.
type CylinderState string

const (
	StateEmpty        CylinderState = "empty"
	StateFull         CylinderState = "full"
	StateFilling      CylinderState = "filling"
	StateMaintenance  CylinderState = "maintenance"
	StateOutOfService CylinderState = "out_of_service"
)

// CylinderStates lists every state in display order.
var CylinderStates = []CylinderState{StateEmpty, StateFull, StateFilling, StateMaintenance, StateOutOfService}

// Valid reports whether s is a known state.
func (s CylinderState) Valid() bool {
	for _, v := range CylinderStates {
		if s == v {
			return true
		}
	}
	return false
}

// Location is a named place a cylinder can be. Assignments and returns are
// virtual locations for client batches.
type Location string

const (
	LocationDispatch       Location = "dispatch"
	LocationFillingStation Location = "filling_station"
	LocationMaintenance    Location = "maintenance"
	LocationOutOfService   Location = "out_of_service"
	LocationAssignments    Location = "assignments"
	LocationReturns        Location = "returns"
)

// Locations lists every location.
var Locations = []Location{
	LocationDispatch, LocationFillingStation, LocationMaintenance,
	LocationOutOfService, LocationAssignments, LocationReturns,
}

// Valid reports whether l is a known location.
func (l Location) Valid() bool {
	for _, v := range Locations {
		if l == v {
			return true
		}
	}
	return false
}

// IsClientFacing reports whether l addresses client batches instead of
// individually tracked cylinders.
func (l Location) IsClientFacing() bool {
	return l == LocationAssignments || l == LocationReturns
}

// ValveType is the valve fitted to a cylinder.
type ValveType string

const (
	ValveStandard       ValveType = "standard"
	ValveSafety         ValveType = "safety"
	ValvePressureRelief ValveType = "pressure_relief"
)

// Valid reports whether v is a known valve type.
func (v ValveType) Valid() bool {
	switch v {
	case ValveStandard, ValveSafety, ValvePressureRelief:
		return true
	}
	return false
}

// Cylinder is a physical CO2 pressure vessel tracked by serial number.
type Cylinder struct {
	ID                  string
	SerialNumber        string
	CapacityKg          decimal.Decimal
	ValveType           ValveType
	ManufactureDate     *time.Time
	LastHydrostaticTest *time.Time
	NextHydrostaticTest *time.Time
	State               CylinderState
	Location            Location
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CylinderRef is the cylinder summary embedded in record listings.
type CylinderRef struct {
	SerialNumber string
	CapacityKg   decimal.Decimal
}

// NewCylinder holds the registration input for a cylinder.
type NewCylinder struct {
	SerialNumber        string
	CapacityKg          decimal.Decimal
	ValveType           ValveType
	ManufactureDate     *time.Time
	LastHydrostaticTest *time.Time
	NextHydrostaticTest *time.Time
}

// Validate normalizes and checks the registration input.
func (n *NewCylinder) Validate() error {
	n.SerialNumber = strings.TrimSpace(n.SerialNumber)
	if n.SerialNumber == "" {
		return &ValidationError{Field: "serial_number", Reason: "must not be empty"}
	}
	if !n.CapacityKg.IsPositive() {
		return ErrInvalidCapacity
	}
	if n.ValveType == "" {
		n.ValveType = ValveStandard
	}
	if !n.ValveType.Valid() {
		return &ValidationError{Field: "valve_type", Reason: "unknown valve type " + string(n.ValveType)}
	}
	return nil
}

// RegisterCylinder builds a cylinder in its initial state: empty, at dispatch.
// The input must already be validated.
func RegisterCylinder(id string, n NewCylinder, now time.Time) Cylinder {
	return Cylinder{
		ID:                  id,
		SerialNumber:        n.SerialNumber,
		CapacityKg:          n.CapacityKg,
		ValveType:           n.ValveType,
		ManufactureDate:     dateOnly(n.ManufactureDate),
		LastHydrostaticTest: dateOnly(n.LastHydrostaticTest),
		NextHydrostaticTest: dateOnly(n.NextHydrostaticTest),
		State:               StateEmpty,
		Location:            LocationDispatch,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Ref returns the summary embedded in related records.
func (c Cylinder) Ref() *CylinderRef {
	return &CylinderRef{SerialNumber: c.SerialNumber, CapacityKg: c.CapacityKg}
}

// CylinderUpdate is a direct edit. Nil fields are left unchanged.
type CylinderUpdate struct {
	State               *CylinderState
	Location            *Location
	ValveType           *ValveType
	ManufactureDate     *time.Time
	LastHydrostaticTest *time.Time
	NextHydrostaticTest *time.Time
}

// Apply validates u and applies it to c.
func (u CylinderUpdate) Apply(c *Cylinder) error {
	if u.State != nil {
		if !u.State.Valid() {
			return &ValidationError{Field: "state", Reason: "unknown state " + string(*u.State)}
		}
		c.State = *u.State
	}
	if u.Location != nil {
		if !u.Location.Valid() {
			return &ValidationError{Field: "location", Reason: "unknown location " + string(*u.Location)}
		}
		c.Location = *u.Location
	}
	if u.ValveType != nil {
		if !u.ValveType.Valid() {
			return &ValidationError{Field: "valve_type", Reason: "unknown valve type " + string(*u.ValveType)}
		}
		c.ValveType = *u.ValveType
	}
	if u.ManufactureDate != nil {
		c.ManufactureDate = dateOnly(u.ManufactureDate)
	}
	if u.LastHydrostaticTest != nil {
		c.LastHydrostaticTest = dateOnly(u.LastHydrostaticTest)
	}
	if u.NextHydrostaticTest != nil {
		c.NextHydrostaticTest = dateOnly(u.NextHydrostaticTest)
	}
	return nil
}

// dateOnly truncates t to its calendar day as a UTC date.
func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
