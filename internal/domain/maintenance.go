package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaintenanceType classifies a maintenance intervention.
type MaintenanceType string

const (
	MaintenancePreventive  MaintenanceType = "preventivo"
	MaintenanceCorrective  MaintenanceType = "correctivo"
	MaintenanceHydrostatic MaintenanceType = "prueba_hidrostatica"
	MaintenanceInspection  MaintenanceType = "inspeccion"
	MaintenanceRepair      MaintenanceType = "reparacion"
)

// Valid reports whether t is a known maintenance type.
func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenancePreventive, MaintenanceCorrective, MaintenanceHydrostatic, MaintenanceInspection, MaintenanceRepair:
		return true
	}
	return false
}

// MaintenanceStatus is the progress of a maintenance record.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pendiente"
	MaintenanceInProgress MaintenanceStatus = "en_proceso"
	MaintenanceCompleted  MaintenanceStatus = "completado"
	MaintenanceCancelled  MaintenanceStatus = "cancelado"
)

// Valid reports whether s is a known maintenance status.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return true
	}
	return false
}

// MaintenanceRecord is a maintenance intervention on a cylinder. It is the
// only ledger record that can be updated and deleted.
type MaintenanceRecord struct {
	ID                  string
	CylinderID          string
	Type                MaintenanceType
	Description         string
	Technician          string
	DatePerformed       time.Time
	Cost                *decimal.Decimal
	PartsReplaced       string
	NextMaintenanceDate *time.Time
	Status              MaintenanceStatus
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Cylinder is populated on reads.
	Cylinder *CylinderRef
}

// NewMaintenance holds the input for recording maintenance.
type NewMaintenance struct {
	CylinderID          string
	Type                MaintenanceType
	Description         string
	Technician          string
	DatePerformed       *time.Time
	Cost                *decimal.Decimal
	PartsReplaced       string
	NextMaintenanceDate *time.Time
	Status              MaintenanceStatus
	Notes               string
}

// Validate normalizes and checks the maintenance input.
func (n *NewMaintenance) Validate() error {
	n.Description = strings.TrimSpace(n.Description)
	n.Technician = strings.TrimSpace(n.Technician)

	if n.CylinderID == "" {
		return &ValidationError{Field: "cylinder_id", Reason: "must not be empty"}
	}
	if !n.Type.Valid() {
		return &ValidationError{Field: "maintenance_type", Reason: "unknown type " + string(n.Type)}
	}
	if n.Description == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if n.Technician == "" {
		return &ValidationError{Field: "technician", Reason: "must not be empty"}
	}
	if n.Status == "" {
		n.Status = MaintenancePending
	}
	if !n.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status " + string(n.Status)}
	}
	return validateCost(n.Cost)
}

// NewMaintenanceRecord builds a record from validated input. DatePerformed
// defaults to the calendar day of now.
func NewMaintenanceRecord(id string, n NewMaintenance, now time.Time) MaintenanceRecord {
	performed := now
	if n.DatePerformed != nil {
		performed = *n.DatePerformed
	}
	return MaintenanceRecord{
		ID:                  id,
		CylinderID:          n.CylinderID,
		Type:                n.Type,
		Description:         n.Description,
		Technician:          n.Technician,
		DatePerformed:       *dateOnly(&performed),
		Cost:                n.Cost,
		PartsReplaced:       strings.TrimSpace(n.PartsReplaced),
		NextMaintenanceDate: dateOnly(n.NextMaintenanceDate),
		Status:              n.Status,
		Notes:               strings.TrimSpace(n.Notes),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// MaintenanceUpdate replaces the mutable fields of a record. Nil fields are
// left unchanged.
type MaintenanceUpdate struct {
	Status              *MaintenanceStatus
	Cost                *decimal.Decimal
	Notes               *string
	PartsReplaced       *string
	NextMaintenanceDate *time.Time
}

// Apply validates u and applies it to r.
func (u MaintenanceUpdate) Apply(r *MaintenanceRecord, now time.Time) error {
	if u.Status != nil {
		if !u.Status.Valid() {
			return &ValidationError{Field: "status", Reason: "unknown status " + string(*u.Status)}
		}
		r.Status = *u.Status
	}
	if u.Cost != nil {
		if err := validateCost(u.Cost); err != nil {
			return err
		}
		r.Cost = u.Cost
	}
	if u.Notes != nil {
		r.Notes = strings.TrimSpace(*u.Notes)
	}
	if u.PartsReplaced != nil {
		r.PartsReplaced = strings.TrimSpace(*u.PartsReplaced)
	}
	if u.NextMaintenanceDate != nil {
		r.NextMaintenanceDate = dateOnly(u.NextMaintenanceDate)
	}
	r.UpdatedAt = now
	return nil
}

func validateCost(cost *decimal.Decimal) error {
	if cost != nil && cost.IsNegative() {
		return &ValidationError{Field: "cost", Reason: "must not be negative"}
	}
	return nil
}
