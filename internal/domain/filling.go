package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FillingStatus is the outcome of a filling attempt.
type FillingStatus string

const (
	FillingApproved FillingStatus = "approved"
	FillingRejected FillingStatus = "rejected"
)

// Filling records one attempt to fill a cylinder from the tank.
type Filling struct {
	ID              string
	CylinderID      string
	Operator        string
	AmountKg        decimal.Decimal
	Status          FillingStatus
	RejectionReason string
	DateTime        time.Time
	CreatedAt       time.Time

	// Cylinder is populated on reads.
	Cylinder *CylinderRef
}

// NewFilling holds the input for recording a filling.
type NewFilling struct {
	CylinderID      string
	Operator        string
	Status          FillingStatus
	AmountKg        decimal.Decimal
	RejectionReason string
}

// Validate normalizes and checks the filling input. Amount and rejection
// reason are paired with the status: approved fillings carry an amount,
// rejected fillings carry a reason and a zero amount.
func (n *NewFilling) Validate() error {
	n.Operator = strings.TrimSpace(n.Operator)
	n.RejectionReason = strings.TrimSpace(n.RejectionReason)

	if n.CylinderID == "" {
		return &ValidationError{Field: "cylinder_id", Reason: "must not be empty"}
	}
	if n.Operator == "" {
		return &ValidationError{Field: "operator", Reason: "must not be empty"}
	}

	switch n.Status {
	case FillingApproved:
		if !n.AmountKg.IsPositive() {
			return ErrInvalidAmount
		}
		if n.RejectionReason != "" {
			return &ValidationError{Field: "rejection_reason", Reason: "must be empty for approved fillings"}
		}
	case FillingRejected:
		if n.RejectionReason == "" {
			return ErrMissingRejectionReason
		}
		n.AmountKg = decimal.Zero
	default:
		return &ValidationError{Field: "status", Reason: "must be approved or rejected"}
	}
	return nil
}
