package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Batch describes a group of cylinders handed to or received from a client.
// Its units are not individually tracked.
type Batch struct {
	ClientName         string
	CapacityKg         decimal.Decimal
	Quantity           int
	DeliveryNoteNumber string
	DriverName         string
}

// missing returns the names of absent batch fields.
func (b *Batch) missing() []string {
	if b == nil {
		return []string{"client_name", "cylinder_capacity_kg", "cylinder_quantity", "delivery_note_number", "driver_name"}
	}
	var out []string
	if strings.TrimSpace(b.ClientName) == "" {
		out = append(out, "client_name")
	}
	if !b.CapacityKg.IsPositive() {
		out = append(out, "cylinder_capacity_kg")
	}
	if b.Quantity <= 0 {
		out = append(out, "cylinder_quantity")
	}
	if strings.TrimSpace(b.DeliveryNoteNumber) == "" {
		out = append(out, "delivery_note_number")
	}
	if strings.TrimSpace(b.DriverName) == "" {
		out = append(out, "driver_name")
	}
	return out
}

// Transfer records a relocation of a cylinder or a client batch.
type Transfer struct {
	ID           string
	CylinderID   string
	FromLocation Location
	ToLocation   Location
	Operator     string
	Notes        string
	Batch        *Batch
	DateTime     time.Time
	CreatedAt    time.Time

	// Cylinder is populated on reads of individual transfers.
	Cylinder *CylinderRef
}

// IsBatch reports whether the transfer addresses a client batch.
func (t Transfer) IsBatch() bool {
	return t.Batch != nil
}

// NewTransfer holds the input for recording a transfer.
type NewTransfer struct {
	CylinderID   string
	FromLocation Location
	ToLocation   Location
	Operator     string
	Notes        string
	Batch        *Batch
}

// IsBatch reports whether the input must be addressed as a client batch.
func (n NewTransfer) IsBatch() bool {
	return n.FromLocation.IsClientFacing() || n.ToLocation.IsClientFacing()
}

// Validate normalizes and checks the transfer input shape. Whether the
// cylinder actually sits at the origin is checked against storage.
func (n *NewTransfer) Validate() error {
	n.Operator = strings.TrimSpace(n.Operator)
	n.Notes = strings.TrimSpace(n.Notes)

	if !n.FromLocation.Valid() {
		return &ValidationError{Field: "from_location", Reason: "unknown location " + string(n.FromLocation)}
	}
	if !n.ToLocation.Valid() {
		return &ValidationError{Field: "to_location", Reason: "unknown location " + string(n.ToLocation)}
	}
	if n.FromLocation == n.ToLocation {
		return ErrSameLocation
	}
	if n.Operator == "" {
		return &ValidationError{Field: "operator", Reason: "must not be empty"}
	}

	if n.IsBatch() {
		if n.CylinderID != "" {
			return &ValidationError{Field: "cylinder_id", Reason: "must be empty for client batch transfers"}
		}
		if missing := n.Batch.missing(); len(missing) > 0 {
			return &MissingBatchFieldsError{Fields: missing}
		}
		n.Batch.ClientName = strings.TrimSpace(n.Batch.ClientName)
		n.Batch.DeliveryNoteNumber = strings.TrimSpace(n.Batch.DeliveryNoteNumber)
		n.Batch.DriverName = strings.TrimSpace(n.Batch.DriverName)
		return nil
	}

	if n.CylinderID == "" {
		return &ValidationError{Field: "cylinder_id", Reason: "must not be empty"}
	}
	if n.Batch != nil {
		return &ValidationError{Field: "batch", Reason: "only allowed for assignments and returns"}
	}
	return nil
}
