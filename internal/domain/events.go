package domain

import "time"

// LedgerEventKind names something that happened in the ledger.
type LedgerEventKind string

const (
	KindCylinderRegistered LedgerEventKind = "cylinder.registered"
	KindCylinderUpdated    LedgerEventKind = "cylinder.updated"
	KindFillingApproved    LedgerEventKind = "filling.approved"
	KindFillingRejected    LedgerEventKind = "filling.rejected"
	KindTransferRecorded   LedgerEventKind = "transfer.recorded"
	KindMaintenanceCreated LedgerEventKind = "maintenance.recorded"
	KindMaintenanceUpdated LedgerEventKind = "maintenance.updated"
	KindMaintenanceDeleted LedgerEventKind = "maintenance.deleted"
	KindTankMovement       LedgerEventKind = "tank.movement"
	KindTankConfigured     LedgerEventKind = "tank.configured"
)

// LedgerEvent is published after a ledger operation commits.
type LedgerEvent struct {
	Kind       LedgerEventKind
	CylinderID string
	Serial     string
	RecordID   string
	OccurredAt time.Time

	// Tank carries the tank snapshot for events that changed it.
	Tank *Tank
}
