package domain

import (
	"context"
	"time"
)

// CylinderRepository defines the persistence contract for cylinders.
type CylinderRepository interface {
	CreateCylinder(ctx context.Context, c Cylinder) error
	GetCylinder(ctx context.Context, id string) (Cylinder, error)
	GetCylinderBySerial(ctx context.Context, serial string) (Cylinder, error)
	ListCylinders(ctx context.Context, filter CylinderFilter) ([]Cylinder, error)
	UpdateCylinder(ctx context.Context, c Cylinder) error
}

// FillingRepository defines the persistence contract for fillings.
type FillingRepository interface {
	CreateFilling(ctx context.Context, f Filling) error
	ListFillings(ctx context.Context, filter RecordFilter) ([]Filling, error)
}

// TransferRepository defines the persistence contract for transfers.
type TransferRepository interface {
	CreateTransfer(ctx context.Context, t Transfer) error
	ListTransfers(ctx context.Context, filter RecordFilter) ([]Transfer, error)
}

// MaintenanceRepository defines the persistence contract for maintenance records.
type MaintenanceRepository interface {
	CreateMaintenance(ctx context.Context, m MaintenanceRecord) error
	GetMaintenance(ctx context.Context, id string) (MaintenanceRecord, error)
	ListMaintenance(ctx context.Context, filter MaintenanceFilter) ([]MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, m MaintenanceRecord) error
	DeleteMaintenance(ctx context.Context, id string) error
}

// TankRepository defines the persistence contract for the tank and its movements.
type TankRepository interface {
	GetTank(ctx context.Context) (Tank, error)
	SaveTank(ctx context.Context, t Tank) error
	CreateTankMovement(ctx context.Context, m TankMovement) error
	ListTankMovements(ctx context.Context, filter RecordFilter) ([]TankMovement, error)
}

// Repository is the full ledger store. Atomic runs fn against a
// transactional view; fn's writes commit together or not at all.
type Repository interface {
	CylinderRepository
	FillingRepository
	TransferRepository
	MaintenanceRepository
	TankRepository

	Atomic(ctx context.Context, fn func(tx Repository) error) error
}

// CylinderFilter holds optional criteria for listing cylinders.
type CylinderFilter struct {
	State    *CylinderState
	Location *Location
	Limit    int
	Offset   int
}

// RecordFilter holds optional criteria for listing timestamped records.
// Since is inclusive, Until exclusive.
type RecordFilter struct {
	CylinderID string
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

// MaintenanceFilter holds optional criteria for listing maintenance records.
type MaintenanceFilter struct {
	CylinderID string
	Status     *MaintenanceStatus
	Limit      int
	Offset     int
}

// EventPublisher defines the contract for emitting ledger events.
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

// TransitionValidator checks a named event against the transition table and
// returns the destination state.
type TransitionValidator interface {
	Apply(ctx context.Context, current CylinderState, event Event) (CylinderState, error)
}
