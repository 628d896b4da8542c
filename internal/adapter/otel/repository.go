package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

const instrumentationName = "github.com/neomorfeo/co2ledger/internal/adapter/otel"

// TracingRepository wraps a domain.Repository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
// Repositories handed to Atomic callbacks are wrapped too, so writes inside
// a transaction appear as children of the Repository.Atomic span.
type TracingRepository struct {
	next   domain.Repository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.Repository.
var _ domain.Repository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.Repository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
	}
}

func (r *TracingRepository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// end records err on span, if any, and ends it.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordFilterAttrs(f domain.RecordFilter) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int("filter.limit", f.Limit),
		attribute.Int("filter.offset", f.Offset),
	}
	if f.CylinderID != "" {
		attrs = append(attrs, attribute.String("filter.cylinder_id", f.CylinderID))
	}
	return attrs
}

func (r *TracingRepository) Atomic(ctx context.Context, fn func(tx domain.Repository) error) error {
	ctx, span := r.start(ctx, "Repository.Atomic")
	err := r.next.Atomic(ctx, func(tx domain.Repository) error {
		return fn(&TracingRepository{next: tx, tracer: r.tracer})
	})
	end(span, err)
	return err
}

// --- Cylinders ---

func (r *TracingRepository) CreateCylinder(ctx context.Context, c domain.Cylinder) error {
	ctx, span := r.start(ctx, "CylinderRepository.Create",
		attribute.String("cylinder.id", c.ID),
		attribute.String("cylinder.serial", c.SerialNumber),
	)
	err := r.next.CreateCylinder(ctx, c)
	end(span, err)
	return err
}

func (r *TracingRepository) GetCylinder(ctx context.Context, id string) (domain.Cylinder, error) {
	ctx, span := r.start(ctx, "CylinderRepository.Get",
		attribute.String("cylinder.id", id),
	)
	c, err := r.next.GetCylinder(ctx, id)
	end(span, err)
	return c, err
}

func (r *TracingRepository) GetCylinderBySerial(ctx context.Context, serial string) (domain.Cylinder, error) {
	ctx, span := r.start(ctx, "CylinderRepository.GetBySerial",
		attribute.String("cylinder.serial", serial),
	)
	c, err := r.next.GetCylinderBySerial(ctx, serial)
	end(span, err)
	return c, err
}

func (r *TracingRepository) ListCylinders(ctx context.Context, filter domain.CylinderFilter) ([]domain.Cylinder, error) {
	ctx, span := r.start(ctx, "CylinderRepository.List",
		attribute.Int("filter.limit", filter.Limit),
		attribute.Int("filter.offset", filter.Offset),
	)
	if filter.State != nil {
		span.SetAttributes(attribute.String("filter.state", string(*filter.State)))
	}
	if filter.Location != nil {
		span.SetAttributes(attribute.String("filter.location", string(*filter.Location)))
	}

	cylinders, err := r.next.ListCylinders(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(cylinders)))
	}
	end(span, err)
	return cylinders, err
}

func (r *TracingRepository) UpdateCylinder(ctx context.Context, c domain.Cylinder) error {
	ctx, span := r.start(ctx, "CylinderRepository.Update",
		attribute.String("cylinder.id", c.ID),
		attribute.String("cylinder.state", string(c.State)),
		attribute.String("cylinder.location", string(c.Location)),
	)
	err := r.next.UpdateCylinder(ctx, c)
	end(span, err)
	return err
}

// --- Fillings ---

func (r *TracingRepository) CreateFilling(ctx context.Context, f domain.Filling) error {
	ctx, span := r.start(ctx, "FillingRepository.Create",
		attribute.String("filling.id", f.ID),
		attribute.String("cylinder.id", f.CylinderID),
		attribute.String("filling.status", string(f.Status)),
	)
	err := r.next.CreateFilling(ctx, f)
	end(span, err)
	return err
}

func (r *TracingRepository) ListFillings(ctx context.Context, filter domain.RecordFilter) ([]domain.Filling, error) {
	ctx, span := r.start(ctx, "FillingRepository.List", recordFilterAttrs(filter)...)
	fillings, err := r.next.ListFillings(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(fillings)))
	}
	end(span, err)
	return fillings, err
}

// --- Transfers ---

func (r *TracingRepository) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	ctx, span := r.start(ctx, "TransferRepository.Create",
		attribute.String("transfer.id", t.ID),
		attribute.String("transfer.from", string(t.FromLocation)),
		attribute.String("transfer.to", string(t.ToLocation)),
		attribute.Bool("transfer.batch", t.IsBatch()),
	)
	err := r.next.CreateTransfer(ctx, t)
	end(span, err)
	return err
}

func (r *TracingRepository) ListTransfers(ctx context.Context, filter domain.RecordFilter) ([]domain.Transfer, error) {
	ctx, span := r.start(ctx, "TransferRepository.List", recordFilterAttrs(filter)...)
	transfers, err := r.next.ListTransfers(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(transfers)))
	}
	end(span, err)
	return transfers, err
}

// --- Maintenance ---

func (r *TracingRepository) CreateMaintenance(ctx context.Context, m domain.MaintenanceRecord) error {
	ctx, span := r.start(ctx, "MaintenanceRepository.Create",
		attribute.String("maintenance.id", m.ID),
		attribute.String("cylinder.id", m.CylinderID),
		attribute.String("maintenance.type", string(m.Type)),
	)
	err := r.next.CreateMaintenance(ctx, m)
	end(span, err)
	return err
}

func (r *TracingRepository) GetMaintenance(ctx context.Context, id string) (domain.MaintenanceRecord, error) {
	ctx, span := r.start(ctx, "MaintenanceRepository.Get",
		attribute.String("maintenance.id", id),
	)
	m, err := r.next.GetMaintenance(ctx, id)
	end(span, err)
	return m, err
}

func (r *TracingRepository) ListMaintenance(ctx context.Context, filter domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	ctx, span := r.start(ctx, "MaintenanceRepository.List",
		attribute.Int("filter.limit", filter.Limit),
		attribute.Int("filter.offset", filter.Offset),
	)
	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	records, err := r.next.ListMaintenance(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(records)))
	}
	end(span, err)
	return records, err
}

func (r *TracingRepository) UpdateMaintenance(ctx context.Context, m domain.MaintenanceRecord) error {
	ctx, span := r.start(ctx, "MaintenanceRepository.Update",
		attribute.String("maintenance.id", m.ID),
		attribute.String("maintenance.status", string(m.Status)),
	)
	err := r.next.UpdateMaintenance(ctx, m)
	end(span, err)
	return err
}

func (r *TracingRepository) DeleteMaintenance(ctx context.Context, id string) error {
	ctx, span := r.start(ctx, "MaintenanceRepository.Delete",
		attribute.String("maintenance.id", id),
	)
	err := r.next.DeleteMaintenance(ctx, id)
	end(span, err)
	return err
}

// --- Tank ---

func (r *TracingRepository) GetTank(ctx context.Context) (domain.Tank, error) {
	ctx, span := r.start(ctx, "TankRepository.Get")
	t, err := r.next.GetTank(ctx)
	if err == nil {
		span.SetAttributes(attribute.Float64("tank.level_kg", t.CurrentLevelKg.InexactFloat64()))
	}
	end(span, err)
	return t, err
}

func (r *TracingRepository) SaveTank(ctx context.Context, t domain.Tank) error {
	ctx, span := r.start(ctx, "TankRepository.Save",
		attribute.Float64("tank.level_kg", t.CurrentLevelKg.InexactFloat64()),
		attribute.Float64("tank.capacity_kg", t.CapacityKg.InexactFloat64()),
	)
	err := r.next.SaveTank(ctx, t)
	end(span, err)
	return err
}

func (r *TracingRepository) CreateTankMovement(ctx context.Context, m domain.TankMovement) error {
	ctx, span := r.start(ctx, "TankRepository.CreateMovement",
		attribute.String("movement.id", m.ID),
		attribute.String("movement.type", string(m.MovementType)),
	)
	err := r.next.CreateTankMovement(ctx, m)
	end(span, err)
	return err
}

func (r *TracingRepository) ListTankMovements(ctx context.Context, filter domain.RecordFilter) ([]domain.TankMovement, error) {
	ctx, span := r.start(ctx, "TankRepository.ListMovements", recordFilterAttrs(filter)...)
	movements, err := r.next.ListTankMovements(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(movements)))
	}
	end(span, err)
	return movements, err
}
