package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

type transferRow struct {
	ID                 string              `db:"id"`
	CylinderID         sql.NullString      `db:"cylinder_id"`
	FromLocation       string              `db:"from_location"`
	ToLocation         string              `db:"to_location"`
	Operator           string              `db:"operator"`
	Notes              sql.NullString      `db:"notes"`
	ClientName         sql.NullString      `db:"client_name"`
	BatchCapacityKg    decimal.NullDecimal `db:"batch_capacity_kg"`
	BatchQuantity      sql.NullInt64       `db:"batch_quantity"`
	DeliveryNoteNumber sql.NullString      `db:"delivery_note_number"`
	DriverName         sql.NullString      `db:"driver_name"`
	DateTime           string              `db:"date_time"`
	CreatedAt          string              `db:"created_at"`
	CylinderSerial     sql.NullString      `db:"cylinder_serial"`
	CylinderCapacity   decimal.NullDecimal `db:"cylinder_capacity"`
}

func (r transferRow) toDomain() (domain.Transfer, error) {
	t := domain.Transfer{
		ID:           r.ID,
		CylinderID:   r.CylinderID.String,
		FromLocation: domain.Location(r.FromLocation),
		ToLocation:   domain.Location(r.ToLocation),
		Operator:     r.Operator,
		Notes:        r.Notes.String,
		Cylinder:     cylinderRef(r.CylinderSerial, r.CylinderCapacity),
	}
	if r.ClientName.Valid {
		t.Batch = &domain.Batch{
			ClientName:         r.ClientName.String,
			CapacityKg:         r.BatchCapacityKg.Decimal,
			Quantity:           int(r.BatchQuantity.Int64),
			DeliveryNoteNumber: r.DeliveryNoteNumber.String,
			DriverName:         r.DriverName.String,
		}
	}

	var err error
	if t.DateTime, err = parseTime(r.DateTime); err != nil {
		return domain.Transfer{}, err
	}
	if t.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return domain.Transfer{}, err
	}
	return t, nil
}

func (s *Store) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	var (
		clientName, deliveryNote, driver sql.NullString
		batchCapacity                    decimal.NullDecimal
		batchQuantity                    sql.NullInt64
	)
	if b := t.Batch; b != nil {
		clientName = nullString(b.ClientName)
		batchCapacity = decimal.NullDecimal{Decimal: b.CapacityKg, Valid: true}
		batchQuantity = sql.NullInt64{Int64: int64(b.Quantity), Valid: true}
		deliveryNote = nullString(b.DeliveryNoteNumber)
		driver = nullString(b.DriverName)
	}

	_, err := s.q.ExecContext(ctx, s.rebind(
		`INSERT INTO transfers (id, cylinder_id, from_location, to_location, operator, notes,
		 client_name, batch_capacity_kg, batch_quantity, delivery_note_number, driver_name,
		 date_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, nullString(t.CylinderID), string(t.FromLocation), string(t.ToLocation),
		t.Operator, nullString(t.Notes),
		clientName, batchCapacity, batchQuantity, deliveryNote, driver,
		s.timeArg(t.DateTime), s.timeArg(t.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCylinderNotFound
		}
		return fmt.Errorf("inserting transfer: %w", err)
	}
	return nil
}

func (s *Store) ListTransfers(ctx context.Context, filter domain.RecordFilter) ([]domain.Transfer, error) {
	where, args := s.recordFilter(nil, nil, filter, "t.cylinder_id", "t.date_time")
	query, args := s.finish(
		`SELECT t.id, t.cylinder_id, t.from_location, t.to_location, t.operator, t.notes,
		        t.client_name, t.batch_capacity_kg, t.batch_quantity, t.delivery_note_number,
		        t.driver_name, t.date_time, t.created_at,
		        c.serial_number AS cylinder_serial, c.capacity_kg AS cylinder_capacity
		 FROM transfers t LEFT JOIN cylinders c ON c.id = t.cylinder_id`,
		where, args, "t.date_time DESC, t.created_at DESC, t.id", filter.Limit, filter.Offset)

	var rows []transferRow
	if err := s.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}

	out := make([]domain.Transfer, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
