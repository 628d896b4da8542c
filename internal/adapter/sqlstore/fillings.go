package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

type fillingRow struct {
	ID               string              `db:"id"`
	CylinderID       string              `db:"cylinder_id"`
	Operator         string              `db:"operator"`
	AmountKg         decimal.Decimal     `db:"amount_kg"`
	Status           string              `db:"status"`
	RejectionReason  sql.NullString      `db:"rejection_reason"`
	DateTime         string              `db:"date_time"`
	CreatedAt        string              `db:"created_at"`
	CylinderSerial   sql.NullString      `db:"cylinder_serial"`
	CylinderCapacity decimal.NullDecimal `db:"cylinder_capacity"`
}

func (r fillingRow) toDomain() (domain.Filling, error) {
	f := domain.Filling{
		ID:              r.ID,
		CylinderID:      r.CylinderID,
		Operator:        r.Operator,
		AmountKg:        r.AmountKg,
		Status:          domain.FillingStatus(r.Status),
		RejectionReason: r.RejectionReason.String,
		Cylinder:        cylinderRef(r.CylinderSerial, r.CylinderCapacity),
	}

	var err error
	if f.DateTime, err = parseTime(r.DateTime); err != nil {
		return domain.Filling{}, err
	}
	if f.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return domain.Filling{}, err
	}
	return f, nil
}

// cylinderRef builds the embedded cylinder summary from a LEFT JOIN.
func cylinderRef(serial sql.NullString, capacity decimal.NullDecimal) *domain.CylinderRef {
	if !serial.Valid {
		return nil
	}
	return &domain.CylinderRef{SerialNumber: serial.String, CapacityKg: capacity.Decimal}
}

func (s *Store) CreateFilling(ctx context.Context, f domain.Filling) error {
	_, err := s.q.ExecContext(ctx, s.rebind(
		`INSERT INTO fillings (id, cylinder_id, operator, amount_kg, status, rejection_reason, date_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		f.ID, f.CylinderID, f.Operator, f.AmountKg, string(f.Status),
		nullString(f.RejectionReason), s.timeArg(f.DateTime), s.timeArg(f.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCylinderNotFound
		}
		return fmt.Errorf("inserting filling: %w", err)
	}
	return nil
}

func (s *Store) ListFillings(ctx context.Context, filter domain.RecordFilter) ([]domain.Filling, error) {
	where, args := s.recordFilter(nil, nil, filter, "f.cylinder_id", "f.date_time")
	query, args := s.finish(
		`SELECT f.id, f.cylinder_id, f.operator, f.amount_kg, f.status, f.rejection_reason,
		        f.date_time, f.created_at,
		        c.serial_number AS cylinder_serial, c.capacity_kg AS cylinder_capacity
		 FROM fillings f LEFT JOIN cylinders c ON c.id = f.cylinder_id`,
		where, args, "f.date_time DESC, f.created_at DESC, f.id", filter.Limit, filter.Offset)

	var rows []fillingRow
	if err := s.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing fillings: %w", err)
	}

	out := make([]domain.Filling, 0, len(rows))
	for _, r := range rows {
		f, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
