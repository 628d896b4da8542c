package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

const maintenanceSelect = `SELECT m.id, m.cylinder_id, m.maintenance_type, m.description, m.technician,
	m.date_performed, m.cost, m.parts_replaced, m.next_maintenance_date, m.status, m.notes,
	m.created_at, m.updated_at,
	c.serial_number AS cylinder_serial, c.capacity_kg AS cylinder_capacity
	FROM maintenance_records m LEFT JOIN cylinders c ON c.id = m.cylinder_id`

type maintenanceRow struct {
	ID                  string              `db:"id"`
	CylinderID          string              `db:"cylinder_id"`
	Type                string              `db:"maintenance_type"`
	Description         string              `db:"description"`
	Technician          string              `db:"technician"`
	DatePerformed       string              `db:"date_performed"`
	Cost                decimal.NullDecimal `db:"cost"`
	PartsReplaced       sql.NullString      `db:"parts_replaced"`
	NextMaintenanceDate sql.NullString      `db:"next_maintenance_date"`
	Status              string              `db:"status"`
	Notes               sql.NullString      `db:"notes"`
	CreatedAt           string              `db:"created_at"`
	UpdatedAt           string              `db:"updated_at"`
	CylinderSerial      sql.NullString      `db:"cylinder_serial"`
	CylinderCapacity    decimal.NullDecimal `db:"cylinder_capacity"`
}

func (r maintenanceRow) toDomain() (domain.MaintenanceRecord, error) {
	m := domain.MaintenanceRecord{
		ID:            r.ID,
		CylinderID:    r.CylinderID,
		Type:          domain.MaintenanceType(r.Type),
		Description:   r.Description,
		Technician:    r.Technician,
		PartsReplaced: r.PartsReplaced.String,
		Status:        domain.MaintenanceStatus(r.Status),
		Notes:         r.Notes.String,
		Cylinder:      cylinderRef(r.CylinderSerial, r.CylinderCapacity),
	}
	if r.Cost.Valid {
		cost := r.Cost.Decimal
		m.Cost = &cost
	}

	var err error
	if m.DatePerformed, err = parseTime(r.DatePerformed); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if m.NextMaintenanceDate, err = parseNullTime(r.NextMaintenanceDate); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if m.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	if m.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	return m, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (s *Store) CreateMaintenance(ctx context.Context, m domain.MaintenanceRecord) error {
	_, err := s.q.ExecContext(ctx, s.rebind(
		`INSERT INTO maintenance_records (id, cylinder_id, maintenance_type, description, technician,
		 date_performed, cost, parts_replaced, next_maintenance_date, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.CylinderID, string(m.Type), m.Description, m.Technician,
		s.dateArg(&m.DatePerformed), nullDecimal(m.Cost), nullString(m.PartsReplaced),
		s.dateArg(m.NextMaintenanceDate), string(m.Status), nullString(m.Notes),
		s.timeArg(m.CreatedAt), s.timeArg(m.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCylinderNotFound
		}
		return fmt.Errorf("inserting maintenance record: %w", err)
	}
	return nil
}

func (s *Store) GetMaintenance(ctx context.Context, id string) (domain.MaintenanceRecord, error) {
	var row maintenanceRow
	if err := s.q.GetContext(ctx, &row, s.rebind(maintenanceSelect+` WHERE m.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
		}
		return domain.MaintenanceRecord{}, fmt.Errorf("scanning maintenance record: %w", err)
	}
	return row.toDomain()
}

func (s *Store) ListMaintenance(ctx context.Context, filter domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	var where []string
	var args []any

	if filter.CylinderID != "" {
		where = append(where, "m.cylinder_id = ?")
		args = append(args, filter.CylinderID)
	}
	if filter.Status != nil {
		where = append(where, "m.status = ?")
		args = append(args, string(*filter.Status))
	}

	query, args := s.finish(maintenanceSelect, where, args,
		"m.date_performed DESC, m.created_at DESC, m.id", filter.Limit, filter.Offset)

	var rows []maintenanceRow
	if err := s.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing maintenance records: %w", err)
	}

	out := make([]domain.MaintenanceRecord, 0, len(rows))
	for _, r := range rows {
		m, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) UpdateMaintenance(ctx context.Context, m domain.MaintenanceRecord) error {
	result, err := s.q.ExecContext(ctx, s.rebind(
		`UPDATE maintenance_records SET status = ?, cost = ?, notes = ?, parts_replaced = ?,
		 next_maintenance_date = ?, updated_at = ?
		 WHERE id = ?`),
		string(m.Status), nullDecimal(m.Cost), nullString(m.Notes), nullString(m.PartsReplaced),
		s.dateArg(m.NextMaintenanceDate), s.timeArg(m.UpdatedAt),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating maintenance record: %w", err)
	}
	return expectOneRow(result, domain.ErrMaintenanceNotFound)
}

func (s *Store) DeleteMaintenance(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, s.rebind(`DELETE FROM maintenance_records WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting maintenance record: %w", err)
	}
	return expectOneRow(result, domain.ErrMaintenanceNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
