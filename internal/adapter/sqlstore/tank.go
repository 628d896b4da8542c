package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// The tank is a single row keyed by this id.
const tankRowID = 1

type tankRow struct {
	CurrentLevelKg decimal.Decimal `db:"current_level_kg"`
	CapacityKg     decimal.Decimal `db:"capacity_kg"`
	LastUpdated    string          `db:"last_updated"`
	Operator       sql.NullString  `db:"operator"`
	Notes          sql.NullString  `db:"notes"`
}

type movementRow struct {
	ID           string          `db:"id"`
	MovementType string          `db:"movement_type"`
	AmountKg     decimal.Decimal `db:"amount_kg"`
	Operator     string          `db:"operator"`
	Supplier     sql.NullString  `db:"supplier"`
	Notes        sql.NullString  `db:"notes"`
	FillingID    sql.NullString  `db:"filling_id"`
	DateTime     string          `db:"date_time"`
	CreatedAt    string          `db:"created_at"`
}

func (r movementRow) toDomain() (domain.TankMovement, error) {
	m := domain.TankMovement{
		ID:           r.ID,
		MovementType: domain.MovementType(r.MovementType),
		AmountKg:     r.AmountKg,
		Operator:     r.Operator,
		Supplier:     r.Supplier.String,
		Notes:        r.Notes.String,
		FillingID:    r.FillingID.String,
	}

	var err error
	if m.DateTime, err = parseTime(r.DateTime); err != nil {
		return domain.TankMovement{}, err
	}
	if m.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return domain.TankMovement{}, err
	}
	return m, nil
}

func (s *Store) GetTank(ctx context.Context) (domain.Tank, error) {
	var row tankRow
	err := s.q.GetContext(ctx, &row, s.rebind(
		`SELECT current_level_kg, capacity_kg, last_updated, operator, notes
		 FROM tank_inventory WHERE id = ?`), tankRowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tank{}, domain.ErrTankNotFound
		}
		return domain.Tank{}, fmt.Errorf("scanning tank: %w", err)
	}

	lastUpdated, err := parseTime(row.LastUpdated)
	if err != nil {
		return domain.Tank{}, err
	}
	return domain.Tank{
		CurrentLevelKg: row.CurrentLevelKg,
		CapacityKg:     row.CapacityKg,
		LastUpdated:    lastUpdated,
		Operator:       row.Operator.String,
		Notes:          row.Notes.String,
	}, nil
}

func (s *Store) SaveTank(ctx context.Context, t domain.Tank) error {
	_, err := s.q.ExecContext(ctx, s.rebind(
		`INSERT INTO tank_inventory (id, current_level_kg, capacity_kg, last_updated, operator, notes)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   current_level_kg = excluded.current_level_kg,
		   capacity_kg = excluded.capacity_kg,
		   last_updated = excluded.last_updated,
		   operator = excluded.operator,
		   notes = excluded.notes`),
		tankRowID, t.CurrentLevelKg, t.CapacityKg, s.timeArg(t.LastUpdated),
		nullString(t.Operator), nullString(t.Notes),
	)
	if err != nil {
		return fmt.Errorf("saving tank: %w", err)
	}
	return nil
}

func (s *Store) CreateTankMovement(ctx context.Context, m domain.TankMovement) error {
	_, err := s.q.ExecContext(ctx, s.rebind(
		`INSERT INTO tank_movements (id, movement_type, amount_kg, operator, supplier, notes, filling_id, date_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, string(m.MovementType), m.AmountKg, m.Operator,
		nullString(m.Supplier), nullString(m.Notes), nullString(m.FillingID),
		s.timeArg(m.DateTime), s.timeArg(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting tank movement: %w", err)
	}
	return nil
}

func (s *Store) ListTankMovements(ctx context.Context, filter domain.RecordFilter) ([]domain.TankMovement, error) {
	where, args := s.recordFilter(nil, nil, filter, "", "date_time")
	query, args := s.finish(
		`SELECT id, movement_type, amount_kg, operator, supplier, notes, filling_id, date_time, created_at
		 FROM tank_movements`,
		where, args, "date_time DESC, created_at DESC, id", filter.Limit, filter.Offset)

	var rows []movementRow
	if err := s.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing tank movements: %w", err)
	}

	out := make([]domain.TankMovement, 0, len(rows))
	for _, r := range rows {
		m, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
