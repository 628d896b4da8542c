package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

const cylinderColumns = `id, serial_number, capacity_kg, valve_type, manufacture_date,
	last_hydrostatic_test, next_hydrostatic_test, state, location, created_at, updated_at`

type cylinderRow struct {
	ID                  string          `db:"id"`
	SerialNumber        string          `db:"serial_number"`
	CapacityKg          decimal.Decimal `db:"capacity_kg"`
	ValveType           string          `db:"valve_type"`
	ManufactureDate     sql.NullString  `db:"manufacture_date"`
	LastHydrostaticTest sql.NullString  `db:"last_hydrostatic_test"`
	NextHydrostaticTest sql.NullString  `db:"next_hydrostatic_test"`
	State               string          `db:"state"`
	Location            string          `db:"location"`
	CreatedAt           string          `db:"created_at"`
	UpdatedAt           string          `db:"updated_at"`
}

func (r cylinderRow) toDomain() (domain.Cylinder, error) {
	c := domain.Cylinder{
		ID:           r.ID,
		SerialNumber: r.SerialNumber,
		CapacityKg:   r.CapacityKg,
		ValveType:    domain.ValveType(r.ValveType),
		State:        domain.CylinderState(r.State),
		Location:     domain.Location(r.Location),
	}

	var err error
	if c.ManufactureDate, err = parseNullTime(r.ManufactureDate); err != nil {
		return domain.Cylinder{}, err
	}
	if c.LastHydrostaticTest, err = parseNullTime(r.LastHydrostaticTest); err != nil {
		return domain.Cylinder{}, err
	}
	if c.NextHydrostaticTest, err = parseNullTime(r.NextHydrostaticTest); err != nil {
		return domain.Cylinder{}, err
	}
	if c.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return domain.Cylinder{}, err
	}
	if c.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return domain.Cylinder{}, err
	}
	return c, nil
}

func (s *Store) CreateCylinder(ctx context.Context, c domain.Cylinder) error {
	_, err := s.q.ExecContext(ctx, s.rebind(
		`INSERT INTO cylinders (`+cylinderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.SerialNumber, c.CapacityKg, string(c.ValveType),
		s.dateArg(c.ManufactureDate), s.dateArg(c.LastHydrostaticTest), s.dateArg(c.NextHydrostaticTest),
		string(c.State), string(c.Location),
		s.timeArg(c.CreatedAt), s.timeArg(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateSerialError{Serial: c.SerialNumber}
		}
		return fmt.Errorf("inserting cylinder: %w", err)
	}
	return nil
}

func (s *Store) GetCylinder(ctx context.Context, id string) (domain.Cylinder, error) {
	return s.getCylinder(ctx, `SELECT `+cylinderColumns+` FROM cylinders WHERE id = ?`, id)
}

func (s *Store) GetCylinderBySerial(ctx context.Context, serial string) (domain.Cylinder, error) {
	return s.getCylinder(ctx, `SELECT `+cylinderColumns+` FROM cylinders WHERE serial_number = ?`, serial)
}

func (s *Store) getCylinder(ctx context.Context, query string, arg any) (domain.Cylinder, error) {
	var row cylinderRow
	if err := s.q.GetContext(ctx, &row, s.rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cylinder{}, domain.ErrCylinderNotFound
		}
		return domain.Cylinder{}, fmt.Errorf("scanning cylinder: %w", err)
	}
	return row.toDomain()
}

func (s *Store) ListCylinders(ctx context.Context, filter domain.CylinderFilter) ([]domain.Cylinder, error) {
	var where []string
	var args []any

	if filter.State != nil {
		where = append(where, "state = ?")
		args = append(args, string(*filter.State))
	}
	if filter.Location != nil {
		where = append(where, "location = ?")
		args = append(args, string(*filter.Location))
	}

	query, args := s.finish(`SELECT `+cylinderColumns+` FROM cylinders`,
		where, args, "created_at DESC, serial_number", filter.Limit, filter.Offset)

	var rows []cylinderRow
	if err := s.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing cylinders: %w", err)
	}

	out := make([]domain.Cylinder, 0, len(rows))
	for _, r := range rows {
		c, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) UpdateCylinder(ctx context.Context, c domain.Cylinder) error {
	result, err := s.q.ExecContext(ctx, s.rebind(
		`UPDATE cylinders SET serial_number = ?, capacity_kg = ?, valve_type = ?,
		 manufacture_date = ?, last_hydrostatic_test = ?, next_hydrostatic_test = ?,
		 state = ?, location = ?, updated_at = ?
		 WHERE id = ?`),
		c.SerialNumber, c.CapacityKg, string(c.ValveType),
		s.dateArg(c.ManufactureDate), s.dateArg(c.LastHydrostaticTest), s.dateArg(c.NextHydrostaticTest),
		string(c.State), string(c.Location), s.timeArg(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateSerialError{Serial: c.SerialNumber}
		}
		return fmt.Errorf("updating cylinder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrCylinderNotFound
	}
	return nil
}
