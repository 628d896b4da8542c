// Package report renders the ledger as an xlsx workbook.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// ContentType is the media type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Kind selects which record types the workbook contains.
type Kind string

const (
	KindAll         Kind = "all"
	KindCylinders   Kind = "cylinders"
	KindMaintenance Kind = "maintenance"
	KindFillings    Kind = "fillings"
	KindTransfers   Kind = "transfers"
	KindTank        Kind = "tank"
)

// ErrUnknownKind is returned for a report type outside Kind.
var ErrUnknownKind = errors.New("unknown report type")

// ParseKind converts s to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAll, KindCylinders, KindMaintenance, KindFillings, KindTransfers, KindTank:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// notAvailable fills the cylinder columns of records without a cylinder.
const notAvailable = "N/A"

// Columns holds the header row of each sheet.
var Columns = map[Kind][]string{
	KindCylinders: {
		"Número de Serie", "Capacidad (kg)", "Estado", "Ubicación", "Tipo de Válvula",
		"Fecha de Fabricación", "Última Prueba Hidrostática", "Próxima Prueba Hidrostática",
		"Fecha de Creación", "Última Actualización",
	},
	KindMaintenance: {
		"Serial del Cilindro", "Capacidad del Cilindro (kg)", "Tipo de Mantenimiento",
		"Descripción", "Técnico", "Fecha Realizada", "Estado", "Costo", "Partes Reemplazadas",
		"Próximo Mantenimiento", "Notas", "Fecha de Creación", "Última Actualización",
	},
	KindFillings: {
		"Serial del Cilindro", "Capacidad del Cilindro (kg)", "Cantidad Llenada (kg)",
		"Operador", "Estado", "Motivo de Rechazo", "Fecha y Hora", "Fecha de Creación",
	},
	KindTransfers: {
		"Serial del Cilindro", "Capacidad del Cilindro (kg)", "Desde", "Hacia", "Operador",
		"Notas", "Cliente", "Capacidad del Lote (kg)", "Cantidad de Cilindros",
		"Número de Guía", "Conductor", "Fecha y Hora", "Fecha de Creación",
	},
	KindTank: {
		"Tipo de Movimiento", "Cantidad (kg)", "Operador", "Proveedor", "Notas",
		"Fecha y Hora", "Fecha de Creación",
	},
}

type sheet struct {
	kind Kind
	name string
	rows func(domain.Snapshot) [][]any
}

// sheets lists the workbook sheets in output order.
var sheets = []sheet{
	{KindCylinders, "Cilindros", cylinderRows},
	{KindMaintenance, "Mantenimiento", maintenanceRows},
	{KindFillings, "Llenados", fillingRows},
	{KindTransfers, "Traslados", transferRows},
	{KindTank, "Movimientos Tanque", movementRows},
}

// SheetName returns the sheet title used for kind.
func SheetName(kind Kind) string {
	for _, s := range sheets {
		if s.kind == kind {
			return s.name
		}
	}
	return ""
}

// Build renders snap into a workbook holding the sheets selected by kind.
func Build(snap domain.Snapshot, kind Kind) (*excelize.File, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	first := true

	for _, s := range sheets {
		if kind != KindAll && kind != s.kind {
			continue
		}

		if first {
			if err := f.SetSheetName(defaultSheet, s.name); err != nil {
				return nil, fmt.Errorf("naming sheet %s: %w", s.name, err)
			}
			first = false
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", s.name, err)
		}

		if err := writeSheet(f, s.name, Columns[s.kind], s.rows(snap)); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, header []string, rows [][]any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

// FileName returns the download name for a workbook built on now's date.
func FileName(kind Kind, now time.Time) string {
	return fmt.Sprintf("reporte_%s_%s.xlsx", kind, now.Format(time.DateOnly))
}

func cylinderRows(snap domain.Snapshot) [][]any {
	rows := make([][]any, 0, len(snap.Cylinders))
	for _, c := range snap.Cylinders {
		rows = append(rows, []any{
			c.SerialNumber,
			kg(c.CapacityKg),
			string(c.State),
			string(c.Location),
			string(c.ValveType),
			date(c.ManufactureDate),
			date(c.LastHydrostaticTest),
			date(c.NextHydrostaticTest),
			timestamp(c.CreatedAt),
			timestamp(c.UpdatedAt),
		})
	}
	return rows
}

func maintenanceRows(snap domain.Snapshot) [][]any {
	rows := make([][]any, 0, len(snap.Maintenance))
	for _, m := range snap.Maintenance {
		serial, capacity := ref(m.Cylinder)
		var cost any = ""
		if m.Cost != nil {
			cost = kg(*m.Cost)
		}
		rows = append(rows, []any{
			serial,
			capacity,
			string(m.Type),
			m.Description,
			m.Technician,
			m.DatePerformed.Format(time.DateOnly),
			string(m.Status),
			cost,
			m.PartsReplaced,
			date(m.NextMaintenanceDate),
			m.Notes,
			timestamp(m.CreatedAt),
			timestamp(m.UpdatedAt),
		})
	}
	return rows
}

func fillingRows(snap domain.Snapshot) [][]any {
	rows := make([][]any, 0, len(snap.Fillings))
	for _, f := range snap.Fillings {
		serial, capacity := ref(f.Cylinder)
		rows = append(rows, []any{
			serial,
			capacity,
			kg(f.AmountKg),
			f.Operator,
			string(f.Status),
			f.RejectionReason,
			timestamp(f.DateTime),
			timestamp(f.CreatedAt),
		})
	}
	return rows
}

func transferRows(snap domain.Snapshot) [][]any {
	rows := make([][]any, 0, len(snap.Transfers))
	for _, t := range snap.Transfers {
		serial, capacity := ref(t.Cylinder)
		row := []any{
			serial,
			capacity,
			string(t.FromLocation),
			string(t.ToLocation),
			t.Operator,
			t.Notes,
		}
		if b := t.Batch; b != nil {
			row = append(row, b.ClientName, kg(b.CapacityKg), b.Quantity, b.DeliveryNoteNumber, b.DriverName)
		} else {
			row = append(row, "", "", "", "", "")
		}
		row = append(row, timestamp(t.DateTime), timestamp(t.CreatedAt))
		rows = append(rows, row)
	}
	return rows
}

func movementRows(snap domain.Snapshot) [][]any {
	rows := make([][]any, 0, len(snap.TankMovements))
	for _, m := range snap.TankMovements {
		rows = append(rows, []any{
			string(m.MovementType),
			kg(m.AmountKg),
			m.Operator,
			m.Supplier,
			m.Notes,
			timestamp(m.DateTime),
			timestamp(m.CreatedAt),
		})
	}
	return rows
}

func ref(r *domain.CylinderRef) (any, any) {
	if r == nil {
		return notAvailable, notAvailable
	}
	return r.SerialNumber, kg(r.CapacityKg)
}

func kg(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
