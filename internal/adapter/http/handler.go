package http

import (
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/domain"
	"github.com/neomorfeo/co2ledger/internal/report"
)

// Register adds all ledger API routes to the Huma API.
func Register(api huma.API, svc *app.LedgerService) {
	registerCylinders(api, svc)
	registerFillings(api, svc)
	registerTransfers(api, svc)
	registerMaintenance(api, svc)
	registerTank(api, svc)
	registerStats(api, svc)
	registerReports(api, svc)
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return huma.Error404NotFound(err.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	if errors.Is(err, domain.ErrConflict) {
		return huma.Error409Conflict(err.Error())
	}

	if errors.Is(err, domain.ErrValidation) || errors.Is(err, report.ErrUnknownKind) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}

// CylinderRefResponse is the cylinder summary embedded in records.
type CylinderRefResponse struct {
	SerialNumber string  `json:"serial_number" doc:"Cylinder serial number"`
	CapacityKg   float64 `json:"capacity_kg" doc:"Cylinder capacity in kg"`
}

func toCylinderRef(r *domain.CylinderRef) *CylinderRefResponse {
	if r == nil {
		return nil
	}
	return &CylinderRefResponse{SerialNumber: r.SerialNumber, CapacityKg: kg(r.CapacityKg)}
}

func kg(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

// parseDate reads an optional YYYY-MM-DD field. Empty means absent.
func parseDate(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Reason: "must be a date (YYYY-MM-DD)"}
	}
	return &t, nil
}

// parseTimestamp reads an optional RFC 3339 query parameter.
func parseTimestamp(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Reason: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}

// recordFilter builds the shared listing filter of timestamped records.
func recordFilter(cylinderID, since, until string, limit, offset int) (domain.RecordFilter, error) {
	f := domain.RecordFilter{CylinderID: cylinderID, Limit: limit, Offset: offset}

	var err error
	if f.Since, err = parseTimestamp("since", since); err != nil {
		return domain.RecordFilter{}, err
	}
	if f.Until, err = parseTimestamp("until", until); err != nil {
		return domain.RecordFilter{}, err
	}
	return f, nil
}
