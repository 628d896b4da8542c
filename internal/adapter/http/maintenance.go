package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

// MaintenanceResponse is the API representation of a maintenance record.
type MaintenanceResponse struct {
	ID                  string               `json:"id" doc:"Unique identifier"`
	CylinderID          string               `json:"cylinder_id" doc:"Serviced cylinder"`
	MaintenanceType     string               `json:"maintenance_type" doc:"Kind of intervention"`
	Description         string               `json:"description" doc:"What was done"`
	Technician          string               `json:"technician" doc:"Technician name"`
	DatePerformed       string               `json:"date_performed" doc:"Date performed (YYYY-MM-DD)"`
	Cost                *float64             `json:"cost,omitempty" doc:"Cost"`
	PartsReplaced       string               `json:"parts_replaced,omitempty" doc:"Replaced parts"`
	NextMaintenanceDate *string              `json:"next_maintenance_date,omitempty" doc:"Next maintenance (YYYY-MM-DD)"`
	Status              string               `json:"status" doc:"Progress status"`
	Notes               string               `json:"notes,omitempty" doc:"Free-form notes"`
	CreatedAt           string               `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt           string               `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
	Cylinder            *CylinderRefResponse `json:"cylinder,omitempty" doc:"Cylinder summary"`
}

func toMaintenanceResponse(m domain.MaintenanceRecord) MaintenanceResponse {
	resp := MaintenanceResponse{
		ID:                  m.ID,
		CylinderID:          m.CylinderID,
		MaintenanceType:     string(m.Type),
		Description:         m.Description,
		Technician:          m.Technician,
		DatePerformed:       m.DatePerformed.Format(time.DateOnly),
		PartsReplaced:       m.PartsReplaced,
		NextMaintenanceDate: formatDate(m.NextMaintenanceDate),
		Status:              string(m.Status),
		Notes:               m.Notes,
		CreatedAt:           formatTime(m.CreatedAt),
		UpdatedAt:           formatTime(m.UpdatedAt),
		Cylinder:            toCylinderRef(m.Cylinder),
	}
	if m.Cost != nil {
		c := kg(*m.Cost)
		resp.Cost = &c
	}
	return resp
}

func toDecimalPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

// --- Record Maintenance ---

type RecordMaintenanceInput struct {
	Body struct {
		CylinderID          string   `json:"cylinder_id" minLength:"1" doc:"Serviced cylinder"`
		MaintenanceType     string   `json:"maintenance_type" enum:"preventivo,correctivo,prueba_hidrostatica,inspeccion,reparacion" doc:"Kind of intervention"`
		Description         string   `json:"description" minLength:"1" doc:"What was done"`
		Technician          string   `json:"technician" minLength:"1" doc:"Technician name"`
		DatePerformed       string   `json:"date_performed,omitempty" doc:"Date performed (YYYY-MM-DD, default today)"`
		Cost                *float64 `json:"cost,omitempty" doc:"Cost"`
		PartsReplaced       string   `json:"parts_replaced,omitempty" doc:"Replaced parts"`
		NextMaintenanceDate string   `json:"next_maintenance_date,omitempty" doc:"Next maintenance (YYYY-MM-DD)"`
		Status              string   `json:"status,omitempty" enum:"pendiente,en_proceso,completado,cancelado" doc:"Progress status (default pendiente)"`
		Notes               string   `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type MaintenanceOutput struct {
	Body MaintenanceResponse
}

// --- Get / Delete Maintenance ---

type MaintenanceIDInput struct {
	ID string `path:"id" doc:"Maintenance record ID"`
}

// --- List Maintenance ---

type ListMaintenanceInput struct {
	CylinderID string `query:"cylinder_id" required:"false" doc:"Filter by cylinder"`
	Status     string `query:"status" required:"false" doc:"Filter by status"`
	Limit      int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset     int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListMaintenanceOutput struct {
	Body []MaintenanceResponse
}

// --- Update Maintenance ---

type UpdateMaintenanceInput struct {
	ID   string `path:"id" doc:"Maintenance record ID"`
	Body struct {
		Status              *string  `json:"status,omitempty" doc:"New status"`
		Cost                *float64 `json:"cost,omitempty" doc:"New cost"`
		Notes               *string  `json:"notes,omitempty" doc:"New notes"`
		PartsReplaced       *string  `json:"parts_replaced,omitempty" doc:"New replaced parts"`
		NextMaintenanceDate *string  `json:"next_maintenance_date,omitempty" doc:"Next maintenance (YYYY-MM-DD)"`
	}
}

func registerMaintenance(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-maintenance",
		Method:        http.MethodPost,
		Path:          "/api/v1/maintenance",
		Summary:       "Record a maintenance intervention",
		Tags:          []string{"Maintenance"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RecordMaintenanceInput) (*MaintenanceOutput, error) {
		b := input.Body
		in := domain.NewMaintenance{
			CylinderID:    b.CylinderID,
			Type:          domain.MaintenanceType(b.MaintenanceType),
			Description:   b.Description,
			Technician:    b.Technician,
			Cost:          toDecimalPtr(b.Cost),
			PartsReplaced: b.PartsReplaced,
			Status:        domain.MaintenanceStatus(b.Status),
			Notes:         b.Notes,
		}

		var err error
		if in.DatePerformed, err = parseDate("date_performed", b.DatePerformed); err != nil {
			return nil, toHumaError(err)
		}
		if in.NextMaintenanceDate, err = parseDate("next_maintenance_date", b.NextMaintenanceDate); err != nil {
			return nil, toHumaError(err)
		}

		rec, err := svc.RecordMaintenance(ctx, in)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &MaintenanceOutput{Body: toMaintenanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-maintenance",
		Method:      http.MethodGet,
		Path:        "/api/v1/maintenance/{id}",
		Summary:     "Get a maintenance record",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *MaintenanceIDInput) (*MaintenanceOutput, error) {
		rec, err := svc.GetMaintenance(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &MaintenanceOutput{Body: toMaintenanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-maintenance",
		Method:      http.MethodGet,
		Path:        "/api/v1/maintenance",
		Summary:     "List maintenance records",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *ListMaintenanceInput) (*ListMaintenanceOutput, error) {
		filter := domain.MaintenanceFilter{
			CylinderID: input.CylinderID,
			Limit:      input.Limit,
			Offset:     input.Offset,
		}
		if input.Status != "" {
			s := domain.MaintenanceStatus(input.Status)
			filter.Status = &s
		}

		records, err := svc.ListMaintenance(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]MaintenanceResponse, len(records))
		for i, m := range records {
			resp[i] = toMaintenanceResponse(m)
		}
		return &ListMaintenanceOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-maintenance",
		Method:      http.MethodPatch,
		Path:        "/api/v1/maintenance/{id}",
		Summary:     "Update a maintenance record",
		Tags:        []string{"Maintenance"},
	}, func(ctx context.Context, input *UpdateMaintenanceInput) (*MaintenanceOutput, error) {
		b := input.Body
		u := domain.MaintenanceUpdate{
			Cost:          toDecimalPtr(b.Cost),
			Notes:         b.Notes,
			PartsReplaced: b.PartsReplaced,
		}
		if b.Status != nil {
			s := domain.MaintenanceStatus(*b.Status)
			u.Status = &s
		}
		if b.NextMaintenanceDate != nil {
			next, err := parseDate("next_maintenance_date", *b.NextMaintenanceDate)
			if err != nil {
				return nil, toHumaError(err)
			}
			u.NextMaintenanceDate = next
		}

		rec, err := svc.UpdateMaintenance(ctx, input.ID, u)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &MaintenanceOutput{Body: toMaintenanceResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-maintenance",
		Method:        http.MethodDelete,
		Path:          "/api/v1/maintenance/{id}",
		Summary:       "Delete a maintenance record",
		Tags:          []string{"Maintenance"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *MaintenanceIDInput) (*struct{}, error) {
		if err := svc.DeleteMaintenance(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})
}
