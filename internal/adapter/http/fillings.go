package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

// FillingResponse is the API representation of a filling.
type FillingResponse struct {
	ID              string               `json:"id" doc:"Unique identifier"`
	CylinderID      string               `json:"cylinder_id" doc:"Filled cylinder"`
	Operator        string               `json:"operator" doc:"Operator name"`
	AmountKg        float64              `json:"amount_kg" doc:"Filled amount in kg (0 when rejected)"`
	Status          string               `json:"status" doc:"approved or rejected"`
	RejectionReason string               `json:"rejection_reason,omitempty" doc:"Why the filling was rejected"`
	DateTime        string               `json:"date_time" doc:"When the filling happened (ISO 8601)"`
	CreatedAt       string               `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	Cylinder        *CylinderRefResponse `json:"cylinder,omitempty" doc:"Cylinder summary"`
}

func toFillingResponse(f domain.Filling) FillingResponse {
	return FillingResponse{
		ID:              f.ID,
		CylinderID:      f.CylinderID,
		Operator:        f.Operator,
		AmountKg:        kg(f.AmountKg),
		Status:          string(f.Status),
		RejectionReason: f.RejectionReason,
		DateTime:        formatTime(f.DateTime),
		CreatedAt:       formatTime(f.CreatedAt),
		Cylinder:        toCylinderRef(f.Cylinder),
	}
}

// FillingOutcomeResponse reports a recorded filling and its side effects.
type FillingOutcomeResponse struct {
	Filling       FillingResponse  `json:"filling"`
	Cylinder      CylinderResponse `json:"cylinder" doc:"Cylinder after the filling"`
	Tank          *TankResponse    `json:"tank,omitempty" doc:"Tank after the deduction (approved fillings only)"`
	TankUnderflow bool             `json:"tank_underflow" doc:"Set when the amount exceeded the tank level"`
}

// --- Record Filling ---

type RecordFillingInput struct {
	Body struct {
		CylinderID      string  `json:"cylinder_id" minLength:"1" doc:"Cylinder to fill"`
		Operator        string  `json:"operator" minLength:"1" doc:"Operator name"`
		Status          string  `json:"status" enum:"approved,rejected" doc:"Outcome of the filling"`
		AmountKg        float64 `json:"amount_kg,omitempty" doc:"Filled amount in kg (approved only)"`
		RejectionReason string  `json:"rejection_reason,omitempty" doc:"Required when rejected"`
	}
}

type RecordFillingOutput struct {
	Body FillingOutcomeResponse
}

// --- List Fillings ---

type ListFillingsInput struct {
	CylinderID string `query:"cylinder_id" required:"false" doc:"Filter by cylinder"`
	Since      string `query:"since" required:"false" doc:"Inclusive lower bound (RFC 3339)"`
	Until      string `query:"until" required:"false" doc:"Exclusive upper bound (RFC 3339)"`
	Limit      int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset     int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListFillingsOutput struct {
	Body []FillingResponse
}

func registerFillings(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-filling",
		Method:        http.MethodPost,
		Path:          "/api/v1/fillings",
		Summary:       "Record a filling",
		Tags:          []string{"Fillings"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RecordFillingInput) (*RecordFillingOutput, error) {
		out, err := svc.RecordFilling(ctx, domain.NewFilling{
			CylinderID:      input.Body.CylinderID,
			Operator:        input.Body.Operator,
			Status:          domain.FillingStatus(input.Body.Status),
			AmountKg:        decimal.NewFromFloat(input.Body.AmountKg),
			RejectionReason: input.Body.RejectionReason,
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := FillingOutcomeResponse{
			Filling:       toFillingResponse(out.Filling),
			Cylinder:      toCylinderResponse(out.Cylinder),
			TankUnderflow: out.TankUnderflow,
		}
		if out.Tank != nil {
			t := toTankResponse(*out.Tank)
			resp.Tank = &t
		}
		return &RecordFillingOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-fillings",
		Method:      http.MethodGet,
		Path:        "/api/v1/fillings",
		Summary:     "List fillings, newest first",
		Tags:        []string{"Fillings"},
	}, func(ctx context.Context, input *ListFillingsInput) (*ListFillingsOutput, error) {
		filter, err := recordFilter(input.CylinderID, input.Since, input.Until, input.Limit, input.Offset)
		if err != nil {
			return nil, toHumaError(err)
		}

		fillings, err := svc.ListFillings(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]FillingResponse, len(fillings))
		for i, f := range fillings {
			resp[i] = toFillingResponse(f)
		}
		return &ListFillingsOutput{Body: resp}, nil
	})
}
