package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

// TankResponse is the API representation of the bulk tank.
type TankResponse struct {
	CurrentLevelKg float64 `json:"current_level_kg" doc:"Current level in kg"`
	CapacityKg     float64 `json:"capacity_kg" doc:"Capacity in kg"`
	Percentage     float64 `json:"percentage" doc:"Fill percentage, one decimal"`
	Alert          string  `json:"alert" doc:"none, low or critical"`
	LastUpdated    string  `json:"last_updated" doc:"Last change (ISO 8601)"`
	Operator       string  `json:"operator,omitempty" doc:"Operator of the last change"`
	Notes          string  `json:"notes,omitempty" doc:"Free-form notes"`
}

func toTankResponse(t domain.Tank) TankResponse {
	return TankResponse{
		CurrentLevelKg: kg(t.CurrentLevelKg),
		CapacityKg:     kg(t.CapacityKg),
		Percentage:     t.Percentage().InexactFloat64(),
		Alert:          string(t.Alert()),
		LastUpdated:    formatTime(t.LastUpdated),
		Operator:       t.Operator,
		Notes:          t.Notes,
	}
}

// MovementResponse is the API representation of a tank movement.
type MovementResponse struct {
	ID           string  `json:"id" doc:"Unique identifier"`
	MovementType string  `json:"movement_type" doc:"entry or exit"`
	AmountKg     float64 `json:"amount_kg" doc:"Declared amount in kg"`
	Operator     string  `json:"operator" doc:"Operator name"`
	Supplier     string  `json:"supplier,omitempty" doc:"Supplier (entries)"`
	Notes        string  `json:"notes,omitempty" doc:"Free-form notes"`
	FillingID    string  `json:"filling_id,omitempty" doc:"Filling that generated this exit"`
	DateTime     string  `json:"date_time" doc:"When the movement happened (ISO 8601)"`
	CreatedAt    string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toMovementResponse(m domain.TankMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		MovementType: string(m.MovementType),
		AmountKg:     kg(m.AmountKg),
		Operator:     m.Operator,
		Supplier:     m.Supplier,
		Notes:        m.Notes,
		FillingID:    m.FillingID,
		DateTime:     formatTime(m.DateTime),
		CreatedAt:    formatTime(m.CreatedAt),
	}
}

// MovementOutcomeResponse reports a recorded movement and the resulting tank.
type MovementOutcomeResponse struct {
	Movement  MovementResponse `json:"movement"`
	Tank      TankResponse     `json:"tank"`
	AppliedKg float64          `json:"applied_kg" doc:"Amount that actually changed the level"`
	Clamped   bool             `json:"clamped" doc:"Set when the level hit zero or capacity"`
}

// --- Get / Configure Tank ---

type TankOutput struct {
	Body TankResponse
}

type ConfigureTankInput struct {
	Body struct {
		CapacityKg     float64 `json:"capacity_kg" doc:"Capacity in kg"`
		CurrentLevelKg float64 `json:"current_level_kg" doc:"Current level in kg"`
		Operator       string  `json:"operator,omitempty" doc:"Operator name"`
		Notes          string  `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

// --- Movements ---

type RecordMovementInput struct {
	Body struct {
		MovementType string  `json:"movement_type" enum:"entry,exit" doc:"entry or exit"`
		AmountKg     float64 `json:"amount_kg" doc:"Amount in kg"`
		Operator     string  `json:"operator" minLength:"1" doc:"Operator name"`
		Supplier     string  `json:"supplier,omitempty" doc:"Supplier (entries only)"`
		Notes        string  `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type RecordMovementOutput struct {
	Body MovementOutcomeResponse
}

type ListMovementsInput struct {
	Since  string `query:"since" required:"false" doc:"Inclusive lower bound (RFC 3339)"`
	Until  string `query:"until" required:"false" doc:"Exclusive upper bound (RFC 3339)"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListMovementsOutput struct {
	Body []MovementResponse
}

func registerTank(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-tank",
		Method:      http.MethodGet,
		Path:        "/api/v1/tank",
		Summary:     "Get the tank snapshot",
		Tags:        []string{"Tank"},
	}, func(ctx context.Context, _ *struct{}) (*TankOutput, error) {
		tank, err := svc.GetTank(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TankOutput{Body: toTankResponse(tank)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "configure-tank",
		Method:      http.MethodPut,
		Path:        "/api/v1/tank",
		Summary:     "Set the tank capacity and level",
		Tags:        []string{"Tank"},
	}, func(ctx context.Context, input *ConfigureTankInput) (*TankOutput, error) {
		tank, err := svc.ConfigureTank(ctx, domain.TankUpdate{
			CapacityKg:     decimal.NewFromFloat(input.Body.CapacityKg),
			CurrentLevelKg: decimal.NewFromFloat(input.Body.CurrentLevelKg),
			Operator:       input.Body.Operator,
			Notes:          input.Body.Notes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TankOutput{Body: toTankResponse(tank)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "record-tank-movement",
		Method:        http.MethodPost,
		Path:          "/api/v1/tank/movements",
		Summary:       "Record a tank entry or exit",
		Tags:          []string{"Tank"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RecordMovementInput) (*RecordMovementOutput, error) {
		out, err := svc.RecordTankMovement(ctx, domain.NewTankMovement{
			MovementType: domain.MovementType(input.Body.MovementType),
			AmountKg:     decimal.NewFromFloat(input.Body.AmountKg),
			Operator:     input.Body.Operator,
			Supplier:     input.Body.Supplier,
			Notes:        input.Body.Notes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RecordMovementOutput{Body: MovementOutcomeResponse{
			Movement:  toMovementResponse(out.Movement),
			Tank:      toTankResponse(out.Tank),
			AppliedKg: kg(out.AppliedKg),
			Clamped:   out.Clamped,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tank-movements",
		Method:      http.MethodGet,
		Path:        "/api/v1/tank/movements",
		Summary:     "List tank movements, newest first",
		Tags:        []string{"Tank"},
	}, func(ctx context.Context, input *ListMovementsInput) (*ListMovementsOutput, error) {
		filter, err := recordFilter("", input.Since, input.Until, input.Limit, input.Offset)
		if err != nil {
			return nil, toHumaError(err)
		}

		movements, err := svc.ListTankMovements(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]MovementResponse, len(movements))
		for i, m := range movements {
			resp[i] = toMovementResponse(m)
		}
		return &ListMovementsOutput{Body: resp}, nil
	})
}
