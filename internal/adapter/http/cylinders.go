package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

// CylinderResponse is the API representation of a cylinder.
type CylinderResponse struct {
	ID                  string  `json:"id" doc:"Unique identifier"`
	SerialNumber        string  `json:"serial_number" doc:"Serial number"`
	CapacityKg          float64 `json:"capacity_kg" doc:"Capacity in kg"`
	ValveType           string  `json:"valve_type" doc:"Fitted valve"`
	ManufactureDate     *string `json:"manufacture_date,omitempty" doc:"Manufacture date (YYYY-MM-DD)"`
	LastHydrostaticTest *string `json:"last_hydrostatic_test,omitempty" doc:"Last hydrostatic test (YYYY-MM-DD)"`
	NextHydrostaticTest *string `json:"next_hydrostatic_test,omitempty" doc:"Next hydrostatic test (YYYY-MM-DD)"`
	State               string  `json:"state" doc:"Fill/service state"`
	Location            string  `json:"location" doc:"Current location"`
	CreatedAt           string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt           string  `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toCylinderResponse(c domain.Cylinder) CylinderResponse {
	return CylinderResponse{
		ID:                  c.ID,
		SerialNumber:        c.SerialNumber,
		CapacityKg:          kg(c.CapacityKg),
		ValveType:           string(c.ValveType),
		ManufactureDate:     formatDate(c.ManufactureDate),
		LastHydrostaticTest: formatDate(c.LastHydrostaticTest),
		NextHydrostaticTest: formatDate(c.NextHydrostaticTest),
		State:               string(c.State),
		Location:            string(c.Location),
		CreatedAt:           formatTime(c.CreatedAt),
		UpdatedAt:           formatTime(c.UpdatedAt),
	}
}

func toCylinderResponses(cylinders []domain.Cylinder) []CylinderResponse {
	resp := make([]CylinderResponse, len(cylinders))
	for i, c := range cylinders {
		resp[i] = toCylinderResponse(c)
	}
	return resp
}

// --- Register Cylinder ---

type RegisterCylinderInput struct {
	Body struct {
		SerialNumber        string  `json:"serial_number" minLength:"1" maxLength:"100" doc:"Unique serial number"`
		CapacityKg          float64 `json:"capacity_kg" doc:"Capacity in kg"`
		ValveType           string  `json:"valve_type,omitempty" enum:"standard,safety,pressure_relief" doc:"Fitted valve (default standard)"`
		ManufactureDate     string  `json:"manufacture_date,omitempty" doc:"Manufacture date (YYYY-MM-DD)"`
		LastHydrostaticTest string  `json:"last_hydrostatic_test,omitempty" doc:"Last hydrostatic test (YYYY-MM-DD)"`
		NextHydrostaticTest string  `json:"next_hydrostatic_test,omitempty" doc:"Next hydrostatic test (YYYY-MM-DD)"`
	}
}

type CylinderOutput struct {
	Body CylinderResponse
}

// --- Get Cylinder ---

type GetCylinderInput struct {
	ID string `path:"id" doc:"Cylinder ID"`
}

type GetCylinderBySerialInput struct {
	Serial string `path:"serial" doc:"Cylinder serial number"`
}

// --- List Cylinders ---

type ListCylindersInput struct {
	State    string `query:"state" required:"false" doc:"Filter by state"`
	Location string `query:"location" required:"false" doc:"Filter by location"`
	Limit    int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset   int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListCylindersOutput struct {
	Body []CylinderResponse
}

// --- Update Cylinder ---

type UpdateCylinderInput struct {
	ID   string `path:"id" doc:"Cylinder ID"`
	Body struct {
		State               *string `json:"state,omitempty" doc:"New state"`
		Location            *string `json:"location,omitempty" doc:"New location"`
		ValveType           *string `json:"valve_type,omitempty" doc:"New valve type"`
		ManufactureDate     *string `json:"manufacture_date,omitempty" doc:"Manufacture date (YYYY-MM-DD)"`
		LastHydrostaticTest *string `json:"last_hydrostatic_test,omitempty" doc:"Last hydrostatic test (YYYY-MM-DD)"`
		NextHydrostaticTest *string `json:"next_hydrostatic_test,omitempty" doc:"Next hydrostatic test (YYYY-MM-DD)"`
	}
}

// --- Transition ---

type CylinderEventInput struct {
	ID   string `path:"id" doc:"Cylinder ID"`
	Body struct {
		Event string `json:"event" doc:"Lifecycle event to trigger" enum:"start_filling,approve_filling,discharge,send_to_maintenance,release,retire,reinstate"`
	}
}

func registerCylinders(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-cylinder",
		Method:        http.MethodPost,
		Path:          "/api/v1/cylinders",
		Summary:       "Register a new cylinder",
		Tags:          []string{"Cylinders"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterCylinderInput) (*CylinderOutput, error) {
		in := domain.NewCylinder{
			SerialNumber: input.Body.SerialNumber,
			CapacityKg:   decimal.NewFromFloat(input.Body.CapacityKg),
			ValveType:    domain.ValveType(input.Body.ValveType),
		}

		var err error
		if in.ManufactureDate, err = parseDate("manufacture_date", input.Body.ManufactureDate); err != nil {
			return nil, toHumaError(err)
		}
		if in.LastHydrostaticTest, err = parseDate("last_hydrostatic_test", input.Body.LastHydrostaticTest); err != nil {
			return nil, toHumaError(err)
		}
		if in.NextHydrostaticTest, err = parseDate("next_hydrostatic_test", input.Body.NextHydrostaticTest); err != nil {
			return nil, toHumaError(err)
		}

		cylinder, err := svc.RegisterCylinder(ctx, in)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CylinderOutput{Body: toCylinderResponse(cylinder)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-cylinder",
		Method:      http.MethodGet,
		Path:        "/api/v1/cylinders/{id}",
		Summary:     "Get a cylinder by ID",
		Tags:        []string{"Cylinders"},
	}, func(ctx context.Context, input *GetCylinderInput) (*CylinderOutput, error) {
		cylinder, err := svc.GetCylinder(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CylinderOutput{Body: toCylinderResponse(cylinder)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-cylinder-by-serial",
		Method:      http.MethodGet,
		Path:        "/api/v1/cylinders/serial/{serial}",
		Summary:     "Get a cylinder by serial number",
		Tags:        []string{"Cylinders"},
	}, func(ctx context.Context, input *GetCylinderBySerialInput) (*CylinderOutput, error) {
		cylinder, err := svc.GetCylinderBySerial(ctx, input.Serial)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CylinderOutput{Body: toCylinderResponse(cylinder)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-cylinders",
		Method:      http.MethodGet,
		Path:        "/api/v1/cylinders",
		Summary:     "List cylinders",
		Tags:        []string{"Cylinders"},
	}, func(ctx context.Context, input *ListCylindersInput) (*ListCylindersOutput, error) {
		filter := domain.CylinderFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.State != "" {
			s := domain.CylinderState(input.State)
			filter.State = &s
		}
		if input.Location != "" {
			l := domain.Location(input.Location)
			filter.Location = &l
		}

		cylinders, err := svc.ListCylinders(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListCylindersOutput{Body: toCylinderResponses(cylinders)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-cylinder",
		Method:      http.MethodPatch,
		Path:        "/api/v1/cylinders/{id}",
		Summary:     "Edit a cylinder directly",
		Tags:        []string{"Cylinders"},
	}, func(ctx context.Context, input *UpdateCylinderInput) (*CylinderOutput, error) {
		b := input.Body
		var u domain.CylinderUpdate
		if b.State != nil {
			s := domain.CylinderState(*b.State)
			u.State = &s
		}
		if b.Location != nil {
			l := domain.Location(*b.Location)
			u.Location = &l
		}
		if b.ValveType != nil {
			v := domain.ValveType(*b.ValveType)
			u.ValveType = &v
		}

		var err error
		if b.ManufactureDate != nil {
			if u.ManufactureDate, err = parseDate("manufacture_date", *b.ManufactureDate); err != nil {
				return nil, toHumaError(err)
			}
		}
		if b.LastHydrostaticTest != nil {
			if u.LastHydrostaticTest, err = parseDate("last_hydrostatic_test", *b.LastHydrostaticTest); err != nil {
				return nil, toHumaError(err)
			}
		}
		if b.NextHydrostaticTest != nil {
			if u.NextHydrostaticTest, err = parseDate("next_hydrostatic_test", *b.NextHydrostaticTest); err != nil {
				return nil, toHumaError(err)
			}
		}

		cylinder, err := svc.UpdateCylinder(ctx, input.ID, u)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CylinderOutput{Body: toCylinderResponse(cylinder)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-cylinder",
		Method:      http.MethodPost,
		Path:        "/api/v1/cylinders/{id}/events",
		Summary:     "Trigger a lifecycle event",
		Tags:        []string{"Cylinders"},
	}, func(ctx context.Context, input *CylinderEventInput) (*CylinderOutput, error) {
		cylinder, err := svc.ApplyCylinderEvent(ctx, input.ID, domain.Event(input.Body.Event))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CylinderOutput{Body: toCylinderResponse(cylinder)}, nil
	})
}
