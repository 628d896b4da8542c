package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

// BatchBody carries the client batch of an assignment or return.
type BatchBody struct {
	ClientName         string  `json:"client_name,omitempty" doc:"Client receiving or returning the batch"`
	CapacityKg         float64 `json:"cylinder_capacity_kg,omitempty" doc:"Capacity of the cylinders in the batch"`
	Quantity           int     `json:"cylinder_quantity,omitempty" doc:"Number of cylinders in the batch"`
	DeliveryNoteNumber string  `json:"delivery_note_number,omitempty" doc:"Delivery note number"`
	DriverName         string  `json:"driver_name,omitempty" doc:"Driver name"`
}

// TransferResponse is the API representation of a transfer.
type TransferResponse struct {
	ID           string               `json:"id" doc:"Unique identifier"`
	CylinderID   string               `json:"cylinder_id,omitempty" doc:"Moved cylinder (individual transfers)"`
	FromLocation string               `json:"from_location" doc:"Origin"`
	ToLocation   string               `json:"to_location" doc:"Destination"`
	Operator     string               `json:"operator" doc:"Operator name"`
	Notes        string               `json:"notes,omitempty" doc:"Free-form notes"`
	Batch        *BatchBody           `json:"batch,omitempty" doc:"Client batch (assignments and returns)"`
	DateTime     string               `json:"date_time" doc:"When the transfer happened (ISO 8601)"`
	CreatedAt    string               `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	Cylinder     *CylinderRefResponse `json:"cylinder,omitempty" doc:"Cylinder summary"`
}

func toTransferResponse(t domain.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:           t.ID,
		CylinderID:   t.CylinderID,
		FromLocation: string(t.FromLocation),
		ToLocation:   string(t.ToLocation),
		Operator:     t.Operator,
		Notes:        t.Notes,
		DateTime:     formatTime(t.DateTime),
		CreatedAt:    formatTime(t.CreatedAt),
		Cylinder:     toCylinderRef(t.Cylinder),
	}
	if b := t.Batch; b != nil {
		resp.Batch = &BatchBody{
			ClientName:         b.ClientName,
			CapacityKg:         kg(b.CapacityKg),
			Quantity:           b.Quantity,
			DeliveryNoteNumber: b.DeliveryNoteNumber,
			DriverName:         b.DriverName,
		}
	}
	return resp
}

// --- Record Transfer ---

type RecordTransferInput struct {
	Body struct {
		CylinderID   string     `json:"cylinder_id,omitempty" doc:"Cylinder to move (individual transfers)"`
		FromLocation string     `json:"from_location" enum:"dispatch,filling_station,maintenance,out_of_service,assignments,returns" doc:"Origin"`
		ToLocation   string     `json:"to_location" enum:"dispatch,filling_station,maintenance,out_of_service,assignments,returns" doc:"Destination"`
		Operator     string     `json:"operator" minLength:"1" doc:"Operator name"`
		Notes        string     `json:"notes,omitempty" doc:"Free-form notes"`
		Batch        *BatchBody `json:"batch,omitempty" doc:"Required for assignments and returns"`
	}
}

type TransferOutput struct {
	Body TransferResponse
}

// --- List Transfers ---

type ListTransfersInput struct {
	CylinderID string `query:"cylinder_id" required:"false" doc:"Filter by cylinder"`
	Since      string `query:"since" required:"false" doc:"Inclusive lower bound (RFC 3339)"`
	Until      string `query:"until" required:"false" doc:"Exclusive upper bound (RFC 3339)"`
	Limit      int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset     int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListTransfersOutput struct {
	Body []TransferResponse
}

func registerTransfers(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-transfer",
		Method:        http.MethodPost,
		Path:          "/api/v1/transfers",
		Summary:       "Record a transfer",
		Tags:          []string{"Transfers"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RecordTransferInput) (*TransferOutput, error) {
		in := domain.NewTransfer{
			CylinderID:   input.Body.CylinderID,
			FromLocation: domain.Location(input.Body.FromLocation),
			ToLocation:   domain.Location(input.Body.ToLocation),
			Operator:     input.Body.Operator,
			Notes:        input.Body.Notes,
		}
		if b := input.Body.Batch; b != nil {
			in.Batch = &domain.Batch{
				ClientName:         b.ClientName,
				CapacityKg:         decimal.NewFromFloat(b.CapacityKg),
				Quantity:           b.Quantity,
				DeliveryNoteNumber: b.DeliveryNoteNumber,
				DriverName:         b.DriverName,
			}
		}

		transfer, err := svc.RecordTransfer(ctx, in)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: toTransferResponse(transfer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transfers",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers",
		Summary:     "List transfers, newest first",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error) {
		filter, err := recordFilter(input.CylinderID, input.Since, input.Until, input.Limit, input.Offset)
		if err != nil {
			return nil, toHumaError(err)
		}

		transfers, err := svc.ListTransfers(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TransferResponse, len(transfers))
		for i, t := range transfers {
			resp[i] = toTransferResponse(t)
		}
		return &ListTransfersOutput{Body: resp}, nil
	})
}
