package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

// CapacityBucketResponse counts the cylinders of one capacity.
type CapacityBucketResponse struct {
	CapacityKg float64        `json:"capacity_kg" doc:"Bucket capacity in kg"`
	Total      int            `json:"total" doc:"Cylinders in the bucket"`
	ByState    map[string]int `json:"by_state" doc:"Counts per state"`
}

// FleetStatsResponse summarizes the fleet.
type FleetStatsResponse struct {
	Total      int                      `json:"total" doc:"Registered cylinders"`
	ByState    map[string]int           `json:"by_state" doc:"Counts per state"`
	ByCapacity []CapacityBucketResponse `json:"by_capacity" doc:"Buckets by ascending capacity"`
}

func stateCounts(c domain.StateCounts) map[string]int {
	out := make(map[string]int, len(c))
	for s, n := range c {
		out[string(s)] = n
	}
	return out
}

func toFleetStatsResponse(s domain.FleetStats) FleetStatsResponse {
	resp := FleetStatsResponse{
		Total:      s.Total,
		ByState:    stateCounts(s.ByState),
		ByCapacity: make([]CapacityBucketResponse, len(s.ByCapacity)),
	}
	for i, b := range s.ByCapacity {
		resp.ByCapacity[i] = CapacityBucketResponse{
			CapacityKg: kg(b.CapacityKg),
			Total:      b.Total,
			ByState:    stateCounts(b.ByState),
		}
	}
	return resp
}

// DailyActivityResponse counts today's ledger events.
type DailyActivityResponse struct {
	Date             string         `json:"date" doc:"Calendar day (YYYY-MM-DD)"`
	Fillings         int            `json:"fillings" doc:"Fillings recorded"`
	ApprovedFillings int            `json:"approved_fillings" doc:"Approved fillings"`
	RejectedFillings int            `json:"rejected_fillings" doc:"Rejected fillings"`
	FilledKg         float64        `json:"filled_kg" doc:"Kg filled by approved fillings"`
	Transfers        int            `json:"transfers" doc:"Transfers recorded"`
	TransfersTo      map[string]int `json:"transfers_to" doc:"Transfers per destination"`
	TankEntries      int            `json:"tank_entries" doc:"Tank entries"`
	TankExits        int            `json:"tank_exits" doc:"Tank exits"`
	TankEntryKg      float64        `json:"tank_entry_kg" doc:"Kg entered"`
	TankExitKg       float64        `json:"tank_exit_kg" doc:"Kg withdrawn"`
}

func toDailyActivityResponse(a domain.DailyActivity) DailyActivityResponse {
	to := make(map[string]int, len(a.TransfersTo))
	for l, n := range a.TransfersTo {
		to[string(l)] = n
	}
	return DailyActivityResponse{
		Date:             a.Date.Format(time.DateOnly),
		Fillings:         a.Fillings,
		ApprovedFillings: a.ApprovedFillings,
		RejectedFillings: a.RejectedFillings,
		FilledKg:         kg(a.FilledKg),
		Transfers:        a.Transfers,
		TransfersTo:      to,
		TankEntries:      a.TankEntries,
		TankExits:        a.TankExits,
		TankEntryKg:      kg(a.TankEntryKg),
		TankExitKg:       kg(a.TankExitKg),
	}
}

// ActivityResponse is one entry of the recent-activity feed.
type ActivityResponse struct {
	Kind     string            `json:"kind" doc:"filling or transfer"`
	RecordID string            `json:"record_id" doc:"Filling or transfer ID"`
	Operator string            `json:"operator" doc:"Operator name"`
	At       string            `json:"at" doc:"When it happened (ISO 8601)"`
	Filling  *FillingResponse  `json:"filling,omitempty"`
	Transfer *TransferResponse `json:"transfer,omitempty"`
}

func toActivityResponse(a domain.Activity) ActivityResponse {
	resp := ActivityResponse{
		Kind:     string(a.Kind),
		RecordID: a.RecordID,
		Operator: a.Operator,
		At:       formatTime(a.At),
	}
	if a.Filling != nil {
		f := toFillingResponse(*a.Filling)
		resp.Filling = &f
	}
	if a.Transfer != nil {
		t := toTransferResponse(*a.Transfer)
		resp.Transfer = &t
	}
	return resp
}

// DashboardResponse is the operational overview.
type DashboardResponse struct {
	Tank            *TankResponse         `json:"tank,omitempty" doc:"Tank snapshot; absent until configured"`
	TankPercentage  float64               `json:"tank_percentage" doc:"Fill percentage"`
	TankAlert       string                `json:"tank_alert" doc:"none, low or critical"`
	Fleet           FleetStatsResponse    `json:"fleet"`
	DueForTestCount int                   `json:"due_for_test_count" doc:"Cylinders with a hydrostatic test due"`
	DueForTest      []CylinderResponse    `json:"due_for_test"`
	Today           DailyActivityResponse `json:"today"`
	Recent          []ActivityResponse    `json:"recent" doc:"Latest fillings and transfers"`
}

type FleetStatsOutput struct {
	Body FleetStatsResponse
}

type DashboardOutput struct {
	Body DashboardResponse
}

type DueForTestOutput struct {
	Body []CylinderResponse
}

func registerStats(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID: "fleet-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/fleet",
		Summary:     "Fleet counts by state and capacity",
		Tags:        []string{"Stats"},
	}, func(ctx context.Context, _ *struct{}) (*FleetStatsOutput, error) {
		stats, err := svc.FleetStats(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &FleetStatsOutput{Body: toFleetStatsResponse(stats)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "due-for-test",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/due-for-test",
		Summary:     "Cylinders with a hydrostatic test due",
		Tags:        []string{"Stats"},
	}, func(ctx context.Context, _ *struct{}) (*DueForTestOutput, error) {
		due, err := svc.DueForTest(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &DueForTestOutput{Body: toCylinderResponses(due)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Operational overview",
		Tags:        []string{"Stats"},
	}, func(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
		d, err := svc.Dashboard(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := DashboardResponse{
			TankPercentage:  d.TankPercentage.InexactFloat64(),
			TankAlert:       string(d.TankAlert),
			Fleet:           toFleetStatsResponse(d.Fleet),
			DueForTestCount: len(d.DueForTest),
			DueForTest:      toCylinderResponses(d.DueForTest),
			Today:           toDailyActivityResponse(d.Today),
			Recent:          make([]ActivityResponse, len(d.Recent)),
		}
		if d.Tank != nil {
			t := toTankResponse(*d.Tank)
			resp.Tank = &t
		}
		for i, a := range d.Recent {
			resp.Recent[i] = toActivityResponse(a)
		}
		return &DashboardOutput{Body: resp}, nil
	})
}
