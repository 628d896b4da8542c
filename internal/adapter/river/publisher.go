package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries a ledger event through the River queue. River
// serializes it as JSON into its job table. Events that changed the tank
// carry the tank reading at publish time, so the worker never needs to query
// the ledger.
type EventJobArgs struct {
	Event      string    `json:"event"`
	CylinderID string    `json:"cylinder_id,omitempty"`
	Serial     string    `json:"serial,omitempty"`
	RecordID   string    `json:"record_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	TankLevelKg    string `json:"tank_level_kg,omitempty"`
	TankCapacityKg string `json:"tank_capacity_kg,omitempty"`
	TankPercentage string `json:"tank_percentage,omitempty"`
	TankAlert      string `json:"tank_alert,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "ledger.event" }

// NewEventJobArgs snapshots a ledger event into job arguments.
func NewEventJobArgs(event domain.LedgerEvent) EventJobArgs {
	args := EventJobArgs{
		Event:      string(event.Kind),
		CylinderID: event.CylinderID,
		Serial:     event.Serial,
		RecordID:   event.RecordID,
		OccurredAt: event.OccurredAt,
	}
	if t := event.Tank; t != nil {
		args.TankLevelKg = t.CurrentLevelKg.String()
		args.TankCapacityKg = t.CapacityKg.String()
		args.TankPercentage = t.Percentage().String()
		args.TankAlert = string(t.Alert())
	}
	return args
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a ledger event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	_, err := p.client.Insert(ctx, NewEventJobArgs(event), nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
