package river_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"

	riveradapter "github.com/neomorfeo/co2ledger/internal/adapter/river"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

// startClient sets up River, subscribes to completed jobs and starts
// processing. The client is stopped on cleanup.
func startClient(t *testing.T, db *sql.DB) (*riveradapter.Client, <-chan *goriver.Event) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := riveradapter.Setup(context.Background(), db, logger)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	// Subscribe before starting so no completion is missed.
	completed, cancel := client.Subscribe(goriver.EventKindJobCompleted)
	t.Cleanup(cancel)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})

	return client, completed
}

func waitForJob(t *testing.T, completed <-chan *goriver.Event) *goriver.Event {
	t.Helper()

	select {
	case event := <-completed:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
		return nil
	}
}

func TestPublisher_Publish_EnqueuesJob(t *testing.T) {
	db := setupTestDB(t)
	client, completed := startClient(t, db)

	pub := riveradapter.NewPublisher(client)
	event := domain.LedgerEvent{
		Kind:       domain.KindCylinderRegistered,
		CylinderID: "c-1",
		Serial:     "CYL-001",
		RecordID:   "c-1",
		OccurredAt: time.Now().UTC(),
	}

	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got := waitForJob(t, completed)
	if got.Job.Kind != "ledger.event" {
		t.Errorf("job kind = %q, want %q", got.Job.Kind, "ledger.event")
	}
}

func TestPublisher_Publish_PreservesEventData(t *testing.T) {
	db := setupTestDB(t)
	client, completed := startClient(t, db)

	pub := riveradapter.NewPublisher(client)
	tank := domain.Tank{
		CurrentLevelKg: decimal.NewFromInt(400),
		CapacityKg:     decimal.NewFromInt(3200),
	}
	event := domain.LedgerEvent{
		Kind:       domain.KindFillingApproved,
		CylinderID: "c-42",
		Serial:     "CYL-042",
		RecordID:   "f-1",
		OccurredAt: time.Now().UTC(),
		Tank:       &tank,
	}

	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got := waitForJob(t, completed)
	args := string(got.Job.EncodedArgs)
	for _, want := range []string{
		`"event":"filling.approved"`,
		`"cylinder_id":"c-42"`,
		`"serial":"CYL-042"`,
		`"record_id":"f-1"`,
		`"tank_level_kg":"400"`,
		`"tank_alert":"critical"`,
	} {
		if !strings.Contains(args, want) {
			t.Errorf("encoded args missing %s, got: %s", want, args)
		}
	}
}

func TestNewEventJobArgs_WithoutTank(t *testing.T) {
	args := riveradapter.NewEventJobArgs(domain.LedgerEvent{
		Kind:     domain.KindTransferRecorded,
		RecordID: "t-1",
	})

	if args.Event != "transfer.recorded" {
		t.Errorf("Event = %q, want transfer.recorded", args.Event)
	}
	if args.TankAlert != "" || args.TankLevelKg != "" {
		t.Errorf("tank fields should be empty, got %+v", args)
	}
}

func TestNewEventJobArgs_TankReading(t *testing.T) {
	tank := domain.Tank{
		CurrentLevelKg: decimal.NewFromInt(640),
		CapacityKg:     decimal.NewFromInt(3200),
	}
	args := riveradapter.NewEventJobArgs(domain.LedgerEvent{
		Kind: domain.KindTankMovement,
		Tank: &tank,
	})

	if args.TankAlert != "low" {
		t.Errorf("TankAlert = %q, want low", args.TankAlert)
	}
	if args.TankPercentage != "20" {
		t.Errorf("TankPercentage = %q, want 20", args.TankPercentage)
	}
	if args.TankCapacityKg != "3200" {
		t.Errorf("TankCapacityKg = %q, want 3200", args.TankCapacityKg)
	}
}
