package river_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	goriver "github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/shopspring/decimal"

	riveradapter "github.com/neomorfeo/co2ledger/internal/adapter/river"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func tankEvent(level int64) domain.LedgerEvent {
	tank := domain.Tank{
		CurrentLevelKg: decimal.NewFromInt(level),
		CapacityKg:     decimal.NewFromInt(3200),
	}
	return domain.LedgerEvent{Kind: domain.KindTankMovement, RecordID: "m-1", Tank: &tank}
}

func TestEventWorker_LogsEvent(t *testing.T) {
	logger, buf := bufferLogger()
	w := riveradapter.NewEventWorker(logger)

	job := &goriver.Job[riveradapter.EventJobArgs]{
		JobRow: &rivertype.JobRow{ID: 7, Attempt: 1},
		Args:   riveradapter.NewEventJobArgs(domain.LedgerEvent{Kind: domain.KindCylinderRegistered, Serial: "CYL-001"}),
	}
	if err := w.Work(context.Background(), job); err != nil {
		t.Fatalf("Work: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"processing ledger event", "event=cylinder.registered", "serial=CYL-001", "job_id=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q, got: %s", want, out)
		}
	}
	if strings.Contains(out, "level=WARN") {
		t.Errorf("unexpected warning: %s", out)
	}
}

func TestEventWorker_TankAlerts(t *testing.T) {
	tests := []struct {
		name  string
		level int64
		alert string
	}{
		{"healthy", 3200, ""},
		{"low", 640, "low"},
		{"critical", 100, "critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := bufferLogger()
			w := riveradapter.NewEventWorker(logger)

			job := &goriver.Job[riveradapter.EventJobArgs]{
				JobRow: &rivertype.JobRow{ID: 1, Attempt: 1},
				Args:   riveradapter.NewEventJobArgs(tankEvent(tt.level)),
			}
			if err := w.Work(context.Background(), job); err != nil {
				t.Fatalf("Work: %v", err)
			}

			out := buf.String()
			warned := strings.Contains(out, "tank level below threshold")
			if tt.alert == "" {
				if warned {
					t.Errorf("unexpected alert: %s", out)
				}
				return
			}
			if !warned || !strings.Contains(out, "alert="+tt.alert) {
				t.Errorf("want %s alert, got: %s", tt.alert, out)
			}
		})
	}
}

func TestLogPublisher_Publish(t *testing.T) {
	logger, buf := bufferLogger()
	pub := riveradapter.NewLogPublisher(logger)

	if err := pub.Publish(context.Background(), tankEvent(100)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "event=tank.movement") {
		t.Errorf("log missing event, got: %s", out)
	}
	if !strings.Contains(out, "alert=critical") {
		t.Errorf("log missing critical alert, got: %s", out)
	}
}
