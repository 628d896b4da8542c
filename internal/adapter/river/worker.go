package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// EventWorker processes ledger event jobs from the River queue. Every event
// is logged; events that leave the tank below the low or critical threshold
// also raise a warning, which is the ledger's notification channel.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]

	Logger *slog.Logger
}

// NewEventWorker creates a worker that logs to logger.
func NewEventWorker(logger *slog.Logger) *EventWorker {
	return &EventWorker{Logger: logger}
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	handleEvent(ctx, w.logger(), job.Args, "job_id", job.ID, "attempt", job.Attempt)
	return nil
}

func (w *EventWorker) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// handleEvent logs one event and raises the tank alert when due.
func handleEvent(ctx context.Context, logger *slog.Logger, args EventJobArgs, extra ...any) {
	attrs := append([]any{
		"event", args.Event,
		"cylinder_id", args.CylinderID,
		"serial", args.Serial,
		"record_id", args.RecordID,
	}, extra...)
	logger.InfoContext(ctx, "processing ledger event", attrs...)

	switch domain.TankAlert(args.TankAlert) {
	case domain.TankAlertLow, domain.TankAlertCritical:
		logger.WarnContext(ctx, "tank level below threshold",
			"alert", args.TankAlert,
			"level_kg", args.TankLevelKg,
			"capacity_kg", args.TankCapacityKg,
			"percentage", args.TankPercentage,
			"event", args.Event,
		)
	}
}
