package river

import (
	"context"
	"log/slog"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// Compile-time check: LogPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*LogPublisher)(nil)

// LogPublisher handles events inline, the way EventWorker would, for storage
// backends River cannot run on.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs to logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event. It never fails.
func (p *LogPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	handleEvent(ctx, p.logger, NewEventJobArgs(event))
	return nil
}
