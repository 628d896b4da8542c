package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// PublishedEventsMetric counts ledger events handed to the publisher.
const PublishedEventsMetric = "co2ledger.events.published"

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing
// and a counter of published events by kind and outcome.
type TracingPublisher struct {
	next      domain.EventPublisher
	tracer    trace.Tracer
	published metric.Int64Counter
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) (*TracingPublisher, error) {
	counter, err := otel.Meter(instrumentationName).Int64Counter(PublishedEventsMetric,
		metric.WithDescription("Ledger events handed to the event publisher"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published events counter: %w", err)
	}

	return &TracingPublisher{
		next:      next,
		tracer:    otel.Tracer(instrumentationName),
		published: counter,
	}, nil
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.kind", string(event.Kind)),
			attribute.String("cylinder.id", event.CylinderID),
			attribute.String("record.id", event.RecordID),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	p.published.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.kind", string(event.Kind)),
		attribute.Bool("error", err != nil),
	))
	return err
}
