package otel_test

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/neomorfeo/co2ledger/internal/adapter/otel"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

// --- Mock publisher ---

type mockPublisher struct {
	events []domain.LedgerEvent
}

func (m *mockPublisher) Publish(_ context.Context, e domain.LedgerEvent) error {
	m.events = append(m.events, e)
	return nil
}

type failingPublisher struct{}

func (p *failingPublisher) Publish(_ context.Context, _ domain.LedgerEvent) error {
	return fmt.Errorf("publish failed")
}

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

func newTracingPublisher(t *testing.T, next domain.EventPublisher) *adapter.TracingPublisher {
	t.Helper()
	pub, err := adapter.NewTracingPublisher(next)
	if err != nil {
		t.Fatalf("NewTracingPublisher: %v", err)
	}
	return pub
}

// publishedCount sums the published-events counter for the given outcome.
func publishedCount(t *testing.T, reader *sdkmetric.ManualReader, failed bool) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != adapter.PublishedEventsMetric {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric data = %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key("error")); ok && v.AsBool() == failed {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// --- Tests ---

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	reader := setupTestMeter(t)
	inner := &mockPublisher{}
	pub := newTracingPublisher(t, inner)

	event := domain.LedgerEvent{
		Kind:       domain.KindFillingApproved,
		CylinderID: "c-1",
		RecordID:   "f-1",
	}
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EventPublisher.Publish")
	}

	assertAttribute(t, spans[0], "event.kind", "filling.approved")
	assertAttribute(t, spans[0], "cylinder.id", "c-1")
	assertAttribute(t, spans[0], "record.id", "f-1")

	if len(inner.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(inner.events))
	}
	if got := publishedCount(t, reader, false); got != 1 {
		t.Errorf("published counter = %d, want 1", got)
	}
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	reader := setupTestMeter(t)
	pub := newTracingPublisher(t, &failingPublisher{})

	err := pub.Publish(context.Background(), domain.LedgerEvent{Kind: domain.KindTankMovement})
	if err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	if got := publishedCount(t, reader, true); got != 1 {
		t.Errorf("failed publish counter = %d, want 1", got)
	}
}
