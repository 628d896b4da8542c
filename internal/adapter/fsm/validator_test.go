package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/neomorfeo/co2ledger/internal/adapter/fsm"
	"github.com/neomorfeo/co2ledger/internal/domain"
)

func TestValidator_AllTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, tr := range domain.Transitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestValidator_InvalidTransition(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	// A full cylinder cannot be approved again.
	_, err := v.Apply(ctx, domain.StateFull, domain.EventApproveFilling)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != domain.EventApproveFilling {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventApproveFilling)
	}
	if trErr.Current != domain.StateFull {
		t.Errorf("current = %q, want %q", trErr.Current, domain.StateFull)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict class, got %v", err)
	}
}

func TestValidator_UnknownEvent(t *testing.T) {
	v := adapter.New()

	_, err := v.Apply(context.Background(), domain.StateEmpty, domain.Event("explode"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidator_FullLifecycle(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	steps := []struct {
		from  domain.CylinderState
		event domain.Event
		want  domain.CylinderState
	}{
		{domain.StateEmpty, domain.EventStartFilling, domain.StateFilling},
		{domain.StateFilling, domain.EventApproveFilling, domain.StateFull},
		{domain.StateFull, domain.EventDischarge, domain.StateEmpty},
		{domain.StateEmpty, domain.EventSendToMaintenance, domain.StateMaintenance},
		{domain.StateMaintenance, domain.EventRelease, domain.StateEmpty},
		{domain.StateEmpty, domain.EventRetire, domain.StateOutOfService},
		{domain.StateOutOfService, domain.EventReinstate, domain.StateEmpty},
	}

	for _, step := range steps {
		got, err := v.Apply(ctx, step.from, step.event)
		if err != nil {
			t.Fatalf("Apply(%q, %q) error: %v", step.from, step.event, err)
		}
		if got != step.want {
			t.Errorf("Apply(%q, %q) = %q, want %q", step.from, step.event, got, step.want)
		}
	}
}

func TestValidator_ApproveFromEmpty(t *testing.T) {
	v := adapter.New()

	// Approving skips the filling state when it was never entered.
	got, err := v.Apply(context.Background(), domain.StateEmpty, domain.EventApproveFilling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.StateFull {
		t.Errorf("got %q, want %q", got, domain.StateFull)
	}
}

func TestValidator_RetiredCylinderCannotFill(t *testing.T) {
	v := adapter.New()

	_, err := v.Apply(context.Background(), domain.StateOutOfService, domain.EventStartFilling)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}
