package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// LedgerService orchestrates the cylinder fleet and tank ledger.
type LedgerService struct {
	repo      domain.Repository
	publisher domain.EventPublisher
	validator domain.TransitionValidator

	clock     func() time.Time
	location  *time.Location
	policy    domain.PairingPolicy
	lookahead time.Duration
	logger    *slog.Logger
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *LedgerService) { s.clock = clock }
}

// WithLocation sets the time zone that defines a calendar day for the
// dashboard's daily activity.
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) { s.location = loc }
}

// WithPairingPolicy sets how state/location divergences are handled.
func WithPairingPolicy(p domain.PairingPolicy) Option {
	return func(s *LedgerService) { s.policy = p }
}

// WithLookahead sets the window in which a hydrostatic test counts as due.
func WithLookahead(d time.Duration) Option {
	return func(s *LedgerService) { s.lookahead = d }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

// NewLedgerService creates a service with the given adapters.
func NewLedgerService(repo domain.Repository, publisher domain.EventPublisher, validator domain.TransitionValidator, opts ...Option) *LedgerService {
	s := &LedgerService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		clock:     time.Now,
		location:  time.Local,
		policy:    domain.PairingWarn,
		lookahead: domain.DefaultMaintenanceLookahead,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) now() time.Time {
	return s.clock().UTC()
}

// LocalTime returns the current time in the ledger's business timezone.
func (s *LedgerService) LocalTime() time.Time {
	return s.clock().In(s.location)
}

// publish emits an event after commit. The ledger write already succeeded,
// so a failure is logged rather than returned.
func (s *LedgerService) publish(ctx context.Context, event domain.LedgerEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "publishing ledger event failed",
			"kind", event.Kind,
			"record_id", event.RecordID,
			"error", err,
		)
	}
}

// enforcePairing applies the pairing policy to a divergence found for c.
func (s *LedgerService) enforcePairing(ctx context.Context, c domain.Cylinder, divergence *domain.PairingError) error {
	if divergence == nil {
		return nil
	}
	if s.policy == domain.PairingReject {
		return divergence
	}
	s.logger.WarnContext(ctx, "cylinder state and location diverge",
		"cylinder_id", c.ID,
		"serial", c.SerialNumber,
		"state", divergence.State,
		"location", divergence.Location,
		"reason", divergence.Reason,
	)
	return nil
}
