package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

// Compile-time check: Store implements domain.Repository.
var _ domain.Repository = (*Store)(nil)

type state struct {
	cylinders   map[string]domain.Cylinder
	serials     map[string]string
	fillings    []domain.Filling
	transfers   []domain.Transfer
	maintenance map[string]domain.MaintenanceRecord
	tank        *domain.Tank
	movements   []domain.TankMovement
}

func newState() *state {
	return &state{
		cylinders:   make(map[string]domain.Cylinder),
		serials:     make(map[string]string),
		maintenance: make(map[string]domain.MaintenanceRecord),
	}
}

func (s *state) clone() *state {
	c := &state{
		cylinders:   make(map[string]domain.Cylinder, len(s.cylinders)),
		serials:     make(map[string]string, len(s.serials)),
		fillings:    append([]domain.Filling(nil), s.fillings...),
		transfers:   append([]domain.Transfer(nil), s.transfers...),
		maintenance: make(map[string]domain.MaintenanceRecord, len(s.maintenance)),
		movements:   append([]domain.TankMovement(nil), s.movements...),
	}
	for k, v := range s.cylinders {
		c.cylinders[k] = v
	}
	for k, v := range s.serials {
		c.serials[k] = v
	}
	for k, v := range s.maintenance {
		c.maintenance[k] = v
	}
	if s.tank != nil {
		t := *s.tank
		c.tank = &t
	}
	return c
}

// Store is an in-memory domain.Repository. Transactions run against a
// cloned state that replaces the live one only when fn succeeds.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// Atomic runs fn against a private copy of the store and swaps it in on
// success. Other callers block until fn returns.
func (s *Store) Atomic(ctx context.Context, fn func(tx domain.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// --- cylinders ---

func (s *Store) CreateCylinder(_ context.Context, c domain.Cylinder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.serials[c.SerialNumber]; ok {
		return &domain.DuplicateSerialError{Serial: c.SerialNumber}
	}
	s.state.cylinders[c.ID] = c
	s.state.serials[c.SerialNumber] = c.ID
	return nil
}

func (s *Store) GetCylinder(_ context.Context, id string) (domain.Cylinder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.state.cylinders[id]
	if !ok {
		return domain.Cylinder{}, domain.ErrCylinderNotFound
	}
	return c, nil
}

func (s *Store) GetCylinderBySerial(_ context.Context, serial string) (domain.Cylinder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.state.serials[serial]
	if !ok {
		return domain.Cylinder{}, domain.ErrCylinderNotFound
	}
	return s.state.cylinders[id], nil
}

func (s *Store) ListCylinders(_ context.Context, filter domain.CylinderFilter) ([]domain.Cylinder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Cylinder, 0, len(s.state.cylinders))
	for _, c := range s.state.cylinders {
		if filter.State != nil && c.State != *filter.State {
			continue
		}
		if filter.Location != nil && c.Location != *filter.Location {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SerialNumber < out[j].SerialNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (s *Store) UpdateCylinder(_ context.Context, c domain.Cylinder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.state.cylinders[c.ID]
	if !ok {
		return domain.ErrCylinderNotFound
	}
	if old.SerialNumber != c.SerialNumber {
		if _, taken := s.state.serials[c.SerialNumber]; taken {
			return &domain.DuplicateSerialError{Serial: c.SerialNumber}
		}
		delete(s.state.serials, old.SerialNumber)
		s.state.serials[c.SerialNumber] = c.ID
	}
	s.state.cylinders[c.ID] = c
	return nil
}

// ref returns the cylinder summary for id, or nil when it is unknown.
func (s *state) ref(id string) *domain.CylinderRef {
	c, ok := s.cylinders[id]
	if !ok {
		return nil
	}
	return c.Ref()
}

// --- fillings ---

func (s *Store) CreateFilling(_ context.Context, f domain.Filling) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.cylinders[f.CylinderID]; !ok {
		return domain.ErrCylinderNotFound
	}
	f.Cylinder = nil
	s.state.fillings = append(s.state.fillings, f)
	return nil
}

func (s *Store) ListFillings(_ context.Context, filter domain.RecordFilter) ([]domain.Filling, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Filling
	for _, f := range s.state.fillings {
		if filter.CylinderID != "" && f.CylinderID != filter.CylinderID {
			continue
		}
		if !inRange(f.DateTime, filter) {
			continue
		}
		f.Cylinder = s.state.ref(f.CylinderID)
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].DateTime, out[i].CreatedAt, out[i].ID, out[j].DateTime, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

// --- transfers ---

func (s *Store) CreateTransfer(_ context.Context, t domain.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.CylinderID != "" {
		if _, ok := s.state.cylinders[t.CylinderID]; !ok {
			return domain.ErrCylinderNotFound
		}
	}
	if t.Batch != nil {
		b := *t.Batch
		t.Batch = &b
	}
	t.Cylinder = nil
	s.state.transfers = append(s.state.transfers, t)
	return nil
}

func (s *Store) ListTransfers(_ context.Context, filter domain.RecordFilter) ([]domain.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transfer
	for _, t := range s.state.transfers {
		if filter.CylinderID != "" && t.CylinderID != filter.CylinderID {
			continue
		}
		if !inRange(t.DateTime, filter) {
			continue
		}
		if t.CylinderID != "" {
			t.Cylinder = s.state.ref(t.CylinderID)
		}
		if t.Batch != nil {
			b := *t.Batch
			t.Batch = &b
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].DateTime, out[i].CreatedAt, out[i].ID, out[j].DateTime, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

// --- maintenance ---

func (s *Store) CreateMaintenance(_ context.Context, m domain.MaintenanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.cylinders[m.CylinderID]; !ok {
		return domain.ErrCylinderNotFound
	}
	m.Cylinder = nil
	s.state.maintenance[m.ID] = m
	return nil
}

func (s *Store) GetMaintenance(_ context.Context, id string) (domain.MaintenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.state.maintenance[id]
	if !ok {
		return domain.MaintenanceRecord{}, domain.ErrMaintenanceNotFound
	}
	m.Cylinder = s.state.ref(m.CylinderID)
	return m, nil
}

func (s *Store) ListMaintenance(_ context.Context, filter domain.MaintenanceFilter) ([]domain.MaintenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MaintenanceRecord
	for _, m := range s.state.maintenance {
		if filter.CylinderID != "" && m.CylinderID != filter.CylinderID {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		m.Cylinder = s.state.ref(m.CylinderID)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].DatePerformed, out[i].CreatedAt, out[i].ID, out[j].DatePerformed, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (s *Store) UpdateMaintenance(_ context.Context, m domain.MaintenanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.maintenance[m.ID]; !ok {
		return domain.ErrMaintenanceNotFound
	}
	m.Cylinder = nil
	s.state.maintenance[m.ID] = m
	return nil
}

func (s *Store) DeleteMaintenance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.maintenance[id]; !ok {
		return domain.ErrMaintenanceNotFound
	}
	delete(s.state.maintenance, id)
	return nil
}

// --- tank ---

func (s *Store) GetTank(_ context.Context) (domain.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.tank == nil {
		return domain.Tank{}, domain.ErrTankNotFound
	}
	return *s.state.tank, nil
}

func (s *Store) SaveTank(_ context.Context, t domain.Tank) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.tank = &t
	return nil
}

func (s *Store) CreateTankMovement(_ context.Context, m domain.TankMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.movements = append(s.state.movements, m)
	return nil
}

func (s *Store) ListTankMovements(_ context.Context, filter domain.RecordFilter) ([]domain.TankMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TankMovement
	for _, m := range s.state.movements {
		if !inRange(m.DateTime, filter) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].DateTime, out[i].CreatedAt, out[i].ID, out[j].DateTime, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}
