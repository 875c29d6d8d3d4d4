package checkout

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"seatcore/internal/holds"
	"seatcore/internal/inventory"
	"seatcore/internal/stream"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is one in-memory backing for the three stores a confirm
// touches, so the transactional all-or-nothing semantics can be faked
// faithfully: nothing commits unless every seat in the batch commits.
type memStore struct {
	mu            sync.Mutex
	seats         map[string]*inventory.EventSeat
	holds         map[string]*holds.SeatHold
	confirmations map[string]*PurchaseConfirmation
}

var (
	_ inventory.Repository = (*memStore)(nil)
	_ holds.Repository     = (*memStore)(nil)
	_ Repository           = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		seats:         make(map[string]*inventory.EventSeat),
		holds:         make(map[string]*holds.SeatHold),
		confirmations: make(map[string]*PurchaseConfirmation),
	}
}

func (m *memStore) putSeat(seat inventory.EventSeat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat.ID == uuid.Nil {
		seat.ID = uuid.New()
	}
	m.seats[seat.SeatUID] = &seat
}

func (m *memStore) putHold(hold holds.SeatHold) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hold.ID == uuid.Nil {
		hold.ID = uuid.New()
	}
	m.holds[hold.SeatUID] = &hold
}

// inventory.Repository

func (m *memStore) CreateSeats(ctx context.Context, seats []inventory.EventSeat) error {
	for i := range seats {
		m.putSeat(seats[i])
	}
	return nil
}

func (m *memStore) HasSeats(ctx context.Context, eventSeatingID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seats) > 0, nil
}

func (m *memStore) GetSeat(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*inventory.EventSeat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat, ok := m.seats[seatUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *seat
	return &copied, nil
}

func (m *memStore) GetSeatsByUIDs(ctx context.Context, eventSeatingID uuid.UUID, seatUIDs []string) ([]inventory.EventSeat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []inventory.EventSeat
	for _, uid := range seatUIDs {
		if seat, ok := m.seats[uid]; ok {
			out = append(out, *seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (m *memStore) ListSeats(ctx context.Context, eventSeatingID uuid.UUID, q inventory.ListSeatsQuery) ([]inventory.EventSeat, error) {
	return nil, nil
}

func (m *memStore) ListSeatUIDsByLocation(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel string, seatLabels []string) ([]string, error) {
	return nil, nil
}

func (m *memStore) CountSold(ctx context.Context, eventSeatingID uuid.UUID, scope inventory.ScopeFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, seat := range m.seats {
		if seat.Status == inventory.StatusSold {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ApplyTransition(ctx context.Context, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(seatUID, expectedVersion, from, to, at)
}

func (m *memStore) ApplyTransitionTx(tx *gorm.DB, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(seatUID, expectedVersion, from, to, at)
}

func (m *memStore) transitionLocked(seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	seat, ok := m.seats[seatUID]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	fromOK := false
	for _, s := range from {
		if seat.Status == s {
			fromOK = true
			break
		}
	}
	if !fromOK || seat.Version != expectedVersion {
		return nil, &inventory.ConflictError{
			SeatUID:        seatUID,
			CurrentStatus:  seat.Status,
			CurrentVersion: seat.Version,
		}
	}
	seat.Status = to
	seat.Version++
	seat.LastChangeAt = at
	copied := *seat
	return &copied, nil
}

// holds.Repository

func (m *memStore) CreateHoldBatch(ctx context.Context, batch []holds.SeatHold, seatVersions map[string]int64, at time.Time) error {
	for i := range batch {
		m.putHold(batch[i])
	}
	return nil
}

func (m *memStore) GetHold(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*holds.SeatHold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hold, ok := m.holds[seatUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *hold
	return &copied, nil
}

func (m *memStore) GetSessionHolds(ctx context.Context, sessionUID string, liveAfter time.Time) ([]holds.SeatHold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []holds.SeatHold
	for _, hold := range m.holds {
		if hold.SessionUID == sessionUID && hold.ExpiresAt.After(liveAfter) {
			out = append(out, *hold)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (m *memStore) GetSessionHoldsForSeats(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string) ([]holds.SeatHold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []holds.SeatHold
	for _, uid := range seatUIDs {
		hold, ok := m.holds[uid]
		if ok && hold.SessionUID == sessionUID {
			out = append(out, *hold)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (m *memStore) ExtendHolds(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string, expiresAt, now time.Time) (int64, error) {
	return 0, nil
}

func (m *memStore) ReleaseHold(ctx context.Context, hold *holds.SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) ListExpired(ctx context.Context, before time.Time, limit int) ([]holds.SeatHold, error) {
	return nil, nil
}

func (m *memStore) ListLiveHoldsOnSoldSeats(ctx context.Context, now time.Time, limit int) ([]holds.SeatHold, error) {
	return nil, nil
}

func (m *memStore) DeleteHoldByID(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, hold := range m.holds {
		if hold.ID == id {
			delete(m.holds, uid)
			return nil
		}
	}
	return nil
}

func (m *memStore) ReclaimExpiredHold(ctx context.Context, hold *holds.SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	return nil, gorm.ErrRecordNotFound
}

// checkout.Repository

func (m *memStore) GetConfirmationByToken(ctx context.Context, token string) (*PurchaseConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	confirmation, ok := m.confirmations[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *confirmation
	return &copied, nil
}

func (m *memStore) ConfirmBatch(ctx context.Context, confirmation *PurchaseConfirmation, batch []holds.SeatHold, seatVersions map[string]int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var consumedHolds []*holds.SeatHold
	var flippedSeats []string
	rollback := func() {
		for _, hold := range consumedHolds {
			m.holds[hold.SeatUID] = hold
		}
		for _, uid := range flippedSeats {
			seat := m.seats[uid]
			seat.Status = inventory.StatusHeld
			seat.Version--
		}
	}

	for i := range batch {
		hold := &batch[i]
		stored, ok := m.holds[hold.SeatUID]
		if !ok || stored.ID != hold.ID || !stored.ExpiresAt.After(at) {
			rollback()
			return inventory.ErrExpired
		}
		delete(m.holds, hold.SeatUID)
		consumedHolds = append(consumedHolds, stored)

		_, err := m.transitionLocked(hold.SeatUID, seatVersions[hold.SeatUID],
			[]inventory.Status{inventory.StatusHeld}, inventory.StatusSold, at)
		if err != nil {
			rollback()
			return err
		}
		flippedSeats = append(flippedSeats, hold.SeatUID)
	}

	if _, exists := m.confirmations[confirmation.IdempotencyToken]; exists {
		rollback()
		return fmt.Errorf("duplicate key value violates unique constraint %q", "unique_idempotency_token")
	}
	copied := *confirmation
	m.confirmations[confirmation.IdempotencyToken] = &copied
	return nil
}

// capturingProducer records published events in order.
type capturingProducer struct {
	mu     sync.Mutex
	events []stream.SeatEvent
}

func (p *capturingProducer) Publish(ctx context.Context, event *stream.SeatEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *capturingProducer) Close() error { return nil }

func (p *capturingProducer) byType(t stream.EventType) []stream.SeatEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []stream.SeatEvent
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// countingVelocity tracks sale increments per scope key.
type countingVelocity struct {
	mu      sync.Mutex
	buckets map[string]int64
}

func newCountingVelocity() *countingVelocity {
	return &countingVelocity{buckets: make(map[string]int64)}
}

func (v *countingVelocity) Increment(ctx context.Context, scopeKey string, at time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buckets[scopeKey]++
	return nil
}

func (v *countingVelocity) RateInWindow(ctx context.Context, scopeKey string, at time.Time, window time.Duration) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buckets[scopeKey], nil
}

// noopCache satisfies cache.Service for tests that do not assert on Redis.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error { return nil }
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error            { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopCache) Exists(ctx context.Context, key string) bool             { return false }
func (noopCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	return nil
}
func (noopCache) Ping(ctx context.Context) error { return nil }
