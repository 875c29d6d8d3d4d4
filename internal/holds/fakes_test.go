package holds

import (
	"context"
	"sort"
	"sync"
	"time"

	"seatcore/internal/inventory"
	"seatcore/internal/pricing"
	"seatcore/internal/stream"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeSeatStore is an in-memory inventory.Repository. The conditional
// update semantics match the SQL path: one winner per expected version,
// losers get a ConflictError carrying the fresh state.
type fakeSeatStore struct {
	mu    sync.Mutex
	seats map[string]*inventory.EventSeat
}

var _ inventory.Repository = (*fakeSeatStore)(nil)

func newFakeSeatStore() *fakeSeatStore {
	return &fakeSeatStore{seats: make(map[string]*inventory.EventSeat)}
}

func (f *fakeSeatStore) put(seat inventory.EventSeat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seat.ID == uuid.Nil {
		seat.ID = uuid.New()
	}
	f.seats[seat.SeatUID] = &seat
}

func (f *fakeSeatStore) CreateSeats(ctx context.Context, seats []inventory.EventSeat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range seats {
		if _, ok := f.seats[seats[i].SeatUID]; ok {
			continue
		}
		copied := seats[i]
		if copied.ID == uuid.Nil {
			copied.ID = uuid.New()
		}
		f.seats[copied.SeatUID] = &copied
	}
	return nil
}

func (f *fakeSeatStore) HasSeats(ctx context.Context, eventSeatingID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seats) > 0, nil
}

func (f *fakeSeatStore) GetSeat(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*inventory.EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *seat
	return &copied, nil
}

func (f *fakeSeatStore) GetSeatsByUIDs(ctx context.Context, eventSeatingID uuid.UUID, seatUIDs []string) ([]inventory.EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inventory.EventSeat
	for _, uid := range seatUIDs {
		if seat, ok := f.seats[uid]; ok {
			out = append(out, *seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (f *fakeSeatStore) ListSeats(ctx context.Context, eventSeatingID uuid.UUID, q inventory.ListSeatsQuery) ([]inventory.EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inventory.EventSeat
	for _, seat := range f.seats {
		out = append(out, *seat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (f *fakeSeatStore) ListSeatUIDsByLocation(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel string, seatLabels []string) ([]string, error) {
	return nil, nil
}

func (f *fakeSeatStore) CountSold(ctx context.Context, eventSeatingID uuid.UUID, scope inventory.ScopeFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, seat := range f.seats {
		if seat.Status == inventory.StatusSold {
			count++
		}
	}
	return count, nil
}

func (f *fakeSeatStore) ApplyTransition(ctx context.Context, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	return f.transition(seatUID, expectedVersion, from, to, at)
}

func (f *fakeSeatStore) ApplyTransitionTx(tx *gorm.DB, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	return f.transition(seatUID, expectedVersion, from, to, at)
}

func (f *fakeSeatStore) transition(seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatUID]
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

// fakeHoldsRepo is an in-memory Repository keyed by seat_uid, wired to a
// fakeSeatStore so batch creation and release flip seat state the same
// all-or-nothing way the transactional repository does.
type fakeHoldsRepo struct {
	mu    sync.Mutex
	holds map[string]*SeatHold
	seats *fakeSeatStore
}

var _ Repository = (*fakeHoldsRepo)(nil)

func newFakeHoldsRepo(seats *fakeSeatStore) *fakeHoldsRepo {
	return &fakeHoldsRepo{holds: make(map[string]*SeatHold), seats: seats}
}

func (f *fakeHoldsRepo) CreateHoldBatch(ctx context.Context, batch []SeatHold, seatVersions map[string]int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var created []string
	var flipped []string
	rollback := func() {
		for _, uid := range created {
			delete(f.holds, uid)
		}
		for _, uid := range flipped {
			f.seats.mu.Lock()
			seat := f.seats.seats[uid]
			seat.Status = inventory.StatusAvailable
			seat.Version--
			f.seats.mu.Unlock()
		}
	}
	for i := range batch {
		hold := batch[i]
		if hold.ID == uuid.Nil {
			hold.ID = uuid.New()
			batch[i].ID = hold.ID
		}
		f.holds[hold.SeatUID] = &hold
		created = append(created, hold.SeatUID)
		_, err := f.seats.transition(hold.SeatUID, seatVersions[hold.SeatUID],
			[]inventory.Status{inventory.StatusAvailable}, inventory.StatusHeld, at)
		if err != nil {
			rollback()
			return err
		}
		flipped = append(flipped, hold.SeatUID)
	}
	return nil
}

func (f *fakeHoldsRepo) GetHold(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*SeatHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hold, ok := f.holds[seatUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *hold
	return &copied, nil
}

func (f *fakeHoldsRepo) GetSessionHolds(ctx context.Context, sessionUID string, liveAfter time.Time) ([]SeatHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatHold
	for _, hold := range f.holds {
		if hold.SessionUID == sessionUID && hold.ExpiresAt.After(liveAfter) {
			out = append(out, *hold)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (f *fakeHoldsRepo) GetSessionHoldsForSeats(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string) ([]SeatHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatHold
	for _, uid := range seatUIDs {
		hold, ok := f.holds[uid]
		if ok && hold.SessionUID == sessionUID {
			out = append(out, *hold)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (f *fakeHoldsRepo) ExtendHolds(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string, expiresAt, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var renewed int64
	for _, uid := range seatUIDs {
		hold, ok := f.holds[uid]
		if ok && hold.SessionUID == sessionUID && hold.ExpiresAt.After(now) {
			hold.ExpiresAt = expiresAt
			renewed++
		}
	}
	return renewed, nil
}

func (f *fakeHoldsRepo) ReleaseHold(ctx context.Context, hold *SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	f.mu.Lock()
	stored, ok := f.holds[hold.SeatUID]
	if !ok || stored.ID != hold.ID {
		f.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	delete(f.holds, hold.SeatUID)
	f.mu.Unlock()

	updated, err := f.seats.transition(hold.SeatUID, seatVersion,
		[]inventory.Status{inventory.StatusHeld}, inventory.StatusAvailable, at)
	if err != nil {
		f.mu.Lock()
		f.holds[hold.SeatUID] = stored
		f.mu.Unlock()
		return nil, err
	}
	return updated, nil
}

func (f *fakeHoldsRepo) ListExpired(ctx context.Context, before time.Time, limit int) ([]SeatHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatHold
	for _, hold := range f.holds {
		if hold.ExpiresAt.Before(before) {
			out = append(out, *hold)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeHoldsRepo) ListLiveHoldsOnSoldSeats(ctx context.Context, now time.Time, limit int) ([]SeatHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatHold
	for _, hold := range f.holds {
		if !hold.ExpiresAt.After(now) {
			continue
		}
		f.seats.mu.Lock()
		seat, ok := f.seats.seats[hold.SeatUID]
		sold := ok && seat.Status == inventory.StatusSold
		f.seats.mu.Unlock()
		if sold {
			out = append(out, *hold)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeHoldsRepo) DeleteHoldByID(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for uid, hold := range f.holds {
		if hold.ID == id {
			delete(f.holds, uid)
			return nil
		}
	}
	return nil
}

func (f *fakeHoldsRepo) ReclaimExpiredHold(ctx context.Context, hold *SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	f.mu.Lock()
	stored, ok := f.holds[hold.SeatUID]
	if !ok || stored.ID != hold.ID || !stored.ExpiresAt.Before(at) {
		f.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	delete(f.holds, hold.SeatUID)
	f.mu.Unlock()

	updated, err := f.seats.transition(hold.SeatUID, seatVersion,
		[]inventory.Status{inventory.StatusHeld}, inventory.StatusAvailable, at)
	if err != nil {
		f.mu.Lock()
		f.holds[hold.SeatUID] = stored
		f.mu.Unlock()
		return nil, err
	}
	return updated, nil
}

// fixedPricer resolves every seat to the same price. The embedded interface
// keeps the admin surface unimplemented; tests only exercise Resolve.
type fixedPricer struct {
	pricing.Service
	priceCents int64
}

func (p *fixedPricer) Resolve(ctx context.Context, in pricing.SeatPricingInput, at time.Time) (int64, error) {
	return p.priceCents, nil
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

// noopCache satisfies cache.Service for tests that do not assert on the
// Redis mirror.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error { return nil }
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error         { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopCache) Exists(ctx context.Context, key string) bool          { return false }
func (noopCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	return nil
}
func (noopCache) Ping(ctx context.Context) error { return nil }
