package reaper

import (
	"context"
	"sort"
	"sync"
	"time"

	"seatcore/internal/holds"
	"seatcore/internal/inventory"
	"seatcore/internal/stream"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sweepStore backs both the seat and hold repositories so a reclaim can be
// faked with the same conditional semantics as the transactional path.
type sweepStore struct {
	mu    sync.Mutex
	seats map[string]*inventory.EventSeat
	holds map[string]*holds.SeatHold
}

var (
	_ inventory.Repository = (*sweepStore)(nil)
	_ holds.Repository     = (*sweepStore)(nil)
)

func newSweepStore() *sweepStore {
	return &sweepStore{
		seats: make(map[string]*inventory.EventSeat),
		holds: make(map[string]*holds.SeatHold),
	}
}

func (s *sweepStore) putSeat(seat inventory.EventSeat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seat.ID == uuid.Nil {
		seat.ID = uuid.New()
	}
	s.seats[seat.SeatUID] = &seat
}

func (s *sweepStore) putHold(hold holds.SeatHold) *holds.SeatHold {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hold.ID == uuid.Nil {
		hold.ID = uuid.New()
	}
	s.holds[hold.SeatUID] = &hold
	return &hold
}

func (s *sweepStore) holdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holds)
}

// inventory.Repository

func (s *sweepStore) CreateSeats(ctx context.Context, seats []inventory.EventSeat) error {
	for i := range seats {
		s.putSeat(seats[i])
	}
	return nil
}

func (s *sweepStore) HasSeats(ctx context.Context, eventSeatingID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seats) > 0, nil
}

func (s *sweepStore) GetSeat(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*inventory.EventSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[seatUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *seat
	return &copied, nil
}

func (s *sweepStore) GetSeatsByUIDs(ctx context.Context, eventSeatingID uuid.UUID, seatUIDs []string) ([]inventory.EventSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []inventory.EventSeat
	for _, uid := range seatUIDs {
		if seat, ok := s.seats[uid]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (s *sweepStore) ListSeats(ctx context.Context, eventSeatingID uuid.UUID, q inventory.ListSeatsQuery) ([]inventory.EventSeat, error) {
	return nil, nil
}

func (s *sweepStore) ListSeatUIDsByLocation(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel string, seatLabels []string) ([]string, error) {
	return nil, nil
}

func (s *sweepStore) CountSold(ctx context.Context, eventSeatingID uuid.UUID, scope inventory.ScopeFilter) (int64, error) {
	return 0, nil
}

func (s *sweepStore) ApplyTransition(ctx context.Context, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(seatUID, expectedVersion, from, to, at)
}

func (s *sweepStore) ApplyTransitionTx(tx *gorm.DB, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(seatUID, expectedVersion, from, to, at)
}

func (s *sweepStore) transitionLocked(seatUID string, expectedVersion int64, from []inventory.Status, to inventory.Status, at time.Time) (*inventory.EventSeat, error) {
	seat, ok := s.seats[seatUID]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	fromOK := false
	for _, st := range from {
		if seat.Status == st {
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

func (s *sweepStore) CreateHoldBatch(ctx context.Context, batch []holds.SeatHold, seatVersions map[string]int64, at time.Time) error {
	for i := range batch {
		s.putHold(batch[i])
	}
	return nil
}

func (s *sweepStore) GetHold(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*holds.SeatHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[seatUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *hold
	return &copied, nil
}

func (s *sweepStore) GetSessionHolds(ctx context.Context, sessionUID string, liveAfter time.Time) ([]holds.SeatHold, error) {
	return nil, nil
}

func (s *sweepStore) GetSessionHoldsForSeats(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string) ([]holds.SeatHold, error) {
	return nil, nil
}

func (s *sweepStore) ExtendHolds(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string, expiresAt, now time.Time) (int64, error) {
	return 0, nil
}

func (s *sweepStore) ReleaseHold(ctx context.Context, hold *holds.SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *sweepStore) ListExpired(ctx context.Context, before time.Time, limit int) ([]holds.SeatHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []holds.SeatHold
	for _, hold := range s.holds {
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

func (s *sweepStore) ListLiveHoldsOnSoldSeats(ctx context.Context, now time.Time, limit int) ([]holds.SeatHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []holds.SeatHold
	for _, hold := range s.holds {
		if !hold.ExpiresAt.After(now) {
			continue
		}
		seat, ok := s.seats[hold.SeatUID]
		if ok && seat.Status == inventory.StatusSold {
			out = append(out, *hold)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *sweepStore) DeleteHoldByID(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uid, hold := range s.holds {
		if hold.ID == id {
			delete(s.holds, uid)
			return nil
		}
	}
	return nil
}

func (s *sweepStore) ReclaimExpiredHold(ctx context.Context, hold *holds.SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	s.mu.Lock()
	stored, ok := s.holds[hold.SeatUID]
	if !ok || stored.ID != hold.ID || !stored.ExpiresAt.Before(at) {
		s.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	delete(s.holds, hold.SeatUID)
	updated, err := s.transitionLocked(hold.SeatUID, seatVersion,
		[]inventory.Status{inventory.StatusHeld}, inventory.StatusAvailable, at)
	if err != nil {
		s.holds[hold.SeatUID] = stored
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()
	return updated, nil
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
