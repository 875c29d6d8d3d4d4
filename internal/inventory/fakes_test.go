package inventory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"seatcore/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeRepo implements Repository in memory with the same conditional
// update semantics as the SQL version.
type fakeRepo struct {
	mu        sync.Mutex
	seats     map[string]*EventSeat // keyed by seat_uid, single seating per test
	listCalls int
}

func newFakeRepo(seats ...EventSeat) *fakeRepo {
	repo := &fakeRepo{seats: make(map[string]*EventSeat, len(seats))}
	for i := range seats {
		seat := seats[i]
		repo.seats[seat.SeatUID] = &seat
	}
	return repo
}

func (f *fakeRepo) CreateSeats(ctx context.Context, seats []EventSeat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range seats {
		seat := seats[i]
		if _, exists := f.seats[seat.SeatUID]; exists {
			continue // mirrors ON CONFLICT DO NOTHING
		}
		f.seats[seat.SeatUID] = &seat
	}
	return nil
}

func (f *fakeRepo) HasSeats(ctx context.Context, eventSeatingID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seats) > 0, nil
}

func (f *fakeRepo) GetSeat(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *seat
	return &copied, nil
}

func (f *fakeRepo) GetSeatsByUIDs(ctx context.Context, eventSeatingID uuid.UUID, seatUIDs []string) ([]EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []EventSeat
	for _, uid := range seatUIDs {
		if seat, ok := f.seats[uid]; ok {
			out = append(out, *seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatUID < out[j].SeatUID })
	return out, nil
}

func (f *fakeRepo) ListSeats(ctx context.Context, eventSeatingID uuid.UUID, q ListSeatsQuery) ([]EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var all []EventSeat
	for _, seat := range f.seats {
		if q.Status != "" && seat.Status != q.Status {
			continue
		}
		if q.SectionName != "" && seat.SectionName != q.SectionName {
			continue
		}
		if q.Cursor != "" && seat.SeatUID <= q.Cursor {
			continue
		}
		all = append(all, *seat)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SeatUID < all[j].SeatUID })
	if len(all) > q.Limit {
		all = all[:q.Limit]
	}
	return all, nil
}

func (f *fakeRepo) ListSeatUIDsByLocation(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel string, seatLabels []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	labels := make(map[string]bool, len(seatLabels))
	for _, l := range seatLabels {
		labels[l] = true
	}
	var uids []string
	for _, seat := range f.seats {
		if seat.SectionName != sectionName {
			continue
		}
		if rowLabel != "" && seat.RowLabel != rowLabel {
			continue
		}
		if len(seatLabels) > 0 && !labels[seat.SeatLabel] {
			continue
		}
		uids = append(uids, seat.SeatUID)
	}
	sort.Strings(uids)
	return uids, nil
}

func (f *fakeRepo) CountSold(ctx context.Context, eventSeatingID uuid.UUID, scope ScopeFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, seat := range f.seats {
		if seat.Status != StatusSold {
			continue
		}
		if scope.SectionName != "" && seat.SectionName != scope.SectionName {
			continue
		}
		if scope.RowLabel != "" && seat.RowLabel != scope.RowLabel {
			continue
		}
		if scope.SeatUID != "" && seat.SeatUID != scope.SeatUID {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeRepo) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeRepo) ApplyTransition(ctx context.Context, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []Status, to Status, at time.Time) (*EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(eventSeatingID, seatUID, expectedVersion, from, to, at)
}

func (f *fakeRepo) ApplyTransitionTx(tx *gorm.DB, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []Status, to Status, at time.Time) (*EventSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(eventSeatingID, seatUID, expectedVersion, from, to, at)
}

func (f *fakeRepo) applyLocked(eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []Status, to Status, at time.Time) (*EventSeat, error) {
	seat, ok := f.seats[seatUID]
	if !ok {
		return nil, ErrNotFound
	}

	matched := seat.Version == expectedVersion
	if matched {
		matched = false
		for _, s := range from {
			if seat.Status == s {
				matched = true
				break
			}
		}
	}
	if !matched {
		return nil, &ConflictError{
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

// noopCache misses every read, so service behavior matches an empty Redis.
type noopCache struct{}

var _ cache.Service = noopCache{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error { return cache.ErrCacheMiss }
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error            { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopCache) Exists(ctx context.Context, key string) bool             { return false }
func (noopCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	value, err := fetcher()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
func (noopCache) Ping(ctx context.Context) error { return nil }

// pageCache is an in-memory cache.Service with real hit semantics for
// observing which reads are served without touching the repository.
type pageCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

var _ cache.Service = (*pageCache)(nil)

func newPageCache() *pageCache {
	return &pageCache{store: make(map[string][]byte)}
}

func (c *pageCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.store[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *pageCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.store[key] = data
	c.mu.Unlock()
	return nil
}

func (c *pageCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
	return nil
}

func (c *pageCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (c *pageCache) Exists(ctx context.Context, key string) bool {
	c.mu.Lock()
	_, ok := c.store[key]
	c.mu.Unlock()
	return ok
}

func (c *pageCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := fetcher()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *pageCache) Ping(ctx context.Context) error { return nil }
