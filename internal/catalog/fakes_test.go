package catalog

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"seatcore/internal/inventory"
	"seatcore/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeLayoutRepo stores the layout tree in memory. Trees come back with
// the same ordering the SQL repository applies: sections and rows by
// position, seats by seat_uid.
type fakeLayoutRepo struct {
	mu           sync.Mutex
	layouts      map[uuid.UUID]*SeatingLayout
	bindings     map[uuid.UUID]*EventSeatingLayout
	bindingReads int
	treeReads    int
}

var _ Repository = (*fakeLayoutRepo)(nil)

func newFakeLayoutRepo() *fakeLayoutRepo {
	return &fakeLayoutRepo{
		layouts:  make(map[uuid.UUID]*SeatingLayout),
		bindings: make(map[uuid.UUID]*EventSeatingLayout),
	}
}

func (f *fakeLayoutRepo) CreateLayout(ctx context.Context, layout *SeatingLayout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if layout.ID == uuid.Nil {
		layout.ID = uuid.New()
	}
	copied := *layout
	f.layouts[layout.ID] = &copied
	return nil
}

func (f *fakeLayoutRepo) GetLayout(ctx context.Context, id uuid.UUID) (*SeatingLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	layout, ok := f.layouts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *layout
	copied.Sections = nil
	return &copied, nil
}

func (f *fakeLayoutRepo) GetLayoutTree(ctx context.Context, id uuid.UUID) (*SeatingLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.treeReads++
	layout, ok := f.layouts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *layout
	copied.Sections = append([]LayoutSection(nil), layout.Sections...)
	sort.SliceStable(copied.Sections, func(i, j int) bool {
		return copied.Sections[i].Position < copied.Sections[j].Position
	})
	for i := range copied.Sections {
		section := &copied.Sections[i]
		section.Rows = append([]LayoutRow(nil), section.Rows...)
		sort.SliceStable(section.Rows, func(a, b int) bool {
			return section.Rows[a].Position < section.Rows[b].Position
		})
		for j := range section.Rows {
			row := &section.Rows[j]
			row.Seats = append([]LayoutSeat(nil), row.Seats...)
			sort.SliceStable(row.Seats, func(a, b int) bool {
				return row.Seats[a].SeatUID < row.Seats[b].SeatUID
			})
		}
	}
	return &copied, nil
}

func (f *fakeLayoutRepo) ListLayouts(ctx context.Context, tenantID uuid.UUID) ([]SeatingLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatingLayout
	for _, layout := range f.layouts {
		if layout.TenantID == tenantID {
			copied := *layout
			copied.Sections = nil
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeLayoutRepo) UpdateLayout(ctx context.Context, layout *SeatingLayout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.layouts[layout.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name = layout.Name
	stored.Description = layout.Description
	return nil
}

func (f *fakeLayoutRepo) DeleteLayout(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.layouts, id)
	return nil
}

func (f *fakeLayoutRepo) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	layout, ok := f.layouts[id]
	if !ok || layout.Status != LayoutDraft {
		return gorm.ErrRecordNotFound
	}
	layout.Status = LayoutPublished
	published := at
	layout.PublishedAt = &published
	return nil
}

func (f *fakeLayoutRepo) CreateSection(ctx context.Context, section *LayoutSection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	layout, ok := f.layouts[section.LayoutID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if section.ID == uuid.Nil {
		section.ID = uuid.New()
	}
	layout.Sections = append(layout.Sections, *section)
	return nil
}

func (f *fakeLayoutRepo) GetSection(ctx context.Context, id uuid.UUID) (*LayoutSection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, layout := range f.layouts {
		for i := range layout.Sections {
			if layout.Sections[i].ID == id {
				copied := layout.Sections[i]
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLayoutRepo) CreateRow(ctx context.Context, row *LayoutRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, layout := range f.layouts {
		for i := range layout.Sections {
			if layout.Sections[i].ID == row.SectionID {
				if row.ID == uuid.Nil {
					row.ID = uuid.New()
				}
				layout.Sections[i].Rows = append(layout.Sections[i].Rows, *row)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeLayoutRepo) GetRow(ctx context.Context, id uuid.UUID) (*LayoutRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, layout := range f.layouts {
		for i := range layout.Sections {
			for j := range layout.Sections[i].Rows {
				if layout.Sections[i].Rows[j].ID == id {
					copied := layout.Sections[i].Rows[j]
					return &copied, nil
				}
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLayoutRepo) CreateSeats(ctx context.Context, seats []LayoutSeat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range seats {
		seat := seats[s]
		if seat.ID == uuid.Nil {
			seat.ID = uuid.New()
		}
		placed := false
		for _, layout := range f.layouts {
			for i := range layout.Sections {
				for j := range layout.Sections[i].Rows {
					if layout.Sections[i].Rows[j].ID == seat.RowID {
						layout.Sections[i].Rows[j].Seats = append(layout.Sections[i].Rows[j].Seats, seat)
						placed = true
					}
				}
			}
		}
		if !placed {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (f *fakeLayoutRepo) LayoutIDForSection(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, layout := range f.layouts {
		for i := range layout.Sections {
			if layout.Sections[i].ID == sectionID {
				return id, nil
			}
		}
	}
	return uuid.Nil, gorm.ErrRecordNotFound
}

func (f *fakeLayoutRepo) LayoutIDForRow(ctx context.Context, rowID uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, layout := range f.layouts {
		for i := range layout.Sections {
			for j := range layout.Sections[i].Rows {
				if layout.Sections[i].Rows[j].ID == rowID {
					return id, nil
				}
			}
		}
	}
	return uuid.Nil, gorm.ErrRecordNotFound
}

func (f *fakeLayoutRepo) CreateEventSeatingLayout(ctx context.Context, binding *EventSeatingLayout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if binding.ID == uuid.Nil {
		binding.ID = uuid.New()
	}
	copied := *binding
	f.bindings[binding.ID] = &copied
	return nil
}

func (f *fakeLayoutRepo) GetEventSeatingLayout(ctx context.Context, id uuid.UUID) (*EventSeatingLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindingReads++
	binding, ok := f.bindings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *binding
	return &copied, nil
}

func (f *fakeLayoutRepo) bindingReadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bindingReads
}

func (f *fakeLayoutRepo) treeReadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.treeReads
}

// recordingSeats captures Materialize calls; the embedded interface leaves
// the rest of the inventory surface unimplemented.
type recordingSeats struct {
	inventory.Service
	mu           sync.Mutex
	specs        []inventory.SeatSpec
	soldSeatUIDs []string
	calls        int
}

func (r *recordingSeats) Materialize(ctx context.Context, eventSeatingID string, specs []inventory.SeatSpec, soldSeatUIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.specs = append([]inventory.SeatSpec(nil), specs...)
	r.soldSeatUIDs = append([]string(nil), soldSeatUIDs...)
	return len(specs), nil
}

// memoCache is an in-memory cache.Service with real hit semantics, so
// tests can observe whether a fetcher ran.
type memoCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

var _ cache.Service = (*memoCache)(nil)

func newMemoCache() *memoCache {
	return &memoCache{store: make(map[string][]byte)}
}

func (c *memoCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.store[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.store[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
	return nil
}

func (c *memoCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (c *memoCache) Exists(ctx context.Context, key string) bool {
	c.mu.Lock()
	_, ok := c.store[key]
	c.mu.Unlock()
	return ok
}

func (c *memoCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
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

func (c *memoCache) Ping(ctx context.Context) error { return nil }
