package pricing

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"seatcore/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// fakeCache is an in-memory stand-in for the redis JSON cache.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.store[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.store[key] = data
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (c *fakeCache) Exists(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

func (c *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
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

func (c *fakeCache) Ping(ctx context.Context) error { return nil }

// fakeRepo keeps tiers and rules in memory.
type fakeRepo struct {
	mu    sync.Mutex
	tiers map[uuid.UUID]*PriceTier
	rules map[uuid.UUID]*DynamicPricingRule
	seq   int
}

func newFakePricingRepo() *fakeRepo {
	return &fakeRepo{
		tiers: make(map[uuid.UUID]*PriceTier),
		rules: make(map[uuid.UUID]*DynamicPricingRule),
	}
}

func (f *fakeRepo) CreateTier(ctx context.Context, tier *PriceTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tier.ID == uuid.Nil {
		tier.ID = uuid.New()
	}
	copied := *tier
	f.tiers[tier.ID] = &copied
	return nil
}

func (f *fakeRepo) GetTier(ctx context.Context, id uuid.UUID) (*PriceTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tier, ok := f.tiers[id]
	if !ok {
		return nil, ErrTierNotFound
	}
	copied := *tier
	return &copied, nil
}

func (f *fakeRepo) ListTiers(ctx context.Context, tenantID uuid.UUID) ([]PriceTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []PriceTier
	for _, tier := range f.tiers {
		if tier.TenantID == tenantID {
			out = append(out, *tier)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateTier(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tier, ok := f.tiers[id]
	if !ok {
		return ErrTierNotFound
	}
	if name, ok := updates["name"].(string); ok {
		tier.Name = name
	}
	if price, ok := updates["base_price_cents"].(int64); ok {
		tier.BasePriceCents = price
	}
	return nil
}

func (f *fakeRepo) DeleteTier(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tiers[id]; !ok {
		return ErrTierNotFound
	}
	delete(f.tiers, id)
	return nil
}

func (f *fakeRepo) CreateRule(ctx context.Context, rule *DynamicPricingRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	f.seq++
	rule.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Second)
	copied := *rule
	f.rules[rule.ID] = &copied
	return nil
}

func (f *fakeRepo) GetRule(ctx context.Context, id uuid.UUID) (*DynamicPricingRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule, ok := f.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	copied := *rule
	return &copied, nil
}

func (f *fakeRepo) GetActiveRules(ctx context.Context, eventSeatingID uuid.UUID) ([]DynamicPricingRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []DynamicPricingRule
	for _, rule := range f.rules {
		if rule.EventSeatingID == eventSeatingID && rule.Active {
			out = append(out, *rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) ListRules(ctx context.Context, eventSeatingID uuid.UUID) ([]DynamicPricingRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []DynamicPricingRule
	for _, rule := range f.rules {
		if rule.EventSeatingID == eventSeatingID {
			out = append(out, *rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) UpdateRule(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule, ok := f.rules[id]
	if !ok {
		return ErrRuleNotFound
	}
	if active, ok := updates["active"].(bool); ok {
		rule.Active = active
	}
	if params, ok := updates["params"].(datatypes.JSON); ok {
		rule.Params = params
	}
	return nil
}

func (f *fakeRepo) DeleteRule(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rules[id]; !ok {
		return ErrRuleNotFound
	}
	delete(f.rules, id)
	return nil
}

var _ Repository = (*fakeRepo)(nil)
var _ cache.Service = (*fakeCache)(nil)

// fakeSoldCounter returns a fixed sold count regardless of scope.
type fakeSoldCounter struct {
	sold int64
}

func (f *fakeSoldCounter) CountSold(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel, seatUID string) (int64, error) {
	return f.sold, nil
}

// fakeVelocityCounter records increments per scope key minute buckets.
type fakeVelocityCounter struct {
	mu      sync.Mutex
	buckets map[string]int64
}

func newFakeVelocityCounter() *fakeVelocityCounter {
	return &fakeVelocityCounter{buckets: make(map[string]int64)}
}

func (f *fakeVelocityCounter) Increment(ctx context.Context, scopeKey string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[scopeKey]++
	return nil
}

func (f *fakeVelocityCounter) RateInWindow(ctx context.Context, scopeKey string, at time.Time, window time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[scopeKey], nil
}

// fakeAdapter counts external calls so tests can observe caching.
type fakeAdapter struct {
	mu         sync.Mutex
	priceCents int64
	calls      int
}

func (f *fakeAdapter) ResolvePrice(ctx context.Context, in StrategyInput) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.priceCents, nil
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
