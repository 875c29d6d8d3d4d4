package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// StrategyInput carries the seat and surrounding state one strategy
// evaluation needs. TierPriceCents is the fallback when a strategy's
// condition does not fire.
type StrategyInput struct {
	EventSeatingID uuid.UUID
	SeatUID        string
	SectionName    string
	RowLabel       string
	TierPriceCents int64
	At             time.Time
}

// Strategy prices a seat under one rule. Implementations must be
// deterministic for a fixed input and fixed external state.
type Strategy interface {
	Tag() StrategyTag
	Price(ctx context.Context, rule *DynamicPricingRule, in StrategyInput) (int64, error)
}

// SoldCounter reports cumulative sold seats within a rule scope
type SoldCounter interface {
	CountSold(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel, seatUID string) (int64, error)
}

// THRESHOLD

// ThresholdParams configure stepwise price increases on cumulative sales.
// Steps fire in min_sold order, so the resolved price is monotonic
// non-decreasing as sales accumulate.
type ThresholdParams struct {
	Steps []ThresholdStep `json:"steps"`
}

type ThresholdStep struct {
	MinSold    int64 `json:"min_sold"`
	PriceCents int64 `json:"price_cents"`
}

type thresholdStrategy struct {
	counter SoldCounter
}

func NewThresholdStrategy(counter SoldCounter) Strategy {
	return &thresholdStrategy{counter: counter}
}

func (s *thresholdStrategy) Tag() StrategyTag {
	return StrategyThreshold
}

func (s *thresholdStrategy) Price(ctx context.Context, rule *DynamicPricingRule, in StrategyInput) (int64, error) {
	var params ThresholdParams
	if err := json.Unmarshal(rule.Params, &params); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	if len(params.Steps) == 0 {
		return in.TierPriceCents, nil
	}

	sectionName, rowLabel, seatUID := scopeFilter(rule)
	sold, err := s.counter.CountSold(ctx, in.EventSeatingID, sectionName, rowLabel, seatUID)
	if err != nil {
		return 0, fmt.Errorf("failed to count sold seats: %w", err)
	}

	sort.Slice(params.Steps, func(i, j int) bool {
		return params.Steps[i].MinSold < params.Steps[j].MinSold
	})

	price := in.TierPriceCents
	for _, step := range params.Steps {
		if sold >= step.MinSold {
			price = step.PriceCents
		}
	}
	return price, nil
}

// TIME_BASED

// TimeBasedParams configure price windows; the first window containing the
// resolution instant wins, otherwise the tier price applies.
type TimeBasedParams struct {
	Windows []TimeWindow `json:"windows"`
}

type TimeWindow struct {
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	PriceCents int64     `json:"price_cents"`
}

type timeBasedStrategy struct{}

func NewTimeBasedStrategy() Strategy {
	return timeBasedStrategy{}
}

func (timeBasedStrategy) Tag() StrategyTag {
	return StrategyTimeBased
}

func (timeBasedStrategy) Price(ctx context.Context, rule *DynamicPricingRule, in StrategyInput) (int64, error) {
	var params TimeBasedParams
	if err := json.Unmarshal(rule.Params, &params); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadParams, err)
	}

	for _, w := range params.Windows {
		if !in.At.Before(w.StartsAt) && in.At.Before(w.EndsAt) {
			return w.PriceCents, nil
		}
	}
	return in.TierPriceCents, nil
}

// VELOCITY

// VelocityParams raise the price once the trailing-window sale rate crosses
// RateThreshold sales per window.
type VelocityParams struct {
	RateThreshold int64 `json:"rate_threshold"`
	PriceCents    int64 `json:"price_cents"`
}

type velocityStrategy struct {
	counter VelocityCounter
	window  time.Duration
}

func NewVelocityStrategy(counter VelocityCounter, window time.Duration) Strategy {
	return &velocityStrategy{counter: counter, window: window}
}

func (s *velocityStrategy) Tag() StrategyTag {
	return StrategyVelocity
}

func (s *velocityStrategy) Price(ctx context.Context, rule *DynamicPricingRule, in StrategyInput) (int64, error) {
	var params VelocityParams
	if err := json.Unmarshal(rule.Params, &params); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	if params.RateThreshold <= 0 {
		return in.TierPriceCents, nil
	}

	rate, err := s.counter.RateInWindow(ctx, scopeKey(rule, in), in.At, s.window)
	if err != nil {
		return 0, fmt.Errorf("failed to read sale rate: %w", err)
	}

	if rate >= params.RateThreshold {
		return params.PriceCents, nil
	}
	return in.TierPriceCents, nil
}

// CUSTOM

type customStrategy struct {
	adapter CustomAdapter
}

func NewCustomStrategy(adapter CustomAdapter) Strategy {
	return &customStrategy{adapter: adapter}
}

func (s *customStrategy) Tag() StrategyTag {
	return StrategyCustom
}

func (s *customStrategy) Price(ctx context.Context, rule *DynamicPricingRule, in StrategyInput) (int64, error) {
	return s.adapter.ResolvePrice(ctx, in)
}

// scopeFilter translates a rule scope into sold-count filter columns
func scopeFilter(rule *DynamicPricingRule) (sectionName, rowLabel, seatUID string) {
	switch rule.Scope {
	case ScopeSection:
		sectionName = rule.ScopeRef
	case ScopeRow:
		rowLabel = rule.ScopeRef
	case ScopeSeat:
		seatUID = rule.ScopeRef
	}
	return
}

// scopeKey builds the rolling-counter key for a rule scope
func scopeKey(rule *DynamicPricingRule, in StrategyInput) string {
	switch rule.Scope {
	case ScopeSection:
		return fmt.Sprintf("%s:section:%s", in.EventSeatingID, rule.ScopeRef)
	case ScopeRow:
		return fmt.Sprintf("%s:row:%s", in.EventSeatingID, rule.ScopeRef)
	case ScopeSeat:
		return fmt.Sprintf("%s:seat:%s", in.EventSeatingID, rule.ScopeRef)
	}
	return fmt.Sprintf("%s:event", in.EventSeatingID)
}

// SaleScopeKeys lists every counter key a completed sale contributes to, so
// the rate is available no matter which scope a velocity rule is written at.
func SaleScopeKeys(eventSeatingID uuid.UUID, sectionName, rowLabel, seatUID string) []string {
	return []string{
		fmt.Sprintf("%s:event", eventSeatingID),
		fmt.Sprintf("%s:section:%s", eventSeatingID, sectionName),
		fmt.Sprintf("%s:row:%s", eventSeatingID, rowLabel),
		fmt.Sprintf("%s:seat:%s", eventSeatingID, seatUID),
	}
}
