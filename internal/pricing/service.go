package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seatcore/internal/shared/constants"
	"seatcore/pkg/cache"
	"seatcore/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Resolution. Deterministic for a fixed instant and configuration:
	// override > most specific active rule > tier base.
	Resolve(ctx context.Context, in SeatPricingInput, at time.Time) (int64, error)

	// Admin tier management
	CreateTier(ctx context.Context, req CreateTierRequest) (*PriceTier, error)
	GetTier(ctx context.Context, id string) (*PriceTier, error)
	ListTiers(ctx context.Context, tenantID string) ([]PriceTier, error)
	UpdateTier(ctx context.Context, id string, req UpdateTierRequest) (*PriceTier, error)
	DeleteTier(ctx context.Context, id string) error

	// Admin rule management
	CreateRule(ctx context.Context, req CreateRuleRequest) (*DynamicPricingRule, error)
	ListRules(ctx context.Context, eventSeatingID string) ([]DynamicPricingRule, error)
	UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*DynamicPricingRule, error)
	DeleteRule(ctx context.Context, id string) error
}

type service struct {
	repo         Repository
	cacheService cache.Service
	strategies   map[StrategyTag]Strategy
	ruleCacheTTL time.Duration
}

func NewService(repo Repository, cacheService cache.Service, ruleCacheTTL time.Duration, strategies ...Strategy) Service {
	byTag := make(map[StrategyTag]Strategy, len(strategies))
	for _, s := range strategies {
		byTag[s.Tag()] = s
	}
	return &service{
		repo:         repo,
		cacheService: cacheService,
		strategies:   byTag,
		ruleCacheTTL: ruleCacheTTL,
	}
}

// RESOLUTION

func (s *service) Resolve(ctx context.Context, in SeatPricingInput, at time.Time) (int64, error) {
	if in.PriceCentsOverride != nil {
		return *in.PriceCentsOverride, nil
	}
	if in.PriceTierID == nil {
		return 0, ErrNoPrice
	}

	tier, err := s.getTierCached(ctx, *in.PriceTierID)
	if err != nil {
		return 0, err
	}

	rules, err := s.getActiveRulesCached(ctx, in.EventSeatingID)
	if err != nil {
		return 0, err
	}

	rule := mostSpecificMatch(rules, in)
	if rule == nil {
		return tier.BasePriceCents, nil
	}

	strategy, ok := s.strategies[rule.Strategy]
	if !ok {
		return 0, fmt.Errorf("no strategy registered for tag %s", rule.Strategy)
	}

	return strategy.Price(ctx, rule, StrategyInput{
		EventSeatingID: in.EventSeatingID,
		SeatUID:        in.SeatUID,
		SectionName:    in.SectionName,
		RowLabel:       in.RowLabel,
		TierPriceCents: tier.BasePriceCents,
		At:             at,
	})
}

// mostSpecificMatch picks the winning rule: seat > row > section > event.
// Among equal specificity the earliest-created rule wins, which the
// repository's created_at ordering makes stable.
func mostSpecificMatch(rules []DynamicPricingRule, in SeatPricingInput) *DynamicPricingRule {
	var best *DynamicPricingRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Matches(in.SectionName, in.RowLabel, in.SeatUID) {
			continue
		}
		if best == nil || rule.Scope.Specificity() > best.Scope.Specificity() {
			best = rule
		}
	}
	return best
}

func (s *service) getTierCached(ctx context.Context, id uuid.UUID) (*PriceTier, error) {
	var tier PriceTier
	cacheKey := constants.CACHE_KEY_PRICE_TIER + id.String()
	err := s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_PRICE_TIERS, func() (interface{}, error) {
		return s.repo.GetTier(ctx, id)
	}, &tier)
	if err != nil {
		return nil, fmt.Errorf("failed to load price tier: %w", err)
	}
	return &tier, nil
}

func (s *service) getActiveRulesCached(ctx context.Context, eventSeatingID uuid.UUID) ([]DynamicPricingRule, error) {
	var rules []DynamicPricingRule
	cacheKey := constants.BuildPricingRulesKey(eventSeatingID.String())
	err := s.cacheService.GetOrSet(ctx, cacheKey, s.ruleCacheTTL, func() (interface{}, error) {
		return s.repo.GetActiveRules(ctx, eventSeatingID)
	}, &rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	return rules, nil
}

// TIER MANAGEMENT

func (s *service) CreateTier(ctx context.Context, req CreateTierRequest) (*PriceTier, error) {
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant ID: %w", err)
	}

	tier := &PriceTier{
		TenantID:       tenantID,
		Name:           req.Name,
		BasePriceCents: req.BasePriceCents,
	}
	if err := s.repo.CreateTier(ctx, tier); err != nil {
		return nil, fmt.Errorf("failed to create price tier: %w", err)
	}
	return tier, nil
}

func (s *service) GetTier(ctx context.Context, id string) (*PriceTier, error) {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tier ID: %w", err)
	}
	return s.repo.GetTier(ctx, tierID)
}

func (s *service) ListTiers(ctx context.Context, tenantID string) ([]PriceTier, error) {
	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant ID: %w", err)
	}
	return s.repo.ListTiers(ctx, tenantUUID)
}

func (s *service) UpdateTier(ctx context.Context, id string, req UpdateTierRequest) (*PriceTier, error) {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tier ID: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.BasePriceCents != nil {
		updates["base_price_cents"] = *req.BasePriceCents
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateTier(ctx, tierID, updates); err != nil {
			return nil, err
		}
		s.invalidateTier(ctx, tierID)
	}
	return s.repo.GetTier(ctx, tierID)
}

func (s *service) DeleteTier(ctx context.Context, id string) error {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid tier ID: %w", err)
	}
	if err := s.repo.DeleteTier(ctx, tierID); err != nil {
		return err
	}
	s.invalidateTier(ctx, tierID)
	return nil
}

// RULE MANAGEMENT

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*DynamicPricingRule, error) {
	eventSeatingID, err := uuid.Parse(req.EventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("invalid event seating ID: %w", err)
	}

	scope := Scope(req.Scope)
	strategy := StrategyTag(req.Strategy)
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: invalid scope %q", ErrBadParams, req.Scope)
	}
	if !strategy.IsValid() {
		return nil, fmt.Errorf("%w: invalid strategy %q", ErrBadParams, req.Strategy)
	}
	if scope != ScopeEvent && req.ScopeRef == "" {
		return nil, fmt.Errorf("%w: scope_ref is required for %s scope", ErrBadParams, scope)
	}
	if err := validateParams(strategy, req.Params); err != nil {
		return nil, err
	}

	rule := &DynamicPricingRule{
		EventSeatingID: eventSeatingID,
		Scope:          scope,
		ScopeRef:       req.ScopeRef,
		Strategy:       strategy,
		Params:         req.Params,
		Active:         req.Active,
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create pricing rule: %w", err)
	}

	s.invalidateRules(ctx, eventSeatingID)
	return rule, nil
}

func (s *service) ListRules(ctx context.Context, eventSeatingID string) ([]DynamicPricingRule, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("invalid event seating ID: %w", err)
	}
	return s.repo.ListRules(ctx, seatingUUID)
}

func (s *service) UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*DynamicPricingRule, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rule ID: %w", err)
	}

	rule, err := s.repo.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Params != nil {
		if err := validateParams(rule.Strategy, req.Params); err != nil {
			return nil, err
		}
		updates["params"] = req.Params
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateRule(ctx, ruleID, updates); err != nil {
			return nil, err
		}
		s.invalidateRules(ctx, rule.EventSeatingID)
	}
	return s.repo.GetRule(ctx, ruleID)
}

func (s *service) DeleteRule(ctx context.Context, id string) error {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid rule ID: %w", err)
	}

	rule, err := s.repo.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRule(ctx, ruleID); err != nil {
		return err
	}
	s.invalidateRules(ctx, rule.EventSeatingID)
	return nil
}

// CACHE INVALIDATION

func (s *service) invalidateTier(ctx context.Context, tierID uuid.UUID) {
	if err := s.cacheService.Delete(ctx, constants.CACHE_KEY_PRICE_TIER+tierID.String()); err != nil {
		logger.GetDefault().Debug("failed to invalidate tier cache", "tier_id", tierID.String(), "error", err)
	}
}

func (s *service) invalidateRules(ctx context.Context, eventSeatingID uuid.UUID) {
	if err := s.cacheService.Delete(ctx, constants.BuildPricingRulesKey(eventSeatingID.String())); err != nil {
		logger.GetDefault().Debug("failed to invalidate rules cache", "event_seating_id", eventSeatingID.String(), "error", err)
	}
}

// validateParams rejects rules whose params cannot be decoded by their
// strategy, so resolution never fails on a malformed stored rule.
func validateParams(strategy StrategyTag, params []byte) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: params are required", ErrBadParams)
	}
	switch strategy {
	case StrategyThreshold:
		var p ThresholdParams
		if err := jsonUnmarshalStrict(params, &p); err != nil {
			return err
		}
		for _, step := range p.Steps {
			if step.PriceCents <= 0 || step.MinSold < 0 {
				return fmt.Errorf("%w: threshold steps need positive price_cents and non-negative min_sold", ErrBadParams)
			}
		}
	case StrategyTimeBased:
		var p TimeBasedParams
		if err := jsonUnmarshalStrict(params, &p); err != nil {
			return err
		}
		for _, w := range p.Windows {
			if !w.EndsAt.After(w.StartsAt) {
				return fmt.Errorf("%w: time window must end after it starts", ErrBadParams)
			}
			if w.PriceCents <= 0 {
				return fmt.Errorf("%w: time window needs a positive price_cents", ErrBadParams)
			}
		}
	case StrategyVelocity:
		var p VelocityParams
		if err := jsonUnmarshalStrict(params, &p); err != nil {
			return err
		}
		if p.RateThreshold <= 0 || p.PriceCents <= 0 {
			return fmt.Errorf("%w: velocity rule needs positive rate_threshold and price_cents", ErrBadParams)
		}
	case StrategyCustom:
		// Custom rules carry adapter-defined params; passed through opaque.
	}
	return nil
}

// jsonUnmarshalStrict rejects params carrying fields the strategy does not
// know, so a typoed key fails at rule creation instead of silently pricing
// off the defaults.
func jsonUnmarshalStrict(data []byte, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return nil
}
