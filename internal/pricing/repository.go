package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Tiers
	CreateTier(ctx context.Context, tier *PriceTier) error
	GetTier(ctx context.Context, id uuid.UUID) (*PriceTier, error)
	ListTiers(ctx context.Context, tenantID uuid.UUID) ([]PriceTier, error)
	UpdateTier(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteTier(ctx context.Context, id uuid.UUID) error

	// Rules
	CreateRule(ctx context.Context, rule *DynamicPricingRule) error
	GetRule(ctx context.Context, id uuid.UUID) (*DynamicPricingRule, error)
	GetActiveRules(ctx context.Context, eventSeatingID uuid.UUID) ([]DynamicPricingRule, error)
	ListRules(ctx context.Context, eventSeatingID uuid.UUID) ([]DynamicPricingRule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// TIERS

func (r *repository) CreateTier(ctx context.Context, tier *PriceTier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

func (r *repository) GetTier(ctx context.Context, id uuid.UUID) (*PriceTier, error) {
	var tier PriceTier
	err := r.db.WithContext(ctx).First(&tier, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return &tier, nil
}

func (r *repository) ListTiers(ctx context.Context, tenantID uuid.UUID) ([]PriceTier, error) {
	var tiers []PriceTier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&tiers).Error
	return tiers, err
}

func (r *repository) UpdateTier(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&PriceTier{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTierNotFound
	}
	return nil
}

func (r *repository) DeleteTier(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&PriceTier{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTierNotFound
	}
	return nil
}

// RULES

func (r *repository) CreateRule(ctx context.Context, rule *DynamicPricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) GetRule(ctx context.Context, id uuid.UUID) (*DynamicPricingRule, error) {
	var rule DynamicPricingRule
	err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) GetActiveRules(ctx context.Context, eventSeatingID uuid.UUID) ([]DynamicPricingRule, error) {
	var rules []DynamicPricingRule
	err := r.db.WithContext(ctx).
		Where("event_seating_id = ? AND active = true", eventSeatingID).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *repository) ListRules(ctx context.Context, eventSeatingID uuid.UUID) ([]DynamicPricingRule, error) {
	var rules []DynamicPricingRule
	err := r.db.WithContext(ctx).
		Where("event_seating_id = ?", eventSeatingID).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *repository) UpdateRule(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&DynamicPricingRule{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *repository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&DynamicPricingRule{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}
