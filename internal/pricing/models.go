package pricing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Scope granularity a pricing rule applies to, most specific first when
// resolving: SEAT > ROW > SECTION > EVENT.
type Scope string

const (
	ScopeEvent   Scope = "EVENT"
	ScopeSection Scope = "SECTION"
	ScopeRow     Scope = "ROW"
	ScopeSeat    Scope = "SEAT"
)

// IsValid checks if the scope is valid
func (s Scope) IsValid() bool {
	switch s {
	case ScopeEvent, ScopeSection, ScopeRow, ScopeSeat:
		return true
	}
	return false
}

// Specificity returns the resolution rank, higher wins
func (s Scope) Specificity() int {
	switch s {
	case ScopeSeat:
		return 4
	case ScopeRow:
		return 3
	case ScopeSection:
		return 2
	case ScopeEvent:
		return 1
	}
	return 0
}

// StrategyTag selects the pricing strategy implementation for a rule
type StrategyTag string

const (
	StrategyTimeBased StrategyTag = "TIME_BASED"
	StrategyVelocity  StrategyTag = "VELOCITY"
	StrategyThreshold StrategyTag = "THRESHOLD"
	StrategyCustom    StrategyTag = "CUSTOM"
)

// IsValid checks if the strategy tag is valid
func (t StrategyTag) IsValid() bool {
	switch t {
	case StrategyTimeBased, StrategyVelocity, StrategyThreshold, StrategyCustom:
		return true
	}
	return false
}

// PriceTier is a named base-price bucket for a seat class, tenant-scoped
type PriceTier struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name           string    `gorm:"not null" json:"name"`
	BasePriceCents int64     `gorm:"not null" json:"base_price_cents"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name for PriceTier
func (PriceTier) TableName() string {
	return "price_tiers"
}

// DynamicPricingRule overrides tier pricing within a scope while active.
// ScopeRef carries the section name, row label or seat uid depending on
// Scope; empty for EVENT.
type DynamicPricingRule struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventSeatingID uuid.UUID      `gorm:"type:uuid;not null;index" json:"event_seating_id"`
	Scope          Scope          `gorm:"type:varchar(10);not null;check:scope IN ('EVENT', 'SECTION', 'ROW', 'SEAT')" json:"scope"`
	ScopeRef       string         `json:"scope_ref"`
	Strategy       StrategyTag    `gorm:"type:varchar(15);not null;check:strategy IN ('TIME_BASED', 'VELOCITY', 'THRESHOLD', 'CUSTOM')" json:"strategy"`
	Params         datatypes.JSON `gorm:"type:jsonb" json:"params"`
	Active         bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName sets the table name for DynamicPricingRule
func (DynamicPricingRule) TableName() string {
	return "dynamic_pricing_rules"
}

// Matches reports whether the rule's scope covers the given seat
func (r *DynamicPricingRule) Matches(sectionName, rowLabel, seatUID string) bool {
	switch r.Scope {
	case ScopeEvent:
		return true
	case ScopeSection:
		return r.ScopeRef == sectionName
	case ScopeRow:
		return r.ScopeRef == rowLabel
	case ScopeSeat:
		return r.ScopeRef == seatUID
	}
	return false
}

// SeatPricingInput is everything the resolver needs to price one seat
type SeatPricingInput struct {
	EventSeatingID     uuid.UUID
	SeatUID            string
	SectionName        string
	RowLabel           string
	PriceTierID        *uuid.UUID
	PriceCentsOverride *int64
}
