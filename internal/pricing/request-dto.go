package pricing

import "gorm.io/datatypes"

type CreateTierRequest struct {
	TenantID       string `json:"tenant_id" binding:"required,uuid"`
	Name           string `json:"name" binding:"required,min=1,max=100"`
	BasePriceCents int64  `json:"base_price_cents" binding:"required,min=1"`
}

type UpdateTierRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	BasePriceCents *int64  `json:"base_price_cents" binding:"omitempty,min=1"`
}

type CreateRuleRequest struct {
	EventSeatingID string         `json:"event_seating_id" binding:"required,uuid"`
	Scope          string         `json:"scope" binding:"required,oneof=EVENT SECTION ROW SEAT"`
	ScopeRef       string         `json:"scope_ref" binding:"omitempty,max=200"`
	Strategy       string         `json:"strategy" binding:"required,oneof=TIME_BASED VELOCITY THRESHOLD CUSTOM"`
	Params         datatypes.JSON `json:"params" binding:"required"`
	Active         bool           `json:"active"`
}

type UpdateRuleRequest struct {
	Params datatypes.JSON `json:"params" binding:"omitempty"`
	Active *bool          `json:"active" binding:"omitempty"`
}
