package catalog

import "github.com/google/uuid"

type CreateLayoutRequest struct {
	TenantID    string `json:"tenant_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

type UpdateLayoutRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

type CreateSectionRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Position int    `json:"position" binding:"omitempty,min=0"`
}

type CreateRowRequest struct {
	Label    string `json:"label" binding:"required,min=1,max=50"`
	Position int    `json:"position" binding:"omitempty,min=0"`
}

type SeatSpecRequest struct {
	SeatUID     string     `json:"seat_uid" binding:"required,min=1,max=100"`
	SeatLabel   string     `json:"seat_label" binding:"required,min=1,max=50"`
	Impossible  bool       `json:"impossible"`
	PriceTierID *uuid.UUID `json:"price_tier_id" binding:"omitempty"`
}

type AddSeatsRequest struct {
	Seats []SeatSpecRequest `json:"seats" binding:"required,min=1,dive"`
}

// PublishLayoutRequest freezes the layout (first publish only) and
// materializes inventory for one event. SoldSeatUIDs seeds already
// ticketed seats when an event migrates onto this system.
type PublishLayoutRequest struct {
	EventID      string   `json:"event_id" binding:"required,uuid"`
	SoldSeatUIDs []string `json:"sold_seat_uids" binding:"omitempty"`
}
