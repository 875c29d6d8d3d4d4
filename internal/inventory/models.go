package inventory

import (
	"time"

	"github.com/google/uuid"
)

// EventSeat is the mutable inventory record for one seat of one event
// seating. It is the only shared mutable resource in the system; every
// status change goes through the conditional update in ApplyTransition
// and bumps Version.
type EventSeat struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventSeatingID uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_seating_id"`
	SeatUID        string     `gorm:"not null" json:"seat_uid"`
	SectionName    string     `gorm:"not null" json:"section_name"`
	RowLabel       string     `gorm:"not null" json:"row_label"`
	SeatLabel      string     `gorm:"not null" json:"seat_label"`
	Status         Status     `gorm:"type:varchar(20);not null;default:'AVAILABLE';check:status IN ('AVAILABLE', 'HELD', 'SOLD', 'BLOCKED', 'DISABLED')" json:"status"`
	PriceTierID    *uuid.UUID `gorm:"type:uuid" json:"price_tier_id,omitempty"`
	PriceCentsOverride *int64 `json:"price_cents_override,omitempty"`
	Version        int64      `gorm:"not null;default:1" json:"version"`
	LastChangeAt   time.Time  `gorm:"not null" json:"last_change_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName sets the table name for EventSeat
func (EventSeat) TableName() string {
	return "event_seats"
}

// SeatSpec describes one seat to materialize for an event seating.
// Built by the catalog at publish time from the frozen geometry snapshot.
type SeatSpec struct {
	SeatUID     string
	SectionName string
	RowLabel    string
	SeatLabel   string
	Disabled    bool
	PriceTierID *uuid.UUID
}

// ScopeFilter narrows a sold-count query to a pricing scope. Zero value
// means the whole event seating.
type ScopeFilter struct {
	SectionName string
	RowLabel    string
	SeatUID     string
}
