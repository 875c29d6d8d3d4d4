package holds

import (
	"time"

	"github.com/google/uuid"
)

// SeatHold is the ephemeral claim a session has on one seat. It joins
// EventSeat by (event_seating_id, seat_uid), not by foreign id, and carries
// the price pinned at creation so later pricing changes never retroactively
// alter an in-progress checkout.
type SeatHold struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventSeatingID uuid.UUID `gorm:"type:uuid;not null;index" json:"event_seating_id"`
	SeatUID        string    `gorm:"not null" json:"seat_uid"`
	SessionUID     string    `gorm:"not null" json:"session_uid"`
	PriceCents     int64     `gorm:"not null" json:"price_cents"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName sets the table name for SeatHold
func (SeatHold) TableName() string {
	return "seat_holds"
}

// IsLive reports whether the hold has not yet expired
func (h *SeatHold) IsLive(now time.Time) bool {
	return h.ExpiresAt.After(now)
}
