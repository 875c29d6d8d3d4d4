package holds

import "time"

// HoldBatchResponse reports a successful all-or-nothing hold
type HoldBatchResponse struct {
	EventSeatingID string     `json:"event_seating_id"`
	SessionUID     string     `json:"session_uid"`
	Holds          []SeatHold `json:"holds"`
	TotalCents     int64      `json:"total_cents"`
	ExpiresAt      time.Time  `json:"expires_at"`
	TTLSeconds     int        `json:"ttl_seconds"`
}

type RenewHoldResponse struct {
	Renewed    int       `json:"renewed"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// ReleaseHoldResponse lists per-seat outcomes; releasing is not
// all-or-nothing since every released seat is independently final.
type ReleaseHoldResponse struct {
	Released []string     `json:"released"`
	Failed   []FailedSeat `json:"failed,omitempty"`
}
