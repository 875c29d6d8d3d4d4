package checkout

import "time"

// ConfirmedSeat carries the price that was pinned when the hold was
// created, not a fresh pricing pass.
type ConfirmedSeat struct {
	SeatUID    string `json:"seat_uid"`
	PriceCents int64  `json:"price_cents"`
}

// ConfirmedResponse is serialized into the confirmation row, so token
// replays return this exact payload byte for byte.
type ConfirmedResponse struct {
	EventSeatingID   string          `json:"event_seating_id"`
	SessionUID       string          `json:"session_uid"`
	IdempotencyToken string          `json:"idempotency_token"`
	Seats            []ConfirmedSeat `json:"seats"`
	TotalPriceCents  int64           `json:"total_price_cents"`
	ConfirmedAt      time.Time       `json:"confirmed_at"`
	Replayed         bool            `json:"replayed,omitempty"`
}
