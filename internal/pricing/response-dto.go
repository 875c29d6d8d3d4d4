package pricing

import "time"

// SeatPriceResponse is the public price quote for one seat. The quote is
// advisory: the binding price is pinned to the hold at creation time.
type SeatPriceResponse struct {
	EventSeatingID string    `json:"event_seating_id"`
	SeatUID        string    `json:"seat_uid"`
	PriceCents     int64     `json:"price_cents"`
	ResolvedAt     time.Time `json:"resolved_at"`
}
