package inventory

// SeatPageResponse is one keyset page of seats for map rendering.
// NextCursor is empty on the last page.
type SeatPageResponse struct {
	Seats      []EventSeat `json:"seats"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// SeatFailure reports one seat that failed inside a batch operation, so a
// client can offer substitutes without discarding the rest of the cart.
type SeatFailure struct {
	SeatUID string `json:"seat_uid"`
	Reason  string `json:"reason"`
}

// BatchStatusResult is the outcome of an admin batch status change
type BatchStatusResult struct {
	Updated []string      `json:"updated"`
	Failed  []SeatFailure `json:"failed,omitempty"`
}
