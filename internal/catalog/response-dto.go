package catalog

import "time"

// PublishResult reports one publish/materialization pass.
type PublishResult struct {
	EventSeatingID string    `json:"event_seating_id"`
	LayoutID       string    `json:"layout_id"`
	EventID        string    `json:"event_id"`
	SeatCount      int       `json:"seat_count"`
	Materialized   int       `json:"materialized"`
	PublishedAt    time.Time `json:"published_at"`
}
