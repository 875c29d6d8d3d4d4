package stream

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType tags the seat lifecycle events consumed by analytics, velocity
// pricing, and cart-UI synchronization.
type EventType string

const (
	EventSeatHeld     EventType = "SeatHeld"
	EventSeatReleased EventType = "SeatReleased"
	EventSeatSold     EventType = "SeatSold"
	EventSeatExpired  EventType = "SeatExpired"
)

// SeatEvent is the wire payload for every seat transition. SessionUID is
// empty for admin and reaper transitions.
type SeatEvent struct {
	Type           EventType `json:"type"`
	EventSeatingID uuid.UUID `json:"event_seating_id"`
	SeatUID        string    `json:"seat_uid"`
	SessionUID     string    `json:"session_uid,omitempty"`
	PriceCents     int64     `json:"price_cents,omitempty"`
	NewVersion     int64     `json:"new_version"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ToJSON serializes the event for the Kafka message body
func (e *SeatEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one seating to the same partition so
// consumers see per-seating order.
func (e *SeatEvent) PartitionKey() string {
	return e.EventSeatingID.String()
}
