package holds

import (
	"fmt"

	"seatcore/internal/inventory"
)

// FailedSeat reports one seat that could not be held or released, with the
// state it raced against when known.
type FailedSeat struct {
	SeatUID        string           `json:"seat_uid"`
	Reason         string           `json:"reason"`
	CurrentStatus  inventory.Status `json:"current_status,omitempty"`
	CurrentVersion int64            `json:"current_version,omitempty"`
}

// PartialConflictError is returned when an all-or-nothing batch fails.
// Nothing was persisted; Failed lists exactly which seats lost, so a client
// can offer substitutes without discarding the rest of a valid cart.
type PartialConflictError struct {
	Failed []FailedSeat
}

func (e *PartialConflictError) Error() string {
	return fmt.Sprintf("hold batch failed on %d seat(s)", len(e.Failed))
}
