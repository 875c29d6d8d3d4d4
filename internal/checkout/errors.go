package checkout

import "fmt"

// RejectedError is the terminal outcome of a confirm attempt that lost a
// race or arrived too late. ConflictingSeats names exactly which seats
// failed so the payment caller can surface substitutes.
type RejectedError struct {
	Reason           string
	ConflictingSeats []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("purchase rejected: %s (seats %v)", e.Reason, e.ConflictingSeats)
}
