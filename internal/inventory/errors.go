package inventory

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the seat state machine and everything built on
// top of it (holds, checkout, reaper). Conflicts are expected and frequent
// under load, so they carry enough state for the caller to re-read and
// decide without another round trip.
var (
	ErrNotFound   = errors.New("seat not found")
	ErrExpired    = errors.New("hold has expired")
	ErrForbidden  = errors.New("session does not own this hold")
	ErrValidation = errors.New("invalid request")
)

// ConflictError means another actor won the race on a seat. The caller must
// re-read and retry with fresh state or fail the user action cleanly, never
// blindly retry with a stale version.
type ConflictError struct {
	SeatUID        string
	CurrentStatus  Status
	CurrentVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seat %s: conflict, current status %s version %d",
		e.SeatUID, e.CurrentStatus, e.CurrentVersion)
}

// IsConflict reports whether err is a seat-level conflict and returns it.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
