package inventory

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusHeld      Status = "HELD"
	StatusSold      Status = "SOLD"
	StatusBlocked   Status = "BLOCKED"
	StatusDisabled  Status = "DISABLED"
)

// IsValid checks if the seat status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusSold, StatusBlocked, StatusDisabled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsSellable checks if a seat in this status can enter the hold flow
func (s Status) IsSellable() bool {
	return s == StatusAvailable
}

// IsTerminal checks if normal buyer flow can never move the seat again.
// SOLD is reversible only by an out-of-band refund action.
func (s Status) IsTerminal() bool {
	return s == StatusSold || s == StatusDisabled
}

// AdminTransitionSources returns the statuses an admin status change may
// start from for a given target. AVAILABLE and BLOCKED are interchangeable,
// DISABLED is reachable from anywhere and releasable back to AVAILABLE or
// BLOCKED. SOLD and HELD are never admin targets; those belong to the
// confirm and hold flows.
func AdminTransitionSources(to Status) []Status {
	switch to {
	case StatusBlocked:
		return []Status{StatusAvailable, StatusDisabled}
	case StatusAvailable:
		return []Status{StatusBlocked, StatusDisabled}
	case StatusDisabled:
		return []Status{StatusAvailable, StatusHeld, StatusSold, StatusBlocked}
	}
	return nil
}
