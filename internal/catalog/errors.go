package catalog

import "errors"

var (
	// ErrLayoutFrozen is returned for any write against a published layout.
	ErrLayoutFrozen = errors.New("layout is published and immutable")
	// ErrDuplicateSeatUID is returned when publish finds the same seat_uid
	// in more than one row of the layout.
	ErrDuplicateSeatUID = errors.New("duplicate seat_uid in layout")
)
