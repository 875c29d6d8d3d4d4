package inventory

// SetSeatStatusRequest is the admin out-of-band status change payload
type SetSeatStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=AVAILABLE BLOCKED DISABLED"`
}

// BlockSeatsRequest targets seats either by explicit seat_uids or by
// location (section plus optional row/labels). Exactly one addressing mode
// must be used.
type BlockSeatsRequest struct {
	SeatUIDs    []string `json:"seat_uids" binding:"omitempty,max=200"`
	SectionName string   `json:"section_name" binding:"omitempty"`
	RowLabel    string   `json:"row_label" binding:"omitempty"`
	SeatLabels  []string `json:"seat_labels" binding:"omitempty,max=200"`
}
