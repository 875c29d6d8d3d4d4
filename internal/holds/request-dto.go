package holds

// CreateHoldRequest claims a batch of seats for a session. TTLSeconds of 0
// uses the configured default.
type CreateHoldRequest struct {
	SeatUIDs   []string `json:"seat_uids" binding:"required,min=1"`
	SessionUID string   `json:"session_uid" binding:"required,min=1,max=100"`
	TTLSeconds int      `json:"ttl_seconds" binding:"omitempty,min=1"`
}

type RenewHoldRequest struct {
	SeatUIDs   []string `json:"seat_uids" binding:"required,min=1"`
	SessionUID string   `json:"session_uid" binding:"required,min=1,max=100"`
	TTLSeconds int      `json:"ttl_seconds" binding:"omitempty,min=1"`
}

type ReleaseHoldRequest struct {
	SeatUIDs   []string `json:"seat_uids" binding:"required,min=1"`
	SessionUID string   `json:"session_uid" binding:"required,min=1,max=100"`
}
