package checkout

// ConfirmPurchaseRequest finalizes held seats into sold ones. The
// idempotency token may arrive in the body or in the Idempotency-Key
// header; the controller folds the header in before validation.
type ConfirmPurchaseRequest struct {
	SeatUIDs         []string `json:"seat_uids" binding:"required,min=1"`
	SessionUID       string   `json:"session_uid" binding:"required,min=1,max=100"`
	IdempotencyToken string   `json:"idempotency_token" binding:"omitempty,min=1,max=200"`
}
