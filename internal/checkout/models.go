package checkout

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PurchaseConfirmation is the at-most-once record for one confirm call.
// The unique idempotency token makes replays collide at the storage layer,
// and Payload preserves the exact Confirmed response so a retry gets the
// identical result without re-mutating already-sold seats.
type PurchaseConfirmation struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IdempotencyToken string         `gorm:"not null" json:"idempotency_token"`
	EventSeatingID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"event_seating_id"`
	SessionUID       string         `gorm:"not null" json:"session_uid"`
	Payload          datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName sets the table name for PurchaseConfirmation
func (PurchaseConfirmation) TableName() string {
	return "purchase_confirmations"
}
