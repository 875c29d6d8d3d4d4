package checkout

import (
	"context"
	"fmt"
	"time"

	"seatcore/internal/holds"
	"seatcore/internal/inventory"

	"gorm.io/gorm"
)

type Repository interface {
	GetConfirmationByToken(ctx context.Context, token string) (*PurchaseConfirmation, error)

	// ConfirmBatch performs the whole purchase in one transaction: per seat
	// it deletes the live hold row and flips held -> sold conditionally,
	// then inserts the confirmation record. Any failure rolls everything
	// back, including a duplicate idempotency token racing in.
	ConfirmBatch(ctx context.Context, confirmation *PurchaseConfirmation, batch []holds.SeatHold, seatVersions map[string]int64, at time.Time) error
}

type repository struct {
	db    *gorm.DB
	seats inventory.Repository
}

func NewRepository(db *gorm.DB, seats inventory.Repository) Repository {
	return &repository{db: db, seats: seats}
}

func (r *repository) GetConfirmationByToken(ctx context.Context, token string) (*PurchaseConfirmation, error) {
	var confirmation PurchaseConfirmation
	err := r.db.WithContext(ctx).
		Where("idempotency_token = ?", token).
		First(&confirmation).Error
	if err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (r *repository) ConfirmBatch(ctx context.Context, confirmation *PurchaseConfirmation, batch []holds.SeatHold, seatVersions map[string]int64, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range batch {
			hold := &batch[i]

			// The liveness check rides on the delete itself: an expired or
			// already-consumed hold affects zero rows and aborts the batch.
			res := tx.Delete(&holds.SeatHold{}, "id = ? AND expires_at > ?", hold.ID, at)
			if res.Error != nil {
				return fmt.Errorf("failed to consume hold for seat %s: %w", hold.SeatUID, res.Error)
			}
			if res.RowsAffected == 0 {
				return inventory.ErrExpired
			}

			_, err := r.seats.ApplyTransitionTx(tx, hold.EventSeatingID, hold.SeatUID,
				seatVersions[hold.SeatUID],
				[]inventory.Status{inventory.StatusHeld},
				inventory.StatusSold, at)
			if err != nil {
				return err
			}
		}

		if err := tx.Create(confirmation).Error; err != nil {
			return fmt.Errorf("failed to record confirmation: %w", err)
		}
		return nil
	})
}
