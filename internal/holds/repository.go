package holds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatcore/internal/inventory"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Batch hold creation: for each seat, hold-row insert and the
	// available -> held flip happen in one transaction, and the whole
	// batch rolls back if any seat fails.
	CreateHoldBatch(ctx context.Context, batch []SeatHold, seatVersions map[string]int64, at time.Time) error

	// Reads
	GetHold(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*SeatHold, error)
	GetSessionHolds(ctx context.Context, sessionUID string, liveAfter time.Time) ([]SeatHold, error)
	GetSessionHoldsForSeats(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string) ([]SeatHold, error)

	// Renew / release
	ExtendHolds(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string, expiresAt, now time.Time) (int64, error)
	ReleaseHold(ctx context.Context, hold *SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error)

	// Reaper support
	ListExpired(ctx context.Context, before time.Time, limit int) ([]SeatHold, error)
	ListLiveHoldsOnSoldSeats(ctx context.Context, now time.Time, limit int) ([]SeatHold, error)
	DeleteHoldByID(ctx context.Context, id uuid.UUID) error
	ReclaimExpiredHold(ctx context.Context, hold *SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error)
}

type repository struct {
	db    *gorm.DB
	seats inventory.Repository
}

func NewRepository(db *gorm.DB, seats inventory.Repository) Repository {
	return &repository{db: db, seats: seats}
}

// CREATE

func (r *repository) CreateHoldBatch(ctx context.Context, batch []SeatHold, seatVersions map[string]int64, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Seats arrive sorted ascending by seat_uid; processing them in
		// order keeps the per-seat lock order deterministic across
		// competing requests.
		for i := range batch {
			hold := &batch[i]
			if err := tx.Create(hold).Error; err != nil {
				return fmt.Errorf("failed to create hold row for seat %s: %w", hold.SeatUID, err)
			}
			_, err := r.seats.ApplyTransitionTx(tx, hold.EventSeatingID, hold.SeatUID,
				seatVersions[hold.SeatUID],
				[]inventory.Status{inventory.StatusAvailable},
				inventory.StatusHeld, at)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// READS

func (r *repository) GetHold(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*SeatHold, error) {
	var hold SeatHold
	err := r.db.WithContext(ctx).
		Where("event_seating_id = ? AND seat_uid = ?", eventSeatingID, seatUID).
		First(&hold).Error
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

func (r *repository) GetSessionHolds(ctx context.Context, sessionUID string, liveAfter time.Time) ([]SeatHold, error) {
	var holds []SeatHold
	err := r.db.WithContext(ctx).
		Where("session_uid = ? AND expires_at > ?", sessionUID, liveAfter).
		Order("event_seating_id ASC, seat_uid ASC").
		Find(&holds).Error
	return holds, err
}

func (r *repository) GetSessionHoldsForSeats(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string) ([]SeatHold, error) {
	var holds []SeatHold
	err := r.db.WithContext(ctx).
		Where("event_seating_id = ? AND session_uid = ? AND seat_uid IN ?", eventSeatingID, sessionUID, seatUIDs).
		Order("seat_uid ASC").
		Find(&holds).Error
	return holds, err
}

// RENEW / RELEASE

func (r *repository) ExtendHolds(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string, expiresAt, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&SeatHold{}).
		Where("event_seating_id = ? AND session_uid = ? AND seat_uid IN ? AND expires_at > ?",
			eventSeatingID, sessionUID, seatUIDs, now).
		Update("expires_at", expiresAt)
	return res.RowsAffected, res.Error
}

// ReleaseHold deletes the hold row and flips held -> available in one
// transaction. Ownership was checked by the service before calling.
func (r *repository) ReleaseHold(ctx context.Context, hold *SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	var updated *inventory.EventSeat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&SeatHold{}, "id = ?", hold.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete hold row: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Already reaped or released by a concurrent request.
			return gorm.ErrRecordNotFound
		}

		seat, err := r.seats.ApplyTransitionTx(tx, hold.EventSeatingID, hold.SeatUID,
			seatVersion,
			[]inventory.Status{inventory.StatusHeld},
			inventory.StatusAvailable, at)
		if err != nil {
			return err
		}
		updated = seat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// REAPER SUPPORT

func (r *repository) ListExpired(ctx context.Context, before time.Time, limit int) ([]SeatHold, error) {
	var holds []SeatHold
	err := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Order("expires_at ASC").
		Limit(limit).
		Find(&holds).Error
	return holds, err
}

// ListLiveHoldsOnSoldSeats surfaces the invariant breach the sweep must
// alert on: a sold seat should never still carry a live hold row.
func (r *repository) ListLiveHoldsOnSoldSeats(ctx context.Context, now time.Time, limit int) ([]SeatHold, error) {
	var holds []SeatHold
	err := r.db.WithContext(ctx).
		Joins("JOIN event_seats es ON es.event_seating_id = seat_holds.event_seating_id AND es.seat_uid = seat_holds.seat_uid").
		Where("es.status = ? AND seat_holds.expires_at > ?", inventory.StatusSold, now).
		Limit(limit).
		Find(&holds).Error
	return holds, err
}

func (r *repository) DeleteHoldByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&SeatHold{}, "id = ?", id).Error
}

// ReclaimExpiredHold is the reaper's happy path: delete the expired hold row
// and flip held -> available, both conditionally, in one transaction. Safe
// under concurrent sweepers because a second sweeper's delete affects zero
// rows and aborts.
func (r *repository) ReclaimExpiredHold(ctx context.Context, hold *SeatHold, seatVersion int64, at time.Time) (*inventory.EventSeat, error) {
	var updated *inventory.EventSeat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&SeatHold{}, "id = ? AND expires_at < ?", hold.ID, at)
		if res.Error != nil {
			return fmt.Errorf("failed to delete expired hold: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		seat, err := r.seats.ApplyTransitionTx(tx, hold.EventSeatingID, hold.SeatUID,
			seatVersion,
			[]inventory.Status{inventory.StatusHeld},
			inventory.StatusAvailable, at)
		if err != nil {
			return err
		}
		updated = seat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// IsRecordNotFound reports whether err is gorm's missing-row sentinel
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
