package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Materialization
	CreateSeats(ctx context.Context, seats []EventSeat) error
	HasSeats(ctx context.Context, eventSeatingID uuid.UUID) (bool, error)

	// Reads
	GetSeat(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*EventSeat, error)
	GetSeatsByUIDs(ctx context.Context, eventSeatingID uuid.UUID, seatUIDs []string) ([]EventSeat, error)
	ListSeats(ctx context.Context, eventSeatingID uuid.UUID, q ListSeatsQuery) ([]EventSeat, error)
	ListSeatUIDsByLocation(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel string, seatLabels []string) ([]string, error)
	CountSold(ctx context.Context, eventSeatingID uuid.UUID, scope ScopeFilter) (int64, error)

	// The single mutation entry point
	ApplyTransition(ctx context.Context, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []Status, to Status, at time.Time) (*EventSeat, error)
	ApplyTransitionTx(tx *gorm.DB, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []Status, to Status, at time.Time) (*EventSeat, error)
}

// ListSeatsQuery drives keyset pagination over a seating's seats. Cursor is
// the last seat_uid of the previous page; iteration restarts from any cursor.
type ListSeatsQuery struct {
	Status      Status
	SectionName string
	Cursor      string
	Limit       int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// MATERIALIZATION

func (r *repository) CreateSeats(ctx context.Context, seats []EventSeat) error {
	// ON CONFLICT DO NOTHING keeps materialization idempotent per
	// (event_seating_id, seat_uid) when a publish is retried.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_seating_id"}, {Name: "seat_uid"}},
			DoNothing: true,
		}).
		CreateInBatches(&seats, 500).Error
}

func (r *repository) HasSeats(ctx context.Context, eventSeatingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&EventSeat{}).
		Where("event_seating_id = ?", eventSeatingID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// READS

func (r *repository) GetSeat(ctx context.Context, eventSeatingID uuid.UUID, seatUID string) (*EventSeat, error) {
	var seat EventSeat
	err := r.db.WithContext(ctx).
		Where("event_seating_id = ? AND seat_uid = ?", eventSeatingID, seatUID).
		First(&seat).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) GetSeatsByUIDs(ctx context.Context, eventSeatingID uuid.UUID, seatUIDs []string) ([]EventSeat, error) {
	var seats []EventSeat
	err := r.db.WithContext(ctx).
		Where("event_seating_id = ? AND seat_uid IN ?", eventSeatingID, seatUIDs).
		Order("seat_uid ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) ListSeats(ctx context.Context, eventSeatingID uuid.UUID, q ListSeatsQuery) ([]EventSeat, error) {
	query := r.db.WithContext(ctx).
		Where("event_seating_id = ?", eventSeatingID)

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.SectionName != "" {
		query = query.Where("section_name = ?", q.SectionName)
	}
	if q.Cursor != "" {
		query = query.Where("seat_uid > ?", q.Cursor)
	}

	var seats []EventSeat
	err := query.Order("seat_uid ASC").Limit(q.Limit).Find(&seats).Error
	return seats, err
}

func (r *repository) ListSeatUIDsByLocation(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel string, seatLabels []string) ([]string, error) {
	query := r.db.WithContext(ctx).Model(&EventSeat{}).
		Where("event_seating_id = ? AND section_name = ?", eventSeatingID, sectionName)
	if rowLabel != "" {
		query = query.Where("row_label = ?", rowLabel)
	}
	if len(seatLabels) > 0 {
		query = query.Where("seat_label IN ?", seatLabels)
	}

	var seatUIDs []string
	err := query.Order("seat_uid ASC").Pluck("seat_uid", &seatUIDs).Error
	return seatUIDs, err
}

func (r *repository) CountSold(ctx context.Context, eventSeatingID uuid.UUID, scope ScopeFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&EventSeat{}).
		Where("event_seating_id = ? AND status = ?", eventSeatingID, StatusSold)
	if scope.SectionName != "" {
		query = query.Where("section_name = ?", scope.SectionName)
	}
	if scope.RowLabel != "" {
		query = query.Where("row_label = ?", scope.RowLabel)
	}
	if scope.SeatUID != "" {
		query = query.Where("seat_uid = ?", scope.SeatUID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// TRANSITIONS

func (r *repository) ApplyTransition(ctx context.Context, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []Status, to Status, at time.Time) (*EventSeat, error) {
	return r.ApplyTransitionTx(r.db.WithContext(ctx), eventSeatingID, seatUID, expectedVersion, from, to, at)
}

// ApplyTransitionTx runs the conditional update on the given gorm handle so
// callers can compose it with their own transaction (hold-row write + status
// flip must be one atomic storage operation).
func (r *repository) ApplyTransitionTx(tx *gorm.DB, eventSeatingID uuid.UUID, seatUID string, expectedVersion int64, from []Status, to Status, at time.Time) (*EventSeat, error) {
	res := tx.Model(&EventSeat{}).
		Where("event_seating_id = ? AND seat_uid = ? AND version = ? AND status IN ?",
			eventSeatingID, seatUID, expectedVersion, statusStrings(from)).
		Updates(map[string]interface{}{
			"status":         to,
			"version":        gorm.Expr("version + 1"),
			"last_change_at": at,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Lost the race or the seat does not exist. Re-read once to tell
		// the caller what it is up against.
		var current EventSeat
		err := tx.Where("event_seating_id = ? AND seat_uid = ?", eventSeatingID, seatUID).
			First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{
			SeatUID:        seatUID,
			CurrentStatus:  current.Status,
			CurrentVersion: current.Version,
		}
	}

	var updated EventSeat
	err := tx.Where("event_seating_id = ? AND seat_uid = ?", eventSeatingID, seatUID).
		First(&updated).Error
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
