package inventory

import (
	"context"
	"errors"
	"fmt"

	"seatcore/internal/clock"
	"seatcore/internal/shared/constants"
	"seatcore/pkg/cache"
	"seatcore/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	// Reads
	GetSeat(ctx context.Context, eventSeatingID string, seatUID string) (*EventSeat, error)
	ListSeats(ctx context.Context, eventSeatingID string, q ListSeatsQuery) (*SeatPageResponse, error)

	// Materialization (called once per layout publish)
	Materialize(ctx context.Context, eventSeatingID string, specs []SeatSpec, soldSeatUIDs []string) (int, error)

	// Admin out-of-band status changes; bypass session ownership, still
	// versioned through the conditional update.
	SetSeatStatus(ctx context.Context, eventSeatingID, seatUID string, target Status) (*EventSeat, error)
	SetSeatsStatus(ctx context.Context, eventSeatingID string, seatUIDs []string, target Status) (*BatchStatusResult, error)
	SetSeatsStatusByLocation(ctx context.Context, eventSeatingID, sectionName, rowLabel string, seatLabels []string, target Status) (*BatchStatusResult, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	clk          clock.Clock
}

func NewService(repo Repository, cacheService cache.Service, clk clock.Clock) Service {
	return &service{repo: repo, cacheService: cacheService, clk: clk}
}

// READS

func (s *service) GetSeat(ctx context.Context, eventSeatingID string, seatUID string) (*EventSeat, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", ErrValidation)
	}

	seat, err := s.repo.GetSeat(ctx, seatingUUID, seatUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}
	return seat, nil
}

func (s *service) ListSeats(ctx context.Context, eventSeatingID string, q ListSeatsQuery) (*SeatPageResponse, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", ErrValidation)
	}
	if q.Status != "" && !q.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status filter %q", ErrValidation, q.Status)
	}
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 200
	}

	// Unfiltered map pages take the burst traffic; a micro TTL keeps them
	// honest while seats change underneath. Filtered queries are not in
	// the cache key and always hit the database.
	cacheable := q.Status == "" && q.SectionName == ""
	cacheKey := constants.BuildSeatMapKey(eventSeatingID, q.Cursor, q.Limit)
	if cacheable {
		var cached SeatPageResponse
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	seats, err := s.repo.ListSeats(ctx, seatingUUID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}

	page := &SeatPageResponse{Seats: seats}
	if len(seats) == q.Limit {
		// Cursor is the last seat_uid; iteration is restartable from it.
		page.NextCursor = seats[len(seats)-1].SeatUID
	}
	if cacheable {
		if err := s.cacheService.Set(ctx, cacheKey, page, constants.TTL_SEAT_MAP); err != nil {
			logger.GetDefault().Debug("failed to cache seat map page", "event_seating_id", eventSeatingID, "error", err)
		}
	}
	return page, nil
}

// MATERIALIZATION

func (s *service) Materialize(ctx context.Context, eventSeatingID string, specs []SeatSpec, soldSeatUIDs []string) (int, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid event seating ID", ErrValidation)
	}
	if len(specs) == 0 {
		return 0, fmt.Errorf("%w: empty geometry snapshot", ErrValidation)
	}

	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.SeatUID == "" {
			return 0, fmt.Errorf("%w: seat with empty seat_uid", ErrValidation)
		}
		if seen[spec.SeatUID] {
			return 0, fmt.Errorf("%w: duplicate seat_uid %s in snapshot", ErrValidation, spec.SeatUID)
		}
		seen[spec.SeatUID] = true
	}

	sold := make(map[string]bool, len(soldSeatUIDs))
	for _, uid := range soldSeatUIDs {
		sold[uid] = true
	}

	now := s.clk.Now()
	seats := make([]EventSeat, 0, len(specs))
	for _, spec := range specs {
		status := StatusAvailable
		switch {
		case spec.Disabled:
			status = StatusDisabled
		case sold[spec.SeatUID]:
			// Re-materialization after already-issued tickets keeps those
			// seats off the market.
			status = StatusSold
		}

		seats = append(seats, EventSeat{
			EventSeatingID: seatingUUID,
			SeatUID:        spec.SeatUID,
			SectionName:    spec.SectionName,
			RowLabel:       spec.RowLabel,
			SeatLabel:      spec.SeatLabel,
			Status:         status,
			PriceTierID:    spec.PriceTierID,
			Version:        1,
			LastChangeAt:   now,
		})
	}

	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return 0, fmt.Errorf("failed to materialize seats: %w", err)
	}

	logger.GetDefault().InfoWithContext(ctx, "event seats materialized", map[string]interface{}{
		"event_seating_id": eventSeatingID,
		"seat_count":       len(seats),
	})
	return len(seats), nil
}

// ADMIN STATUS CHANGES

func (s *service) SetSeatStatus(ctx context.Context, eventSeatingID, seatUID string, target Status) (*EventSeat, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", ErrValidation)
	}

	allowedFrom := AdminTransitionSources(target)
	if allowedFrom == nil {
		return nil, fmt.Errorf("%w: %s is not an admin-settable status", ErrValidation, target)
	}

	seat, err := s.repo.GetSeat(ctx, seatingUUID, seatUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}

	updated, err := s.repo.ApplyTransition(ctx, seatingUUID, seatUID, seat.Version, allowedFrom, target, s.clk.Now())
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogSeatTransition(ctx, eventSeatingID, seatUID, seat.Status.String(), target.String(), updated.Version)
	return updated, nil
}

func (s *service) SetSeatsStatus(ctx context.Context, eventSeatingID string, seatUIDs []string, target Status) (*BatchStatusResult, error) {
	if len(seatUIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats specified", ErrValidation)
	}
	seen := make(map[string]bool, len(seatUIDs))
	for _, uid := range seatUIDs {
		if seen[uid] {
			return nil, fmt.Errorf("%w: duplicate seat_uid %s", ErrValidation, uid)
		}
		seen[uid] = true
	}

	result := &BatchStatusResult{}
	for _, uid := range seatUIDs {
		if _, err := s.SetSeatStatus(ctx, eventSeatingID, uid, target); err != nil {
			result.Failed = append(result.Failed, SeatFailure{SeatUID: uid, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, uid)
	}
	return result, nil
}

func (s *service) SetSeatsStatusByLocation(ctx context.Context, eventSeatingID, sectionName, rowLabel string, seatLabels []string, target Status) (*BatchStatusResult, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", ErrValidation)
	}
	if sectionName == "" {
		return nil, fmt.Errorf("%w: section name is required", ErrValidation)
	}

	seatUIDs, err := s.repo.ListSeatUIDsByLocation(ctx, seatingUUID, sectionName, rowLabel, seatLabels)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve seats by location: %w", err)
	}
	if len(seatUIDs) == 0 {
		return nil, ErrNotFound
	}
	return s.SetSeatsStatus(ctx, eventSeatingID, seatUIDs, target)
}
