package reaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatcore/internal/clock"
	"seatcore/internal/holds"
	"seatcore/internal/inventory"
	"seatcore/internal/stream"
	"seatcore/pkg/logger"
)

// SweepResult summarizes one reaper pass.
type SweepResult struct {
	Reclaimed int
	Deleted   int
	Alerted   int
}

type Service interface {
	// Sweep reclaims up to batchLimit expired holds. Safe to run from
	// multiple processes at once: every reclaim is a conditional delete
	// plus a versioned seat update, so a competing sweeper simply loses
	// the race and moves on.
	Sweep(ctx context.Context, batchLimit int) (*SweepResult, error)
}

type service struct {
	holdsRepo holds.Repository
	seats     inventory.Repository
	producer  stream.Producer
	clk       clock.Clock
}

func NewService(holdsRepo holds.Repository, seats inventory.Repository, producer stream.Producer, clk clock.Clock) Service {
	return &service{
		holdsRepo: holdsRepo,
		seats:     seats,
		producer:  producer,
		clk:       clk,
	}
}

func (s *service) Sweep(ctx context.Context, batchLimit int) (*SweepResult, error) {
	now := s.clk.Now()
	result := &SweepResult{}

	expired, err := s.holdsRepo.ListExpired(ctx, now, batchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired holds: %w", err)
	}

	for i := range expired {
		hold := &expired[i]
		if err := s.reapOne(ctx, hold, now, result); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to reap expired hold", err, map[string]interface{}{
				"seat_uid":   hold.SeatUID,
				"hold_id":    hold.ID.String(),
				"expires_at": hold.ExpiresAt,
			})
		}
	}

	alerted, err := s.alertLiveHoldsOnSoldSeats(ctx, now, batchLimit)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to scan for live holds on sold seats", err, nil)
	}
	result.Alerted = alerted

	logger.GetDefault().LogReaperSweep(ctx, result.Reclaimed, result.Deleted, s.clk.Now().Sub(now))
	return result, nil
}

func (s *service) reapOne(ctx context.Context, hold *holds.SeatHold, now time.Time, result *SweepResult) error {
	seat, err := s.seats.GetSeat(ctx, hold.EventSeatingID, hold.SeatUID)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) || holds.IsRecordNotFound(err) {
			// Orphan hold row, nothing to flip back.
			if err := s.holdsRepo.DeleteHoldByID(ctx, hold.ID); err != nil {
				return err
			}
			result.Deleted++
			return nil
		}
		return err
	}

	updated, err := s.holdsRepo.ReclaimExpiredHold(ctx, hold, seat.Version, now)
	if err != nil {
		if conflict, ok := inventory.IsConflict(err); ok {
			// The seat moved on without us. Sold means checkout consumed
			// the seat after this hold lapsed; blocked or disabled means an
			// admin intervened. Either way only the stale hold row remains.
			switch conflict.CurrentStatus {
			case inventory.StatusSold, inventory.StatusBlocked, inventory.StatusDisabled:
				if err := s.holdsRepo.DeleteHoldByID(ctx, hold.ID); err != nil {
					return err
				}
				result.Deleted++
				return nil
			}
			return err
		}
		if holds.IsRecordNotFound(err) {
			// Another sweeper or a release beat us to the delete.
			return nil
		}
		return err
	}

	result.Reclaimed++
	s.publishExpired(ctx, hold, updated.Version, now)
	return nil
}

// alertLiveHoldsOnSoldSeats flags the invariant breach where a sold seat
// still carries an unexpired hold. The row is deliberately kept: deleting
// it would destroy the evidence an operator needs.
func (s *service) alertLiveHoldsOnSoldSeats(ctx context.Context, now time.Time, limit int) (int, error) {
	suspect, err := s.holdsRepo.ListLiveHoldsOnSoldSeats(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	for i := range suspect {
		hold := &suspect[i]
		logger.GetDefault().LogSoldSeatWithLiveHold(ctx, hold.EventSeatingID.String(), hold.SeatUID, hold.SessionUID, hold.ExpiresAt)
	}
	return len(suspect), nil
}

func (s *service) publishExpired(ctx context.Context, hold *holds.SeatHold, newVersion int64, now time.Time) {
	err := s.producer.Publish(ctx, &stream.SeatEvent{
		Type:           stream.EventSeatExpired,
		EventSeatingID: hold.EventSeatingID,
		SeatUID:        hold.SeatUID,
		SessionUID:     hold.SessionUID,
		PriceCents:     hold.PriceCents,
		NewVersion:     newVersion,
		OccurredAt:     now,
	})
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish seat event", err, map[string]interface{}{
			"type":     string(stream.EventSeatExpired),
			"seat_uid": hold.SeatUID,
		})
	}
}
