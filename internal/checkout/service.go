package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"seatcore/internal/clock"
	"seatcore/internal/holds"
	"seatcore/internal/inventory"
	"seatcore/internal/pricing"
	"seatcore/internal/shared/constants"
	"seatcore/internal/stream"
	"seatcore/pkg/cache"
	"seatcore/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	ConfirmPurchase(ctx context.Context, eventSeatingID string, req ConfirmPurchaseRequest) (*ConfirmedResponse, error)
}

type service struct {
	repo         Repository
	holdsRepo    holds.Repository
	seats        inventory.Repository
	velocity     pricing.VelocityCounter
	producer     stream.Producer
	cacheService cache.Service
	clk          clock.Clock
}

func NewService(repo Repository, holdsRepo holds.Repository, seats inventory.Repository, velocity pricing.VelocityCounter, producer stream.Producer, cacheService cache.Service, clk clock.Clock) Service {
	return &service{
		repo:         repo,
		holdsRepo:    holdsRepo,
		seats:        seats,
		velocity:     velocity,
		producer:     producer,
		cacheService: cacheService,
		clk:          clk,
	}
}

func (s *service) ConfirmPurchase(ctx context.Context, eventSeatingID string, req ConfirmPurchaseRequest) (*ConfirmedResponse, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", inventory.ErrValidation)
	}
	if req.IdempotencyToken == "" {
		return nil, fmt.Errorf("%w: idempotency token is required", inventory.ErrValidation)
	}

	seen := make(map[string]bool, len(req.SeatUIDs))
	for _, uid := range req.SeatUIDs {
		if seen[uid] {
			return nil, fmt.Errorf("%w: duplicate seat_uid %s", inventory.ErrValidation, uid)
		}
		seen[uid] = true
	}

	// Replay fast path: a token that already confirmed returns its stored
	// result and mutates nothing.
	if resp, ok := s.lookupReplay(ctx, req.IdempotencyToken); ok {
		return resp, nil
	}

	now := s.clk.Now()

	seatUIDs := append([]string(nil), req.SeatUIDs...)
	sort.Strings(seatUIDs)

	batch, err := s.loadOwnedHolds(ctx, seatingUUID, req.SessionUID, seatUIDs, now)
	if err != nil {
		return nil, err
	}

	seats, err := s.seats.GetSeatsByUIDs(ctx, seatingUUID, seatUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	versions := make(map[string]int64, len(seats))
	seatByUID := make(map[string]*inventory.EventSeat, len(seats))
	for i := range seats {
		versions[seats[i].SeatUID] = seats[i].Version
		seatByUID[seats[i].SeatUID] = &seats[i]
	}

	resp := &ConfirmedResponse{
		EventSeatingID:   eventSeatingID,
		SessionUID:       req.SessionUID,
		IdempotencyToken: req.IdempotencyToken,
		Seats:            make([]ConfirmedSeat, 0, len(batch)),
		ConfirmedAt:      now,
	}
	for i := range batch {
		resp.Seats = append(resp.Seats, ConfirmedSeat{SeatUID: batch[i].SeatUID, PriceCents: batch[i].PriceCents})
		resp.TotalPriceCents += batch[i].PriceCents
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize confirmation: %w", err)
	}
	confirmation := &PurchaseConfirmation{
		IdempotencyToken: req.IdempotencyToken,
		EventSeatingID:   seatingUUID,
		SessionUID:       req.SessionUID,
		Payload:          payload,
		CreatedAt:        now,
	}

	if err := s.repo.ConfirmBatch(ctx, confirmation, batch, versions, now); err != nil {
		// A concurrent confirm with the same token commits first and makes
		// our insert collide on the unique token. Treat that as a replay.
		if replay, ok := s.lookupReplay(ctx, req.IdempotencyToken); ok {
			return replay, nil
		}
		if conflict, conflicted := inventory.IsConflict(err); conflicted {
			return nil, &RejectedError{
				Reason:           "seat state changed before confirmation",
				ConflictingSeats: []string{conflict.SeatUID},
			}
		}
		if errors.Is(err, inventory.ErrExpired) {
			return nil, &RejectedError{Reason: "hold expired before confirmation", ConflictingSeats: seatUIDs}
		}
		return nil, fmt.Errorf("failed to confirm purchase: %w", err)
	}

	// Post-commit side effects: observability and pricing signals only.
	// The sale is durable regardless of what happens below.
	for i := range batch {
		hold := &batch[i]
		s.recordSale(ctx, seatByUID[hold.SeatUID], now)
		s.dropMirror(ctx, eventSeatingID, hold.SeatUID)
		s.publishSold(ctx, hold, versions[hold.SeatUID]+1, now)
	}
	logger.GetDefault().LogPurchaseConfirmed(ctx, eventSeatingID, req.SessionUID, req.IdempotencyToken, len(batch), resp.TotalPriceCents)

	return resp, nil
}

// loadOwnedHolds resolves the session's live holds on the requested seats
// and rejects the whole batch if any seat lacks one. A hold owned by a
// different session surfaces as forbidden rather than rejected so the
// caller can distinguish races from bugs.
func (s *service) loadOwnedHolds(ctx context.Context, eventSeatingID uuid.UUID, sessionUID string, seatUIDs []string, now time.Time) ([]holds.SeatHold, error) {
	owned, err := s.holdsRepo.GetSessionHoldsForSeats(ctx, eventSeatingID, sessionUID, seatUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load holds: %w", err)
	}
	byUID := make(map[string]*holds.SeatHold, len(owned))
	for i := range owned {
		byUID[owned[i].SeatUID] = &owned[i]
	}

	var missing, expired []string
	for _, uid := range seatUIDs {
		hold, ok := byUID[uid]
		if !ok {
			other, err := s.holdsRepo.GetHold(ctx, eventSeatingID, uid)
			if err == nil && other.SessionUID != sessionUID {
				return nil, fmt.Errorf("%w: seat %s is held by another session", inventory.ErrForbidden, uid)
			}
			missing = append(missing, uid)
			continue
		}
		if !hold.IsLive(now) {
			expired = append(expired, uid)
		}
	}
	if len(missing) > 0 {
		return nil, &RejectedError{Reason: "no live hold on seat", ConflictingSeats: missing}
	}
	if len(expired) > 0 {
		return nil, &RejectedError{Reason: "hold expired before confirmation", ConflictingSeats: expired}
	}

	batch := make([]holds.SeatHold, 0, len(seatUIDs))
	for _, uid := range seatUIDs {
		batch = append(batch, *byUID[uid])
	}
	return batch, nil
}

func (s *service) lookupReplay(ctx context.Context, token string) (*ConfirmedResponse, bool) {
	confirmation, err := s.repo.GetConfirmationByToken(ctx, token)
	if err != nil {
		return nil, false
	}
	var resp ConfirmedResponse
	if err := json.Unmarshal(confirmation.Payload, &resp); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to decode stored confirmation", err, map[string]interface{}{
			"idempotency_token": token,
		})
		return nil, false
	}
	resp.Replayed = true
	return &resp, true
}

// recordSale bumps the velocity counters at every scope so velocity
// pricing rules see the sale no matter which scope they target.
func (s *service) recordSale(ctx context.Context, seat *inventory.EventSeat, now time.Time) {
	if seat == nil || s.velocity == nil {
		return
	}
	for _, scopeKey := range pricing.SaleScopeKeys(seat.EventSeatingID, seat.SectionName, seat.RowLabel, seat.SeatUID) {
		if err := s.velocity.Increment(ctx, scopeKey, now); err != nil {
			logger.GetDefault().Debug("failed to record sale velocity", "scope_key", scopeKey, "error", err)
		}
	}
}

func (s *service) dropMirror(ctx context.Context, eventSeatingID, seatUID string) {
	key := constants.BuildSeatHoldMirrorKey(eventSeatingID, seatUID)
	if err := s.cacheService.Delete(ctx, key); err != nil {
		logger.GetDefault().Debug("failed to drop hold mirror", "seat_uid", seatUID, "error", err)
	}
}

func (s *service) publishSold(ctx context.Context, hold *holds.SeatHold, newVersion int64, now time.Time) {
	err := s.producer.Publish(ctx, &stream.SeatEvent{
		Type:           stream.EventSeatSold,
		EventSeatingID: hold.EventSeatingID,
		SeatUID:        hold.SeatUID,
		SessionUID:     hold.SessionUID,
		PriceCents:     hold.PriceCents,
		NewVersion:     newVersion,
		OccurredAt:     now,
	})
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish seat event", err, map[string]interface{}{
			"type":     string(stream.EventSeatSold),
			"seat_uid": hold.SeatUID,
		})
	}
}
