package holds

import (
	"context"
	"fmt"
	"sort"
	"time"

	"seatcore/internal/clock"
	"seatcore/internal/inventory"
	"seatcore/internal/pricing"
	"seatcore/internal/shared/config"
	"seatcore/internal/shared/constants"
	"seatcore/internal/stream"
	"seatcore/pkg/cache"
	"seatcore/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateHold(ctx context.Context, eventSeatingID string, req CreateHoldRequest) (*HoldBatchResponse, error)
	RenewHold(ctx context.Context, eventSeatingID string, req RenewHoldRequest) (*RenewHoldResponse, error)
	ReleaseHold(ctx context.Context, eventSeatingID string, req ReleaseHoldRequest) (*ReleaseHoldResponse, error)
	GetSessionHolds(ctx context.Context, sessionUID string) ([]SeatHold, error)
}

type service struct {
	repo         Repository
	seats        inventory.Repository
	pricer       pricing.Service
	producer     stream.Producer
	cacheService cache.Service
	clk          clock.Clock
	cfg          config.HoldConfig
}

func NewService(repo Repository, seats inventory.Repository, pricer pricing.Service, producer stream.Producer, cacheService cache.Service, clk clock.Clock, cfg config.HoldConfig) Service {
	return &service{
		repo:         repo,
		seats:        seats,
		pricer:       pricer,
		producer:     producer,
		cacheService: cacheService,
		clk:          clk,
		cfg:          cfg,
	}
}

// CREATE

func (s *service) CreateHold(ctx context.Context, eventSeatingID string, req CreateHoldRequest) (*HoldBatchResponse, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", inventory.ErrValidation)
	}
	if len(req.SeatUIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats specified", inventory.ErrValidation)
	}
	if len(req.SeatUIDs) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: at most %d seats per hold", inventory.ErrValidation, s.cfg.MaxBatchSize)
	}

	seen := make(map[string]bool, len(req.SeatUIDs))
	for _, uid := range req.SeatUIDs {
		if seen[uid] {
			return nil, fmt.Errorf("%w: duplicate seat_uid %s", inventory.ErrValidation, uid)
		}
		seen[uid] = true
	}

	ttl := s.resolveTTL(req.TTLSeconds)
	now := s.clk.Now()
	expiresAt := now.Add(ttl)

	// Deterministic per-seat lock order across competing requests.
	seatUIDs := append([]string(nil), req.SeatUIDs...)
	sort.Strings(seatUIDs)

	seats, err := s.seats.GetSeatsByUIDs(ctx, seatingUUID, seatUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}

	byUID := make(map[string]*inventory.EventSeat, len(seats))
	for i := range seats {
		byUID[seats[i].SeatUID] = &seats[i]
	}

	// Pre-flight check: collect every seat that cannot be held so the
	// client learns the full failure set in one round trip.
	var failed []FailedSeat
	for _, uid := range seatUIDs {
		seat, ok := byUID[uid]
		if !ok {
			failed = append(failed, FailedSeat{SeatUID: uid, Reason: "seat not found"})
			continue
		}
		if seat.Status != inventory.StatusAvailable {
			failed = append(failed, FailedSeat{
				SeatUID:        uid,
				Reason:         "seat not available",
				CurrentStatus:  seat.Status,
				CurrentVersion: seat.Version,
			})
		}
	}
	if len(failed) > 0 {
		return nil, &PartialConflictError{Failed: failed}
	}

	// Pricing completes before any transition attempt; the conditional
	// update re-validates state, so no lock is held across these calls.
	batch := make([]SeatHold, 0, len(seatUIDs))
	versions := make(map[string]int64, len(seatUIDs))
	for _, uid := range seatUIDs {
		seat := byUID[uid]
		priceCents, err := s.pricer.Resolve(ctx, pricing.SeatPricingInput{
			EventSeatingID:     seat.EventSeatingID,
			SeatUID:            seat.SeatUID,
			SectionName:        seat.SectionName,
			RowLabel:           seat.RowLabel,
			PriceTierID:        seat.PriceTierID,
			PriceCentsOverride: seat.PriceCentsOverride,
		}, now)
		if err != nil {
			return nil, fmt.Errorf("failed to price seat %s: %w", uid, err)
		}

		versions[uid] = seat.Version
		batch = append(batch, SeatHold{
			EventSeatingID: seatingUUID,
			SeatUID:        uid,
			SessionUID:     req.SessionUID,
			PriceCents:     priceCents,
			ExpiresAt:      expiresAt,
		})
	}

	if err := s.repo.CreateHoldBatch(ctx, batch, versions, now); err != nil {
		if conflict, ok := inventory.IsConflict(err); ok {
			return nil, &PartialConflictError{Failed: []FailedSeat{{
				SeatUID:        conflict.SeatUID,
				Reason:         "seat not available",
				CurrentStatus:  conflict.CurrentStatus,
				CurrentVersion: conflict.CurrentVersion,
			}}}
		}
		return nil, fmt.Errorf("failed to create hold batch: %w", err)
	}

	s.mirrorHolds(ctx, batch, ttl)
	s.publishSeatEvents(ctx, stream.EventSeatHeld, batch, versions, 1, now)
	logger.GetDefault().LogHoldCreated(ctx, eventSeatingID, req.SessionUID, len(batch), expiresAt)

	return &HoldBatchResponse{
		EventSeatingID: eventSeatingID,
		SessionUID:     req.SessionUID,
		Holds:          batch,
		TotalCents:     totalCents(batch),
		ExpiresAt:      expiresAt,
		TTLSeconds:     int(ttl.Seconds()),
	}, nil
}

// RENEW

func (s *service) RenewHold(ctx context.Context, eventSeatingID string, req RenewHoldRequest) (*RenewHoldResponse, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", inventory.ErrValidation)
	}
	if len(req.SeatUIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats specified", inventory.ErrValidation)
	}

	ttl := s.resolveTTL(req.TTLSeconds)
	now := s.clk.Now()
	expiresAt := now.Add(ttl)

	// Pure expires_at extension for live holds owned by the session;
	// status is never touched, and replays are harmless.
	renewed, err := s.repo.ExtendHolds(ctx, seatingUUID, req.SessionUID, req.SeatUIDs, expiresAt, now)
	if err != nil {
		return nil, fmt.Errorf("failed to renew holds: %w", err)
	}
	if renewed == 0 {
		holds, err := s.repo.GetSessionHoldsForSeats(ctx, seatingUUID, req.SessionUID, req.SeatUIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect holds: %w", err)
		}
		if len(holds) > 0 {
			return nil, inventory.ErrExpired
		}
		return nil, inventory.ErrNotFound
	}

	holds, err := s.repo.GetSessionHoldsForSeats(ctx, seatingUUID, req.SessionUID, req.SeatUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to reload holds: %w", err)
	}
	s.mirrorHolds(ctx, holds, ttl)

	return &RenewHoldResponse{
		Renewed:    int(renewed),
		ExpiresAt:  expiresAt,
		TTLSeconds: int(ttl.Seconds()),
	}, nil
}

// RELEASE

func (s *service) ReleaseHold(ctx context.Context, eventSeatingID string, req ReleaseHoldRequest) (*ReleaseHoldResponse, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", inventory.ErrValidation)
	}
	if len(req.SeatUIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats specified", inventory.ErrValidation)
	}

	now := s.clk.Now()
	resp := &ReleaseHoldResponse{}

	// Ownership is verified for the whole batch before anything is
	// released, so a foreign hold rejects the request with no partial work.
	held := make([]*SeatHold, len(req.SeatUIDs))
	for i, uid := range req.SeatUIDs {
		hold, err := s.repo.GetHold(ctx, seatingUUID, uid)
		if err != nil {
			if IsRecordNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load hold: %w", err)
		}
		if hold.SessionUID != req.SessionUID {
			return nil, inventory.ErrForbidden
		}
		held[i] = hold
	}

	for i, uid := range req.SeatUIDs {
		hold := held[i]
		if hold == nil {
			resp.Failed = append(resp.Failed, FailedSeat{SeatUID: uid, Reason: "no hold on seat"})
			continue
		}

		seat, err := s.seats.GetSeat(ctx, seatingUUID, uid)
		if err != nil {
			return nil, fmt.Errorf("failed to load seat: %w", err)
		}

		updated, err := s.repo.ReleaseHold(ctx, hold, seat.Version, now)
		if err != nil {
			if conflict, ok := inventory.IsConflict(err); ok {
				resp.Failed = append(resp.Failed, FailedSeat{
					SeatUID:        uid,
					Reason:         "seat state changed",
					CurrentStatus:  conflict.CurrentStatus,
					CurrentVersion: conflict.CurrentVersion,
				})
				continue
			}
			if IsRecordNotFound(err) {
				resp.Failed = append(resp.Failed, FailedSeat{SeatUID: uid, Reason: "no hold on seat"})
				continue
			}
			return nil, fmt.Errorf("failed to release hold: %w", err)
		}

		resp.Released = append(resp.Released, uid)
		s.dropMirror(ctx, seatingUUID.String(), uid)
		s.publishOne(ctx, stream.EventSeatReleased, seatingUUID, uid, req.SessionUID, hold.PriceCents, updated.Version, now)
	}

	return resp, nil
}

// SESSION VIEW

func (s *service) GetSessionHolds(ctx context.Context, sessionUID string) ([]SeatHold, error) {
	if sessionUID == "" {
		return nil, fmt.Errorf("%w: session UID is required", inventory.ErrValidation)
	}
	return s.repo.GetSessionHolds(ctx, sessionUID, s.clk.Now())
}

// HELPERS

func (s *service) resolveTTL(ttlSeconds int) time.Duration {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	if ttl > s.cfg.MaxTTL {
		ttl = s.cfg.MaxTTL
	}
	return ttl
}

// mirrorHolds refreshes the Redis fast-path mirror. Postgres stays the
// source of truth, so mirror failures are logged and swallowed.
func (s *service) mirrorHolds(ctx context.Context, holds []SeatHold, ttl time.Duration) {
	for i := range holds {
		hold := &holds[i]
		key := constants.BuildSeatHoldMirrorKey(hold.EventSeatingID.String(), hold.SeatUID)
		if err := s.cacheService.Set(ctx, key, hold, ttl); err != nil {
			logger.GetDefault().Debug("failed to mirror hold", "seat_uid", hold.SeatUID, "error", err)
		}
	}
}

func (s *service) dropMirror(ctx context.Context, eventSeatingID, seatUID string) {
	key := constants.BuildSeatHoldMirrorKey(eventSeatingID, seatUID)
	if err := s.cacheService.Delete(ctx, key); err != nil {
		logger.GetDefault().Debug("failed to drop hold mirror", "seat_uid", seatUID, "error", err)
	}
}

func (s *service) publishSeatEvents(ctx context.Context, eventType stream.EventType, holds []SeatHold, versions map[string]int64, versionBump int64, now time.Time) {
	for i := range holds {
		hold := &holds[i]
		s.publishOne(ctx, eventType, hold.EventSeatingID, hold.SeatUID, hold.SessionUID,
			hold.PriceCents, versions[hold.SeatUID]+versionBump, now)
	}
}

func (s *service) publishOne(ctx context.Context, eventType stream.EventType, eventSeatingID uuid.UUID, seatUID, sessionUID string, priceCents, newVersion int64, now time.Time) {
	err := s.producer.Publish(ctx, &stream.SeatEvent{
		Type:           eventType,
		EventSeatingID: eventSeatingID,
		SeatUID:        seatUID,
		SessionUID:     sessionUID,
		PriceCents:     priceCents,
		NewVersion:     newVersion,
		OccurredAt:     now,
	})
	if err != nil {
		// Events are observability, never correctness.
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish seat event", err, map[string]interface{}{
			"type":     string(eventType),
			"seat_uid": seatUID,
		})
	}
}

func totalCents(holds []SeatHold) int64 {
	var total int64
	for i := range holds {
		total += holds[i].PriceCents
	}
	return total
}
