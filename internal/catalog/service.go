package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"seatcore/internal/clock"
	"seatcore/internal/inventory"
	"seatcore/internal/shared/constants"
	"seatcore/pkg/cache"
	"seatcore/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Layout CRUD (draft only for writes)
	CreateLayout(ctx context.Context, req CreateLayoutRequest) (*SeatingLayout, error)
	GetLayout(ctx context.Context, id string) (*SeatingLayout, error)
	ListLayouts(ctx context.Context, tenantID string) ([]SeatingLayout, error)
	UpdateLayout(ctx context.Context, id string, req UpdateLayoutRequest) (*SeatingLayout, error)
	DeleteLayout(ctx context.Context, id string) error

	// Geometry building
	AddSection(ctx context.Context, layoutID string, req CreateSectionRequest) (*LayoutSection, error)
	AddRow(ctx context.Context, sectionID string, req CreateRowRequest) (*LayoutRow, error)
	AddSeats(ctx context.Context, rowID string, req AddSeatsRequest) (int, error)

	// Publish freezes the layout on first use, snapshots the geometry,
	// binds it to the event and materializes inventory seats.
	Publish(ctx context.Context, layoutID string, req PublishLayoutRequest) (*PublishResult, error)

	// GetGeometry serves the frozen snapshot for seat-map rendering.
	GetGeometry(ctx context.Context, eventSeatingID string) (*GeometrySnapshot, error)
}

type service struct {
	repo         Repository
	seats        inventory.Service
	cacheService cache.Service
	clk          clock.Clock
}

func NewService(repo Repository, seats inventory.Service, cacheService cache.Service, clk clock.Clock) Service {
	return &service{
		repo:         repo,
		seats:        seats,
		cacheService: cacheService,
		clk:          clk,
	}
}

// LAYOUT CRUD

func (s *service) CreateLayout(ctx context.Context, req CreateLayoutRequest) (*SeatingLayout, error) {
	tenantUUID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tenant ID", inventory.ErrValidation)
	}

	layout := &SeatingLayout{
		TenantID:    tenantUUID,
		Name:        req.Name,
		Description: req.Description,
		Status:      LayoutDraft,
	}
	if err := s.repo.CreateLayout(ctx, layout); err != nil {
		return nil, fmt.Errorf("failed to create layout: %w", err)
	}
	return layout, nil
}

func (s *service) GetLayout(ctx context.Context, id string) (*SeatingLayout, error) {
	layoutUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid layout ID", inventory.ErrValidation)
	}

	cacheKey := constants.CACHE_KEY_LAYOUT_DETAIL + layoutUUID.String()
	var cached SeatingLayout
	if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	layout, err := s.repo.GetLayoutTree(ctx, layoutUUID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	// Drafts keep changing while they are authored; only frozen layouts
	// are cached.
	if layout.Status == LayoutPublished {
		if err := s.cacheService.Set(ctx, cacheKey, layout, constants.TTL_LAYOUT_DETAIL); err != nil {
			logger.GetDefault().Debug("failed to cache layout detail", "layout_id", layoutUUID.String(), "error", err)
		}
	}
	return layout, nil
}

func (s *service) ListLayouts(ctx context.Context, tenantID string) ([]SeatingLayout, error) {
	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tenant ID", inventory.ErrValidation)
	}
	return s.repo.ListLayouts(ctx, tenantUUID)
}

func (s *service) UpdateLayout(ctx context.Context, id string, req UpdateLayoutRequest) (*SeatingLayout, error) {
	layout, err := s.draftLayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		layout.Name = req.Name
	}
	if req.Description != "" {
		layout.Description = req.Description
	}
	if err := s.repo.UpdateLayout(ctx, layout); err != nil {
		return nil, fmt.Errorf("failed to update layout: %w", err)
	}
	return layout, nil
}

func (s *service) DeleteLayout(ctx context.Context, id string) error {
	layout, err := s.draftLayout(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLayout(ctx, layout.ID); err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}

// GEOMETRY BUILDING

func (s *service) AddSection(ctx context.Context, layoutID string, req CreateSectionRequest) (*LayoutSection, error) {
	layout, err := s.draftLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	section := &LayoutSection{
		LayoutID: layout.ID,
		Name:     req.Name,
		Position: req.Position,
	}
	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return section, nil
}

func (s *service) AddRow(ctx context.Context, sectionID string, req CreateRowRequest) (*LayoutRow, error) {
	sectionUUID, err := uuid.Parse(sectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid section ID", inventory.ErrValidation)
	}
	layoutID, err := s.repo.LayoutIDForSection(ctx, sectionUUID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if _, err := s.draftLayout(ctx, layoutID.String()); err != nil {
		return nil, err
	}

	row := &LayoutRow{
		SectionID: sectionUUID,
		Label:     req.Label,
		Position:  req.Position,
	}
	if err := s.repo.CreateRow(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to create row: %w", err)
	}
	return row, nil
}

func (s *service) AddSeats(ctx context.Context, rowID string, req AddSeatsRequest) (int, error) {
	rowUUID, err := uuid.Parse(rowID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid row ID", inventory.ErrValidation)
	}
	layoutID, err := s.repo.LayoutIDForRow(ctx, rowUUID)
	if err != nil {
		return 0, mapNotFound(err)
	}
	if _, err := s.draftLayout(ctx, layoutID.String()); err != nil {
		return 0, err
	}

	seats := make([]LayoutSeat, 0, len(req.Seats))
	seen := make(map[string]bool, len(req.Seats))
	for _, spec := range req.Seats {
		if seen[spec.SeatUID] {
			return 0, fmt.Errorf("%w: duplicate seat_uid %s in request", inventory.ErrValidation, spec.SeatUID)
		}
		seen[spec.SeatUID] = true

		baseStatus := BaseSeatNormal
		if spec.Impossible {
			baseStatus = BaseSeatImpossible
		}
		seats = append(seats, LayoutSeat{
			RowID:       rowUUID,
			SeatUID:     spec.SeatUID,
			SeatLabel:   spec.SeatLabel,
			BaseStatus:  baseStatus,
			PriceTierID: spec.PriceTierID,
		})
	}
	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return 0, fmt.Errorf("failed to create seats: %w", err)
	}
	return len(seats), nil
}

// PUBLISH

func (s *service) Publish(ctx context.Context, layoutID string, req PublishLayoutRequest) (*PublishResult, error) {
	layoutUUID, err := uuid.Parse(layoutID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid layout ID", inventory.ErrValidation)
	}
	eventUUID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event ID", inventory.ErrValidation)
	}

	layout, err := s.repo.GetLayoutTree(ctx, layoutUUID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	snapshot, specs, err := buildSnapshot(layout)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	if layout.Status == LayoutDraft {
		if err := s.repo.MarkPublished(ctx, layout.ID, now); err != nil {
			return nil, fmt.Errorf("failed to publish layout: %w", err)
		}
	}

	geometry, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize geometry: %w", err)
	}
	binding := &EventSeatingLayout{
		EventID:      eventUUID,
		LayoutID:     layout.ID,
		JSONGeometry: geometry,
		PublishedAt:  now,
	}
	if err := s.repo.CreateEventSeatingLayout(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to bind layout to event: %w", err)
	}

	// Materialization is idempotent per (event_seating_id, seat_uid), so
	// a retry after a partial failure fills in only the missing seats.
	materialized, err := s.seats.Materialize(ctx, binding.ID.String(), specs, req.SoldSeatUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize seats: %w", err)
	}

	logger.GetDefault().InfoWithContext(ctx, "layout published", map[string]interface{}{
		"layout_id":        layout.ID.String(),
		"event_seating_id": binding.ID.String(),
		"seat_count":       snapshot.SeatCount,
		"materialized":     materialized,
	})

	return &PublishResult{
		EventSeatingID: binding.ID.String(),
		LayoutID:       layout.ID.String(),
		EventID:        eventUUID.String(),
		SeatCount:      snapshot.SeatCount,
		Materialized:   materialized,
		PublishedAt:    now,
	}, nil
}

// GEOMETRY READS

func (s *service) GetGeometry(ctx context.Context, eventSeatingID string) (*GeometrySnapshot, error) {
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event seating ID", inventory.ErrValidation)
	}

	var snapshot GeometrySnapshot
	err = s.cacheService.GetOrSet(ctx, constants.BuildGeometryKey(eventSeatingID), constants.TTL_GEOMETRY_SNAPSHOT,
		func() (interface{}, error) {
			binding, err := s.repo.GetEventSeatingLayout(ctx, seatingUUID)
			if err != nil {
				return nil, err
			}
			var fetched GeometrySnapshot
			if err := json.Unmarshal(binding.JSONGeometry, &fetched); err != nil {
				return nil, fmt.Errorf("failed to decode geometry: %w", err)
			}
			return &fetched, nil
		}, &snapshot)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &snapshot, nil
}

// HELPERS

// buildSnapshot flattens the layout tree into the frozen geometry and the
// inventory seat specs, rejecting any seat_uid that appears twice anywhere
// in the layout.
func buildSnapshot(layout *SeatingLayout) (*GeometrySnapshot, []inventory.SeatSpec, error) {
	snapshot := &GeometrySnapshot{
		LayoutID:   layout.ID,
		LayoutName: layout.Name,
		Sections:   make([]SectionGeometry, 0, len(layout.Sections)),
	}
	var specs []inventory.SeatSpec
	seen := make(map[string]bool)

	for _, section := range layout.Sections {
		sectionGeometry := SectionGeometry{Name: section.Name, Rows: make([]RowGeometry, 0, len(section.Rows))}
		for _, row := range section.Rows {
			rowGeometry := RowGeometry{Label: row.Label, Seats: make([]SeatGeometry, 0, len(row.Seats))}
			for _, seat := range row.Seats {
				if seen[seat.SeatUID] {
					return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateSeatUID, seat.SeatUID)
				}
				seen[seat.SeatUID] = true

				impossible := seat.BaseStatus == BaseSeatImpossible
				rowGeometry.Seats = append(rowGeometry.Seats, SeatGeometry{
					SeatUID:     seat.SeatUID,
					SeatLabel:   seat.SeatLabel,
					Impossible:  impossible,
					PriceTierID: seat.PriceTierID,
				})
				specs = append(specs, inventory.SeatSpec{
					SeatUID:     seat.SeatUID,
					SectionName: section.Name,
					RowLabel:    row.Label,
					SeatLabel:   seat.SeatLabel,
					Disabled:    impossible,
					PriceTierID: seat.PriceTierID,
				})
			}
			sectionGeometry.Rows = append(sectionGeometry.Rows, rowGeometry)
		}
		snapshot.Sections = append(snapshot.Sections, sectionGeometry)
	}
	snapshot.SeatCount = len(specs)

	if snapshot.SeatCount == 0 {
		return nil, nil, fmt.Errorf("%w: layout has no seats", inventory.ErrValidation)
	}
	return snapshot, specs, nil
}

func (s *service) draftLayout(ctx context.Context, id string) (*SeatingLayout, error) {
	layoutUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid layout ID", inventory.ErrValidation)
	}
	layout, err := s.repo.GetLayout(ctx, layoutUUID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if layout.Status != LayoutDraft {
		return nil, ErrLayoutFrozen
	}
	return layout, nil
}

func mapNotFound(err error) error {
	if IsRecordNotFound(err) {
		return inventory.ErrNotFound
	}
	return err
}
