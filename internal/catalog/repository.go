package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Layouts
	CreateLayout(ctx context.Context, layout *SeatingLayout) error
	GetLayout(ctx context.Context, id uuid.UUID) (*SeatingLayout, error)
	GetLayoutTree(ctx context.Context, id uuid.UUID) (*SeatingLayout, error)
	ListLayouts(ctx context.Context, tenantID uuid.UUID) ([]SeatingLayout, error)
	UpdateLayout(ctx context.Context, layout *SeatingLayout) error
	DeleteLayout(ctx context.Context, id uuid.UUID) error
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error

	// Geometry parts
	CreateSection(ctx context.Context, section *LayoutSection) error
	GetSection(ctx context.Context, id uuid.UUID) (*LayoutSection, error)
	CreateRow(ctx context.Context, row *LayoutRow) error
	GetRow(ctx context.Context, id uuid.UUID) (*LayoutRow, error)
	CreateSeats(ctx context.Context, seats []LayoutSeat) error
	LayoutIDForSection(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error)
	LayoutIDForRow(ctx context.Context, rowID uuid.UUID) (uuid.UUID, error)

	// Event bindings
	CreateEventSeatingLayout(ctx context.Context, binding *EventSeatingLayout) error
	GetEventSeatingLayout(ctx context.Context, id uuid.UUID) (*EventSeatingLayout, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// LAYOUTS

func (r *repository) CreateLayout(ctx context.Context, layout *SeatingLayout) error {
	return r.db.WithContext(ctx).Create(layout).Error
}

func (r *repository) GetLayout(ctx context.Context, id uuid.UUID) (*SeatingLayout, error) {
	var layout SeatingLayout
	if err := r.db.WithContext(ctx).First(&layout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &layout, nil
}

// GetLayoutTree loads the full geometry in one pass, ordered by position
// so the snapshot and the seat map render the same way every time.
func (r *repository) GetLayoutTree(ctx context.Context, id uuid.UUID) (*SeatingLayout, error) {
	var layout SeatingLayout
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, name ASC")
		}).
		Preload("Sections.Rows", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, label ASC")
		}).
		Preload("Sections.Rows.Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_uid ASC")
		}).
		First(&layout, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &layout, nil
}

func (r *repository) ListLayouts(ctx context.Context, tenantID uuid.UUID) ([]SeatingLayout, error) {
	var layouts []SeatingLayout
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&layouts).Error
	return layouts, err
}

func (r *repository) UpdateLayout(ctx context.Context, layout *SeatingLayout) error {
	return r.db.WithContext(ctx).Save(layout).Error
}

func (r *repository) DeleteLayout(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&SeatingLayout{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&SeatingLayout{}).
		Where("id = ? AND status = ?", id, LayoutDraft).
		Updates(map[string]interface{}{"status": LayoutPublished, "published_at": at}).Error
}

// GEOMETRY PARTS

func (r *repository) CreateSection(ctx context.Context, section *LayoutSection) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *repository) GetSection(ctx context.Context, id uuid.UUID) (*LayoutSection, error) {
	var section LayoutSection
	if err := r.db.WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *repository) CreateRow(ctx context.Context, row *LayoutRow) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) GetRow(ctx context.Context, id uuid.UUID) (*LayoutRow, error) {
	var row LayoutRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateSeats(ctx context.Context, seats []LayoutSeat) error {
	return r.db.WithContext(ctx).CreateInBatches(seats, 500).Error
}

func (r *repository) LayoutIDForSection(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	section, err := r.GetSection(ctx, sectionID)
	if err != nil {
		return uuid.Nil, err
	}
	return section.LayoutID, nil
}

func (r *repository) LayoutIDForRow(ctx context.Context, rowID uuid.UUID) (uuid.UUID, error) {
	row, err := r.GetRow(ctx, rowID)
	if err != nil {
		return uuid.Nil, err
	}
	return r.LayoutIDForSection(ctx, row.SectionID)
}

// EVENT BINDINGS

func (r *repository) CreateEventSeatingLayout(ctx context.Context, binding *EventSeatingLayout) error {
	return r.db.WithContext(ctx).Create(binding).Error
}

func (r *repository) GetEventSeatingLayout(ctx context.Context, id uuid.UUID) (*EventSeatingLayout, error) {
	var binding EventSeatingLayout
	if err := r.db.WithContext(ctx).First(&binding, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

// IsRecordNotFound reports whether err is gorm's missing-row sentinel
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
