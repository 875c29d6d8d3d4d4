package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SeatingLayout struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `json:"description,omitempty"`
	Status      LayoutStatus `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Sections []LayoutSection `gorm:"foreignKey:LayoutID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

func (SeatingLayout) TableName() string {
	return "seating_layouts"
}

type LayoutSection struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LayoutID  uuid.UUID `gorm:"type:uuid;not null;index" json:"layout_id"`
	Name      string    `gorm:"not null" json:"name"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`

	Rows []LayoutRow `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"rows,omitempty"`
}

func (LayoutSection) TableName() string {
	return "layout_sections"
}

type LayoutRow struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;index" json:"section_id"`
	Label     string    `gorm:"not null" json:"label"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`

	Seats []LayoutSeat `gorm:"foreignKey:RowID;constraint:OnDelete:CASCADE" json:"seats,omitempty"`
}

func (LayoutRow) TableName() string {
	return "layout_rows"
}

// LayoutSeat is one chair in the template. SeatUID must be unique within
// its row here; publish additionally enforces uniqueness across the whole
// layout, since inventory keys seats by (event_seating_id, seat_uid).
type LayoutSeat struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RowID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_row_seat_uid" json:"row_id"`
	SeatUID     string         `gorm:"not null;uniqueIndex:idx_row_seat_uid" json:"seat_uid"`
	SeatLabel   string         `gorm:"not null" json:"seat_label"`
	BaseStatus  BaseSeatStatus `gorm:"type:varchar(20);not null;default:'NORMAL'" json:"base_status"`
	PriceTierID *uuid.UUID     `gorm:"type:uuid" json:"price_tier_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (LayoutSeat) TableName() string {
	return "layout_seats"
}

// EventSeatingLayout binds one event to one published layout. Its ID is
// the event_seating_id the rest of the system keys on, and JSONGeometry
// is the frozen snapshot taken at publish time.
type EventSeatingLayout struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"event_id"`
	LayoutID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"layout_id"`
	JSONGeometry datatypes.JSON `gorm:"type:jsonb;not null" json:"json_geometry"`
	PublishedAt  time.Time      `gorm:"not null" json:"published_at"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (EventSeatingLayout) TableName() string {
	return "event_seating_layouts"
}

// GeometrySnapshot is the serialized form stored in JSONGeometry and
// served to seat-map renderers. Immutable once written, so it caches for
// hours without invalidation.
type GeometrySnapshot struct {
	LayoutID   uuid.UUID         `json:"layout_id"`
	LayoutName string            `json:"layout_name"`
	Sections   []SectionGeometry `json:"sections"`
	SeatCount  int               `json:"seat_count"`
}

type SectionGeometry struct {
	Name string        `json:"name"`
	Rows []RowGeometry `json:"rows"`
}

type RowGeometry struct {
	Label string         `json:"label"`
	Seats []SeatGeometry `json:"seats"`
}

type SeatGeometry struct {
	SeatUID     string     `json:"seat_uid"`
	SeatLabel   string     `json:"seat_label"`
	Impossible  bool       `json:"impossible,omitempty"`
	PriceTierID *uuid.UUID `json:"price_tier_id,omitempty"`
}
