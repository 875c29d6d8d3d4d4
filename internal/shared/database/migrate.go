package database

import (
	"seatcore/internal/catalog"
	"seatcore/internal/checkout"
	"seatcore/internal/holds"
	"seatcore/internal/inventory"
	"seatcore/internal/pricing"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&catalog.SeatingLayout{},
		&catalog.LayoutSection{},
		&catalog.LayoutRow{},
		&catalog.LayoutSeat{},
		&catalog.EventSeatingLayout{},
		&inventory.EventSeat{},
		&holds.SeatHold{},
		&pricing.PriceTier{},
		&pricing.DynamicPricingRule{},
		&checkout.PurchaseConfirmation{},
	); err != nil {
		return err
	}

	return MigrateConstraints(db)
}
