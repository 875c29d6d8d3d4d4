package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"seatcore/internal/catalog"
	"seatcore/internal/clock"
	"seatcore/internal/inventory"
	"seatcore/internal/pricing"
	"seatcore/internal/shared/config"
	"seatcore/internal/shared/database"
	"seatcore/pkg/cache"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting seatcore database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"purchase_confirmations",
		"seat_holds",
		"event_seats",
		"dynamic_pricing_rules",
		"price_tiers",
		"event_seating_layouts",
		"layout_seats",
		"layout_rows",
		"layout_sections",
		"seating_layouts",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds a demo tenant with tiers, a layout and pricing rules
func (s *Seeder) SeedAll() error {
	ctx := context.Background()
	tenantID := uuid.New()

	tierIDs, err := s.SeedPriceTiers(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to seed price tiers: %w", err)
	}

	eventSeatingID, err := s.SeedLayout(ctx, tenantID, tierIDs)
	if err != nil {
		return fmt.Errorf("failed to seed layout: %w", err)
	}

	if err := s.SeedPricingRules(ctx, eventSeatingID); err != nil {
		return fmt.Errorf("failed to seed pricing rules: %w", err)
	}

	// Clear Redis so cached tiers and rules do not shadow the fresh seed
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: failed to clear Redis cache: %v", err)
	}

	fmt.Printf("\n  📌 Demo tenant:        %s\n", tenantID)
	fmt.Printf("  📌 Event seating ID:  %s\n", eventSeatingID)
	return nil
}

// SeedPriceTiers creates the base price buckets
func (s *Seeder) SeedPriceTiers(ctx context.Context, tenantID uuid.UUID) (map[string]uuid.UUID, error) {
	fmt.Println("  💰 Seeding price tiers...")

	repo := pricing.NewRepository(s.db.PostgreSQL)
	tierIDs := make(map[string]uuid.UUID)

	tiersData := []struct {
		name       string
		priceCents int64
	}{
		{"Premium", 150000},
		{"Standard", 80000},
		{"Economy", 45000},
	}

	for _, tierData := range tiersData {
		tier := &pricing.PriceTier{
			TenantID:       tenantID,
			Name:           tierData.name,
			BasePriceCents: tierData.priceCents,
		}
		if err := repo.CreateTier(ctx, tier); err != nil {
			return nil, fmt.Errorf("failed to create tier %s: %w", tierData.name, err)
		}
		tierIDs[tierData.name] = tier.ID
		fmt.Printf("    ✅ Created tier: %s (%d cents)\n", tier.Name, tier.BasePriceCents)
	}

	return tierIDs, nil
}

// SeedLayout builds a small theater, publishes it for a demo event and
// materializes the inventory
func (s *Seeder) SeedLayout(ctx context.Context, tenantID uuid.UUID, tierIDs map[string]uuid.UUID) (string, error) {
	fmt.Println("  🏟️ Seeding seating layout...")

	catalogRepo := catalog.NewRepository(s.db.PostgreSQL)
	seatRepo := inventory.NewRepository(s.db.PostgreSQL)
	clk := clock.NewSystem()
	cacheService := cache.NewService(s.db.Redis)
	seatService := inventory.NewService(seatRepo, cacheService, clk)
	catalogService := catalog.NewService(catalogRepo, seatService, cacheService, clk)

	layout, err := catalogService.CreateLayout(ctx, catalog.CreateLayoutRequest{
		TenantID:    tenantID.String(),
		Name:        "Small Theater",
		Description: "Intimate theater with premium and standard seating",
	})
	if err != nil {
		return "", err
	}
	fmt.Printf("    ✅ Created layout: %s\n", layout.Name)

	sectionsData := []struct {
		name     string
		rows     []string
		seats    int
		tierName string
	}{
		{"Premium", []string{"A"}, 13, "Premium"},
		{"Standard", []string{"B", "C"}, 13, "Standard"},
	}

	for position, sectionData := range sectionsData {
		section, err := catalogService.AddSection(ctx, layout.ID.String(), catalog.CreateSectionRequest{
			Name:     sectionData.name,
			Position: position,
		})
		if err != nil {
			return "", err
		}

		tierID := tierIDs[sectionData.tierName]
		for rowPosition, rowLabel := range sectionData.rows {
			row, err := catalogService.AddRow(ctx, section.ID.String(), catalog.CreateRowRequest{
				Label:    rowLabel,
				Position: rowPosition,
			})
			if err != nil {
				return "", err
			}

			seats := make([]catalog.SeatSpecRequest, 0, sectionData.seats)
			for i := 1; i <= sectionData.seats; i++ {
				seats = append(seats, catalog.SeatSpecRequest{
					SeatUID:   fmt.Sprintf("%s-%s-%d", sectionData.name, rowLabel, i),
					SeatLabel: fmt.Sprintf("%s%d", rowLabel, i),
					// C7 is a pillar in this hall
					Impossible:  rowLabel == "C" && i == 7,
					PriceTierID: &tierID,
				})
			}
			if _, err := catalogService.AddSeats(ctx, row.ID.String(), catalog.AddSeatsRequest{Seats: seats}); err != nil {
				return "", err
			}
		}
		fmt.Printf("    ✅ Created section: %s (%d rows)\n", sectionData.name, len(sectionData.rows))
	}

	result, err := catalogService.Publish(ctx, layout.ID.String(), catalog.PublishLayoutRequest{
		EventID: uuid.New().String(),
	})
	if err != nil {
		return "", err
	}
	fmt.Printf("    ✅ Published layout: %d seats materialized\n", result.Materialized)

	return result.EventSeatingID, nil
}

// SeedPricingRules creates one rule per strategy except custom, which
// needs an external adapter
func (s *Seeder) SeedPricingRules(ctx context.Context, eventSeatingID string) error {
	fmt.Println("  📈 Seeding pricing rules...")

	repo := pricing.NewRepository(s.db.PostgreSQL)
	seatingUUID, err := uuid.Parse(eventSeatingID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	rulesData := []struct {
		scope    pricing.Scope
		scopeRef string
		strategy pricing.StrategyTag
		params   interface{}
	}{
		{
			scope:    pricing.ScopeSection,
			scopeRef: "Premium",
			strategy: pricing.StrategyThreshold,
			params: pricing.ThresholdParams{Steps: []pricing.ThresholdStep{
				{MinSold: 5, PriceCents: 180000},
				{MinSold: 10, PriceCents: 220000},
			}},
		},
		{
			scope:    pricing.ScopeEvent,
			strategy: pricing.StrategyTimeBased,
			params: pricing.TimeBasedParams{Windows: []pricing.TimeWindow{
				{StartsAt: now, EndsAt: now.Add(48 * time.Hour), PriceCents: 70000},
			}},
		},
		{
			scope:    pricing.ScopeSection,
			scopeRef: "Standard",
			strategy: pricing.StrategyVelocity,
			params:   pricing.VelocityParams{RateThreshold: 10, PriceCents: 95000},
		},
	}

	for _, ruleData := range rulesData {
		params, err := json.Marshal(ruleData.params)
		if err != nil {
			return fmt.Errorf("failed to marshal rule params: %w", err)
		}

		rule := &pricing.DynamicPricingRule{
			EventSeatingID: seatingUUID,
			Scope:          ruleData.scope,
			ScopeRef:       ruleData.scopeRef,
			Strategy:       ruleData.strategy,
			Params:         params,
			Active:         true,
		}
		if err := repo.CreateRule(ctx, rule); err != nil {
			return fmt.Errorf("failed to create %s rule: %w", ruleData.strategy, err)
		}
		fmt.Printf("    ✅ Created rule: %s on %s %s\n", ruleData.strategy, ruleData.scope, ruleData.scopeRef)
	}

	return nil
}
