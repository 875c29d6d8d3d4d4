// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"seatcore/internal/catalog"
	"seatcore/internal/checkout"
	"seatcore/internal/clock"
	"seatcore/internal/holds"
	"seatcore/internal/inventory"
	"seatcore/internal/pricing"
	"seatcore/internal/shared/config"
	"seatcore/internal/shared/database"
	"seatcore/internal/stream"
	"seatcore/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Router wires every feature package against shared infrastructure.
type Router struct {
	config   *config.Config
	db       *database.DB
	producer stream.Producer
	clk      clock.Clock
}

func NewRouter(cfg *config.Config, db *database.DB, producer stream.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
		clk:      clock.NewSystem(),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())

	pg := r.db.PostgreSQL
	cacheService := cache.NewService(r.db.Redis)

	// Inventory: the CAS core every other package mutates through
	seatRepo := inventory.NewRepository(pg)
	seatService := inventory.NewService(seatRepo, cacheService, r.clk)
	inventory.SetupInventoryRoutes(api, inventory.NewController(seatService))

	// Pricing: tier base, dynamic rules, strategy dispatch
	velocity := pricing.NewRedisVelocityCounter(r.db.Redis, r.config.Pricing.VelocityWindow)
	strategies := []pricing.Strategy{
		pricing.NewThresholdStrategy(&soldCounterAdapter{repo: seatRepo}),
		pricing.NewTimeBasedStrategy(),
		pricing.NewVelocityStrategy(velocity, r.config.Pricing.VelocityWindow),
	}
	if r.config.Pricing.CustomAdapterURL != "" {
		adapter := pricing.NewHTTPCustomAdapter(
			r.config.Pricing.CustomAdapterURL,
			r.config.Pricing.CustomCallTimeout,
			r.config.Pricing.CustomAdapterTTL,
			cacheService,
		)
		strategies = append(strategies, pricing.NewCustomStrategy(adapter))
	}
	pricingRepo := pricing.NewRepository(pg)
	pricingService := pricing.NewService(pricingRepo, cacheService, r.config.Pricing.RuleCacheTTL, strategies...)
	pricing.SetupPricingRoutes(api, pricing.NewController(pricingService, seatService, r.clk))

	// Holds: batch claim, renew, release
	holdsRepo := holds.NewRepository(pg, seatRepo)
	holdsService := holds.NewService(holdsRepo, seatRepo, pricingService, r.producer, cacheService, r.clk, r.config.Holds)
	holds.SetupHoldRoutes(api, holds.NewController(holdsService))

	// Checkout: held -> sold with idempotency
	checkoutRepo := checkout.NewRepository(pg, seatRepo)
	checkoutService := checkout.NewService(checkoutRepo, holdsRepo, seatRepo, velocity, r.producer, cacheService, r.clk)
	checkout.SetupCheckoutRoutes(api, checkout.NewController(checkoutService))

	// Catalog: layout authoring, publish, materialization
	catalogRepo := catalog.NewRepository(pg)
	catalogService := catalog.NewService(catalogRepo, seatService, cacheService, r.clk)
	catalog.SetupCatalogRoutes(api, catalog.NewController(catalogService))
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "seatcore",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "seatcore",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// soldCounterAdapter feeds threshold pricing from the inventory repository.
type soldCounterAdapter struct {
	repo inventory.Repository
}

func (a *soldCounterAdapter) CountSold(ctx context.Context, eventSeatingID uuid.UUID, sectionName, rowLabel, seatUID string) (int64, error) {
	return a.repo.CountSold(ctx, eventSeatingID, inventory.ScopeFilter{
		SectionName: sectionName,
		RowLabel:    rowLabel,
		SeatUID:     seatUID,
	})
}
