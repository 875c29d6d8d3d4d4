package pricing

import (
	"seatcore/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPricingRoutes(rg *gin.RouterGroup, controller *Controller) {

	// PUBLIC PRICE QUOTES

	seating := rg.Group("/seating")
	{
		seating.GET("/:eventSeatingId/seats/:seatUid/price", controller.GetSeatPrice) // GET /api/v1/seating/:eventSeatingId/seats/:seatUid/price
	}

	// ADMIN PRICING MANAGEMENT

	admin := rg.Group("/admin/pricing")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/tiers", controller.CreateTier)       // POST /api/v1/admin/pricing/tiers
		admin.GET("/tiers", controller.ListTiers)         // GET /api/v1/admin/pricing/tiers?tenant_id=xxx
		admin.GET("/tiers/:id", controller.GetTier)       // GET /api/v1/admin/pricing/tiers/:id
		admin.PUT("/tiers/:id", controller.UpdateTier)    // PUT /api/v1/admin/pricing/tiers/:id
		admin.DELETE("/tiers/:id", controller.DeleteTier) // DELETE /api/v1/admin/pricing/tiers/:id

		admin.POST("/rules", controller.CreateRule)       // POST /api/v1/admin/pricing/rules
		admin.GET("/rules", controller.ListRules)         // GET /api/v1/admin/pricing/rules?event_seating_id=xxx
		admin.PUT("/rules/:id", controller.UpdateRule)    // PUT /api/v1/admin/pricing/rules/:id
		admin.DELETE("/rules/:id", controller.DeleteRule) // DELETE /api/v1/admin/pricing/rules/:id
	}
}
