package holds

import (
	"github.com/gin-gonic/gin"
)

func SetupHoldRoutes(rg *gin.RouterGroup, controller *Controller) {

	// BUYER HOLD FLOW

	seating := rg.Group("/seating")
	{
		seating.POST("/:eventSeatingId/holds", controller.CreateHold)     // POST /api/v1/seating/:eventSeatingId/holds
		seating.PUT("/:eventSeatingId/holds/renew", controller.RenewHold) // PUT /api/v1/seating/:eventSeatingId/holds/renew
		seating.DELETE("/:eventSeatingId/holds", controller.ReleaseHold)  // DELETE /api/v1/seating/:eventSeatingId/holds
	}

	// SESSION CART VIEW

	sessions := rg.Group("/sessions")
	{
		sessions.GET("/:sessionUid/holds", controller.GetSessionHolds) // GET /api/v1/sessions/:sessionUid/holds
	}
}
