package inventory

import (
	"seatcore/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller) {

	// PUBLIC SEAT READS (map rendering)

	seating := rg.Group("/seating")
	{
		seating.GET("/:eventSeatingId/seats", controller.ListSeats)          // GET /api/v1/seating/:eventSeatingId/seats
		seating.GET("/:eventSeatingId/seats/:seatUid", controller.GetSeat)   // GET /api/v1/seating/:eventSeatingId/seats/:seatUid
	}

	// ADMIN STATUS OPERATIONS

	adminSeating := rg.Group("/admin/seating")
	adminSeating.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminSeating.PUT("/:eventSeatingId/seats/:seatUid/status", controller.SetSeatStatus) // PUT /api/v1/admin/seating/:eventSeatingId/seats/:seatUid/status
		adminSeating.POST("/:eventSeatingId/seats/block", controller.BlockSeats)             // POST /api/v1/admin/seating/:eventSeatingId/seats/block
		adminSeating.POST("/:eventSeatingId/seats/unblock", controller.UnblockSeats)         // POST /api/v1/admin/seating/:eventSeatingId/seats/unblock
	}
}
