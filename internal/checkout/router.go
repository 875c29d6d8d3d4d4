package checkout

import (
	"github.com/gin-gonic/gin"
)

func SetupCheckoutRoutes(rg *gin.RouterGroup, controller *Controller) {
	seating := rg.Group("/seating")
	{
		seating.POST("/:eventSeatingId/confirm", controller.ConfirmPurchase) // POST /api/v1/seating/:eventSeatingId/confirm
	}
}
