package catalog

import (
	"seatcore/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller) {

	// PUBLIC GEOMETRY READS

	seating := rg.Group("/seating")
	{
		seating.GET("/:eventSeatingId/geometry", controller.GetGeometry) // GET /api/v1/seating/:eventSeatingId/geometry
	}

	// ADMIN LAYOUT MANAGEMENT

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		layouts := admin.Group("/layouts")
		{
			layouts.POST("", controller.CreateLayout)
			layouts.GET("", controller.ListLayouts)
			layouts.GET("/:layoutId", controller.GetLayout)
			layouts.PUT("/:layoutId", controller.UpdateLayout)
			layouts.DELETE("/:layoutId", controller.DeleteLayout)
			layouts.POST("/:layoutId/sections", controller.AddSection)
			layouts.POST("/:layoutId/publish", controller.PublishLayout)
		}
		admin.POST("/sections/:sectionId/rows", controller.AddRow)
		admin.POST("/rows/:rowId/seats", controller.AddSeats)
	}
}
