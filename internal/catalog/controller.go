package catalog

import (
	"errors"
	"net/http"

	"seatcore/internal/inventory"
	"seatcore/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) CreateLayout(ctx *gin.Context) {
	var req CreateLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	layout, err := c.service.CreateLayout(ctx.Request.Context(), req)
	if err != nil {
		respondCatalogError(ctx, "Failed to create layout", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Layout created successfully", layout, nil)
}

func (c *Controller) GetLayout(ctx *gin.Context) {
	layout, err := c.service.GetLayout(ctx.Request.Context(), ctx.Param("layoutId"))
	if err != nil {
		respondCatalogError(ctx, "Failed to get layout", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Layout retrieved successfully", layout, nil)
}

func (c *Controller) ListLayouts(ctx *gin.Context) {
	tenantID := ctx.Query("tenant_id")
	if tenantID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "tenant_id is required", nil, "missing tenant_id")
		return
	}

	layouts, err := c.service.ListLayouts(ctx.Request.Context(), tenantID)
	if err != nil {
		respondCatalogError(ctx, "Failed to list layouts", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Layouts retrieved successfully", layouts, nil)
}

func (c *Controller) UpdateLayout(ctx *gin.Context) {
	var req UpdateLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	layout, err := c.service.UpdateLayout(ctx.Request.Context(), ctx.Param("layoutId"), req)
	if err != nil {
		respondCatalogError(ctx, "Failed to update layout", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Layout updated successfully", layout, nil)
}

func (c *Controller) DeleteLayout(ctx *gin.Context) {
	if err := c.service.DeleteLayout(ctx.Request.Context(), ctx.Param("layoutId")); err != nil {
		respondCatalogError(ctx, "Failed to delete layout", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Layout deleted successfully", nil, nil)
}

func (c *Controller) AddSection(ctx *gin.Context) {
	var req CreateSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	section, err := c.service.AddSection(ctx.Request.Context(), ctx.Param("layoutId"), req)
	if err != nil {
		respondCatalogError(ctx, "Failed to add section", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Section added successfully", section, nil)
}

func (c *Controller) AddRow(ctx *gin.Context) {
	var req CreateRowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	row, err := c.service.AddRow(ctx.Request.Context(), ctx.Param("sectionId"), req)
	if err != nil {
		respondCatalogError(ctx, "Failed to add row", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Row added successfully", row, nil)
}

func (c *Controller) AddSeats(ctx *gin.Context) {
	var req AddSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	count, err := c.service.AddSeats(ctx.Request.Context(), ctx.Param("rowId"), req)
	if err != nil {
		respondCatalogError(ctx, "Failed to add seats", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats added successfully", gin.H{"added": count}, nil)
}

func (c *Controller) PublishLayout(ctx *gin.Context) {
	var req PublishLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.Publish(ctx.Request.Context(), ctx.Param("layoutId"), req)
	if err != nil {
		respondCatalogError(ctx, "Failed to publish layout", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Layout published successfully", result, nil)
}

func (c *Controller) GetGeometry(ctx *gin.Context) {
	snapshot, err := c.service.GetGeometry(ctx.Request.Context(), ctx.Param("eventSeatingId"))
	if err != nil {
		respondCatalogError(ctx, "Failed to get geometry", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Geometry retrieved successfully", snapshot, nil)
}

func respondCatalogError(ctx *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrLayoutFrozen):
		response.RespondJSON(ctx, "error", http.StatusConflict, message, nil, err.Error())
	case errors.Is(err, ErrDuplicateSeatUID):
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, message, nil, err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, message, nil, err.Error())
	case errors.Is(err, inventory.ErrValidation):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, message, nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}
