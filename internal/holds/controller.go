package holds

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

func (c *Controller) CreateHold(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")

	var req CreateHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.CreateHold(ctx.Request.Context(), eventSeatingID, req)
	if err != nil {
		respondHoldError(ctx, "Failed to create hold", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats held successfully", result, nil)
}

func (c *Controller) RenewHold(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")

	var req RenewHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.RenewHold(ctx.Request.Context(), eventSeatingID, req)
	if err != nil {
		respondHoldError(ctx, "Failed to renew hold", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold renewed successfully", result, nil)
}

func (c *Controller) ReleaseHold(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")

	var req ReleaseHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.ReleaseHold(ctx.Request.Context(), eventSeatingID, req)
	if err != nil {
		respondHoldError(ctx, "Failed to release hold", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold released successfully", result, nil)
}

func (c *Controller) GetSessionHolds(ctx *gin.Context) {
	sessionUID := ctx.Param("sessionUid")
	if sessionUID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Session UID is required", nil, "missing session UID")
		return
	}

	holds, err := c.service.GetSessionHolds(ctx.Request.Context(), sessionUID)
	if err != nil {
		respondHoldError(ctx, "Failed to get session holds", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session holds retrieved successfully", holds, nil)
}

func respondHoldError(ctx *gin.Context, message string, err error) {
	var partial *PartialConflictError
	switch {
	case errors.As(err, &partial):
		response.RespondJSON(ctx, "error", http.StatusConflict, message, gin.H{
			"failed_seats": partial.Failed,
		}, partial.Error())
	case errors.Is(err, inventory.ErrNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, message, nil, err.Error())
	case errors.Is(err, inventory.ErrExpired):
		response.RespondJSON(ctx, "error", http.StatusGone, message, nil, err.Error())
	case errors.Is(err, inventory.ErrForbidden):
		response.RespondJSON(ctx, "error", http.StatusForbidden, message, nil, err.Error())
	case errors.Is(err, inventory.ErrValidation):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, message, nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}
