package checkout

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

func (c *Controller) ConfirmPurchase(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")

	var req ConfirmPurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}
	if req.IdempotencyToken == "" {
		req.IdempotencyToken = ctx.GetHeader("Idempotency-Key")
	}

	result, err := c.service.ConfirmPurchase(ctx.Request.Context(), eventSeatingID, req)
	if err != nil {
		respondCheckoutError(ctx, "Failed to confirm purchase", err)
		return
	}

	if result.Replayed {
		response.RespondJSON(ctx, "success", http.StatusOK, "Purchase already confirmed", result, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Purchase confirmed", result, nil)
}

func respondCheckoutError(ctx *gin.Context, message string, err error) {
	var rejected *RejectedError
	switch {
	case errors.As(err, &rejected):
		response.RespondJSON(ctx, "error", http.StatusConflict, message, gin.H{
			"outcome":           "rejected",
			"reason":            rejected.Reason,
			"conflicting_seats": rejected.ConflictingSeats,
		}, rejected.Error())
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
