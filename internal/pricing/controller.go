package pricing

import (
	"errors"
	"net/http"

	"seatcore/internal/clock"
	"seatcore/internal/inventory"
	"seatcore/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	seats   inventory.Service
	clk     clock.Clock
}

func NewController(service Service, seats inventory.Service, clk clock.Clock) *Controller {
	return &Controller{service: service, seats: seats, clk: clk}
}

// PUBLIC

func (c *Controller) GetSeatPrice(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")
	seatUID := ctx.Param("seatUid")

	seat, err := c.seats.GetSeat(ctx.Request.Context(), eventSeatingID, seatUID)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Seat not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get seat", nil, err.Error())
		return
	}

	at := c.clk.Now()
	priceCents, err := c.service.Resolve(ctx.Request.Context(), SeatPricingInput{
		EventSeatingID:     seat.EventSeatingID,
		SeatUID:            seat.SeatUID,
		SectionName:        seat.SectionName,
		RowLabel:           seat.RowLabel,
		PriceTierID:        seat.PriceTierID,
		PriceCentsOverride: seat.PriceCentsOverride,
	}, at)
	if err != nil {
		respondPricingError(ctx, "Failed to resolve price", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Price resolved successfully", SeatPriceResponse{
		EventSeatingID: eventSeatingID,
		SeatUID:        seatUID,
		PriceCents:     priceCents,
		ResolvedAt:     at,
	}, nil)
}

// ADMIN TIERS

func (c *Controller) CreateTier(ctx *gin.Context) {
	var req CreateTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	tier, err := c.service.CreateTier(ctx.Request.Context(), req)
	if err != nil {
		respondPricingError(ctx, "Failed to create tier", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Tier created successfully", tier, nil)
}

func (c *Controller) GetTier(ctx *gin.Context) {
	tier, err := c.service.GetTier(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondPricingError(ctx, "Failed to get tier", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Tier retrieved successfully", tier, nil)
}

func (c *Controller) ListTiers(ctx *gin.Context) {
	tenantID := ctx.Query("tenant_id")
	if tenantID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "tenant_id is required", nil, "missing tenant_id query parameter")
		return
	}

	tiers, err := c.service.ListTiers(ctx.Request.Context(), tenantID)
	if err != nil {
		respondPricingError(ctx, "Failed to list tiers", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Tiers retrieved successfully", tiers, nil)
}

func (c *Controller) UpdateTier(ctx *gin.Context) {
	var req UpdateTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	tier, err := c.service.UpdateTier(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondPricingError(ctx, "Failed to update tier", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Tier updated successfully", tier, nil)
}

func (c *Controller) DeleteTier(ctx *gin.Context) {
	if err := c.service.DeleteTier(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondPricingError(ctx, "Failed to delete tier", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Tier deleted successfully", nil, nil)
}

// ADMIN RULES

func (c *Controller) CreateRule(ctx *gin.Context) {
	var req CreateRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	rule, err := c.service.CreateRule(ctx.Request.Context(), req)
	if err != nil {
		respondPricingError(ctx, "Failed to create rule", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Rule created successfully", rule, nil)
}

func (c *Controller) ListRules(ctx *gin.Context) {
	eventSeatingID := ctx.Query("event_seating_id")
	if eventSeatingID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "event_seating_id is required", nil, "missing event_seating_id query parameter")
		return
	}

	rules, err := c.service.ListRules(ctx.Request.Context(), eventSeatingID)
	if err != nil {
		respondPricingError(ctx, "Failed to list rules", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Rules retrieved successfully", rules, nil)
}

func (c *Controller) UpdateRule(ctx *gin.Context) {
	var req UpdateRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	rule, err := c.service.UpdateRule(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondPricingError(ctx, "Failed to update rule", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Rule updated successfully", rule, nil)
}

func (c *Controller) DeleteRule(ctx *gin.Context) {
	if err := c.service.DeleteRule(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondPricingError(ctx, "Failed to delete rule", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Rule deleted successfully", nil, nil)
}

func respondPricingError(ctx *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrTierNotFound), errors.Is(err, ErrRuleNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, message, nil, err.Error())
	case errors.Is(err, ErrBadParams), errors.Is(err, ErrNoPrice):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, message, nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}
