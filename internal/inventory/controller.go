package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"seatcore/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// READS

func (c *Controller) GetSeat(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")
	seatUID := ctx.Param("seatUid")

	seat, err := c.service.GetSeat(ctx.Request.Context(), eventSeatingID, seatUID)
	if err != nil {
		respondSeatError(ctx, "Failed to get seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat retrieved successfully", seat, nil)
}

func (c *Controller) ListSeats(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")

	q := ListSeatsQuery{
		Status:      Status(ctx.Query("status")),
		SectionName: ctx.Query("section"),
		Cursor:      ctx.Query("cursor"),
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid limit", nil, err.Error())
			return
		}
		q.Limit = limit
	}

	page, err := c.service.ListSeats(ctx.Request.Context(), eventSeatingID, q)
	if err != nil {
		respondSeatError(ctx, "Failed to list seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully", page, nil)
}

// ADMIN STATUS CHANGES

func (c *Controller) SetSeatStatus(ctx *gin.Context) {
	eventSeatingID := ctx.Param("eventSeatingId")
	seatUID := ctx.Param("seatUid")

	var req SetSeatStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	seat, err := c.service.SetSeatStatus(ctx.Request.Context(), eventSeatingID, seatUID, Status(req.Status))
	if err != nil {
		respondSeatError(ctx, "Failed to set seat status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat status updated successfully", seat, nil)
}

func (c *Controller) BlockSeats(ctx *gin.Context) {
	c.batchStatusChange(ctx, StatusBlocked, "Seats blocked")
}

func (c *Controller) UnblockSeats(ctx *gin.Context) {
	c.batchStatusChange(ctx, StatusAvailable, "Seats unblocked")
}

func (c *Controller) batchStatusChange(ctx *gin.Context, target Status, message string) {
	eventSeatingID := ctx.Param("eventSeatingId")

	var req BlockSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	byUIDs := len(req.SeatUIDs) > 0
	byLocation := req.SectionName != ""
	if byUIDs == byLocation {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil,
			"specify either seat_uids or section_name, not both")
		return
	}

	var result *BatchStatusResult
	var err error
	if byUIDs {
		result, err = c.service.SetSeatsStatus(ctx.Request.Context(), eventSeatingID, req.SeatUIDs, target)
	} else {
		result, err = c.service.SetSeatsStatusByLocation(ctx.Request.Context(), eventSeatingID, req.SectionName, req.RowLabel, req.SeatLabels, target)
	}
	if err != nil {
		respondSeatError(ctx, "Failed to update seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, message, result, nil)
}

// respondSeatError maps the error taxonomy onto HTTP codes. Conflicts carry
// the current status and version the loser raced against so clients can
// re-render without another fetch.
func respondSeatError(ctx *gin.Context, message string, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		response.RespondJSON(ctx, "error", http.StatusConflict, message, gin.H{
			"seat_uid":        conflict.SeatUID,
			"current_status":  conflict.CurrentStatus,
			"current_version": conflict.CurrentVersion,
		}, conflict.Error())
	case errors.Is(err, ErrNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, message, nil, err.Error())
	case errors.Is(err, ErrExpired):
		response.RespondJSON(ctx, "error", http.StatusGone, message, nil, err.Error())
	case errors.Is(err, ErrForbidden):
		response.RespondJSON(ctx, "error", http.StatusForbidden, message, nil, err.Error())
	case errors.Is(err, ErrValidation):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, message, nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}
