package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kerbside/service-booking/internal/application"
	"github.com/kerbside/service-booking/internal/auth"
)

// TripHandler handles check-in and check-out inspection submissions.
type TripHandler struct {
	service *application.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(service *application.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// RegisterRoutes registers the trip capture routes on the given router group.
func (h *TripHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	trips := r.Group("/api/v1/bookings")
	trips.Use(auth.Middleware(jwtManager))
	{
		trips.POST("/:id/checkin", h.CheckIn)
		trips.POST("/:id/checkout", h.CheckOut)
	}
}

// CheckIn handles POST /api/v1/bookings/:id/checkin.
func (h *TripHandler) CheckIn(c *gin.Context) {
	bookingID, userID, ok := bookingAndUser(c)
	if !ok {
		return
	}

	var req application.InspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.CheckIn(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// CheckOut handles POST /api/v1/bookings/:id/checkout.
func (h *TripHandler) CheckOut(c *gin.Context) {
	bookingID, userID, ok := bookingAndUser(c)
	if !ok {
		return
	}

	var req application.InspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.CheckOut(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}
