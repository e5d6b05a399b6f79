package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kerbside/service-booking/internal/application"
	"github.com/kerbside/service-booking/internal/auth"
)

// CarHandler handles availability checks, price quotes and per-car booking lists.
type CarHandler struct {
	cars     *application.CarService
	bookings *application.BookingService
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(cars *application.CarService, bookings *application.BookingService) *CarHandler {
	return &CarHandler{cars: cars, bookings: bookings}
}

// RegisterRoutes registers the car routes on the given router group.
func (h *CarHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	cars := r.Group("/api/v1/cars")
	cars.Use(auth.Middleware(jwtManager))
	{
		cars.GET("/:id/availability", h.CheckAvailability)
		cars.GET("/:id/quote", h.QuotePricing)
		cars.GET("/:id/bookings", h.ListCarBookings)
	}
}

// CheckAvailability handles GET /api/v1/cars/:id/availability?start=...&end=...
func (h *CarHandler) CheckAvailability(c *gin.Context) {
	carID, start, end, ok := carAndRange(c)
	if !ok {
		return
	}

	result, err := h.cars.CheckAvailability(c.Request.Context(), carID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// QuotePricing handles GET /api/v1/cars/:id/quote?start=...&end=...
func (h *CarHandler) QuotePricing(c *gin.Context) {
	carID, start, end, ok := carAndRange(c)
	if !ok {
		return
	}

	result, err := h.cars.QuotePricing(c.Request.Context(), carID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// ListCarBookings handles GET /api/v1/cars/:id/bookings (host only).
func (h *CarHandler) ListCarBookings(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid car ID")
		return
	}
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.bookings.GetCarBookings(c.Request.Context(), carID, userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// carAndRange extracts the car ID path param and the start/end query range,
// writing the error response itself on failure.
func carAndRange(c *gin.Context) (uuid.UUID, time.Time, time.Time, bool) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid car ID")
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	start, err := parseTimeParam(c.Query("start"))
	if err != nil {
		respondBadRequest(c, "invalid start date: use RFC 3339 or YYYY-MM-DD")
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	end, err := parseTimeParam(c.Query("end"))
	if err != nil {
		respondBadRequest(c, "invalid end date: use RFC 3339 or YYYY-MM-DD")
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	return carID, start, end, true
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates.
func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
