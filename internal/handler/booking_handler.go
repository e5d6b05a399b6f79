package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kerbside/service-booking/internal/application"
	"github.com/kerbside/service-booking/internal/auth"
)

// BookingHandler handles HTTP requests for booking lifecycle operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(auth.Middleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/approve", h.ApproveBooking)
		bookings.POST("/:id/decline", h.DeclineBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/review", h.AddReview)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, result)
}

// ListBookings handles GET /api/v1/bookings. Renters see their own requests,
// hosts see bookings of their cars.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	role, _ := auth.GetRole(c)
	page, limit := parsePagination(c)

	if role == auth.RoleHost {
		result, err := h.service.GetHostBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondSuccess(c, result)
		return
	}

	result, err := h.service.GetRenterBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, userID, ok := bookingAndUser(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// ApproveBooking handles POST /api/v1/bookings/:id/approve.
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	bookingID, userID, ok := bookingAndUser(c)
	if !ok {
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}

	result, err := h.service.ApproveBooking(c.Request.Context(), bookingID, userID, body.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// DeclineBooking handles POST /api/v1/bookings/:id/decline.
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	bookingID, userID, ok := bookingAndUser(c)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}

	result, err := h.service.DeclineBooking(c.Request.Context(), bookingID, userID, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, userID, ok := bookingAndUser(c)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, result)
}

// AddReview handles POST /api/v1/bookings/:id/review.
func (h *BookingHandler) AddReview(c *gin.Context) {
	bookingID, userID, ok := bookingAndUser(c)
	if !ok {
		return
	}

	var req application.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddReview(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// bookingAndUser extracts the booking ID path param and the authenticated user,
// writing the error response itself when either is missing.
func bookingAndUser(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid booking ID")
		return uuid.Nil, uuid.Nil, false
	}

	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}
	return bookingID, userID, true
}

// bindOptionalJSON binds a request body that may be absent. An empty body is
// fine; a non-empty body that is not valid JSON gets a 400 response.
func bindOptionalJSON(c *gin.Context, out any) bool {
	err := c.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondBadRequest(c, "invalid request body")
	return false
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
