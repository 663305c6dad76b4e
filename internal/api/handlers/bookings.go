package handlers

import (
	"net/http"

	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// customerID resolves the caller identity set by the auth middleware.
func customerID(c *gin.Context) string {
	return c.GetString("user_id")
}

// CreateBooking schedules a reservation. A 409 means the window was taken
// between search and commit; the client should search again rather than retry
// the same request.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	booking, err := h.bookingService.CreateBooking(customerID(c), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to create booking")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Booking created successfully", booking)
}

// GetMyBookings lists the caller's bookings, newest first
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetBookingsByCustomer(customerID(c))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve bookings", err)
		return
	}

	if bookings == nil {
		bookings = []*models.Booking{}
	}

	utils.ListResponse(c, http.StatusOK, "Bookings retrieved successfully", len(bookings), bookings)
}

// CancelBooking cancels a booking owned by the caller
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")
	if bookingID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Booking ID is required", nil)
		return
	}

	booking, err := h.bookingService.CancelBooking(bookingID, customerID(c))
	if err != nil {
		respondServiceError(c, err, "Failed to cancel booking")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking cancelled successfully", booking)
}

type updateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus drives the confirm/start/finish transitions
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID := c.Param("id")
	if bookingID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Booking ID is required", nil)
		return
	}

	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Status is required", err)
		return
	}

	booking, err := h.bookingService.UpdateStatus(bookingID, req.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update booking status")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking status updated successfully", booking)
}
