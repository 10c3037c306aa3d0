package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtside/venue-booking-backend/internal/auth"
	"github.com/courtside/venue-booking-backend/internal/booking"
	"github.com/courtside/venue-booking-backend/internal/pkg/request"
	"github.com/courtside/venue-booking-backend/internal/pkg/response"
)

type Handler struct {
	bookingService booking.Service
}

func NewHandler(bookingService booking.Service) *Handler {
	return &Handler{bookingService: bookingService}
}

// Create admits a booking in pending-payment state. The slot is only
// occupied once the payment is verified.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.bookingService.Create(c.Request.Context(), booking.CreateRequest{
		UserID:       auth.GetUserID(c),
		UserName:     auth.GetUserName(c),
		VenueID:      req.VenueID,
		Sport:        req.Sport,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// List returns the authenticated user's bookings.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	req.Normalize()

	filter, err := listFilter(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, total, err := h.bookingService.ListForUser(c.Request.Context(), auth.GetUserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pageOf(bookings, req.Page, req.PageSize, total))
}

// Get returns one of the authenticated user's bookings.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.bookingService.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if b.UserID != auth.GetUserID(c) {
		response.Error(c, booking.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Cancel soft-cancels the authenticated user's booking.
func (h *Handler) Cancel(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.bookingService.Cancel(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability returns the slot grid for a venue and date.
func (h *Handler) Availability(c *gin.Context) {
	var byID request.ByIDRequest
	if err := c.ShouldBindUri(&byID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid venue id"})
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	date, err := booking.ParseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	day, err := h.bookingService.Availability(c.Request.Context(), byID.ID, date, req.Sport)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(day))
}

// VenueBookings lists a venue's bookings for its day view.
func (h *Handler) VenueBookings(c *gin.Context) {
	var byID request.ByIDRequest
	if err := c.ShouldBindUri(&byID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid venue id"})
		return
	}

	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	req.Normalize()

	filter, err := listFilter(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, total, err := h.bookingService.ListForVenue(c.Request.Context(), byID.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pageOf(bookings, req.Page, req.PageSize, total))
}

func listFilter(req ListBookingsRequest) (booking.Filter, error) {
	filter := booking.Filter{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Date != "" {
		date, err := booking.ParseDate(req.Date)
		if err != nil {
			return booking.Filter{}, err
		}
		filter.Date = &date
	}
	return filter, nil
}

func pageOf(bookings []*booking.Booking, page, pageSize, total int) response.PageResponse[BookingResponse] {
	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, NewBookingResponse(b))
	}
	return response.NewPageResponse(items, page, pageSize, total)
}
