package http

import (
	"time"

	"github.com/courtside/venue-booking-backend/internal/booking"
	"github.com/courtside/venue-booking-backend/internal/pkg/request"
)

type CreateBookingRequest struct {
	VenueID      string `json:"venue_id" binding:"required,uuid"`
	Sport        string `json:"sport" binding:"required"`
	Date         string `json:"date" binding:"required"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	ContactPhone string `json:"contact_phone" binding:"required"`
	Notes        string `json:"notes"`
}

type ListBookingsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=confirmed cancelled completed"`
	Date   string `form:"date"`
}

type AvailabilityRequest struct {
	Date  string `form:"date" binding:"required"`
	Sport string `form:"sport"`
}

type BookingResponse struct {
	ID            string    `json:"id"`
	Venue         VenueTag  `json:"venue"`
	User          UserTag   `json:"user"`
	Sport         string    `json:"sport"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Duration      float64   `json:"duration"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	ContactPhone  string    `json:"contact_phone"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type VenueTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		Venue:         VenueTag{ID: b.VenueID, Name: b.VenueName},
		User:          UserTag{ID: b.UserID, Name: b.UserName},
		Sport:         b.Sport,
		Date:          booking.FormatDate(b.Date),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Duration:      b.Duration,
		TotalPrice:    b.TotalPrice,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		ContactPhone:  b.ContactPhone,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
	}
}

type SlotResponse struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
	BookedBy  string `json:"booked_by,omitempty"`
}

type AvailabilityResponse struct {
	Venue          VenueTag       `json:"venue"`
	Date           string         `json:"date"`
	Sport          string         `json:"sport,omitempty"`
	TotalSlots     int            `json:"total_slots"`
	AvailableSlots int            `json:"available_slots"`
	BookedSlots    int            `json:"booked_slots"`
	Slots          []SlotResponse `json:"slots"`
}

func NewAvailabilityResponse(day *booking.DayAvailability) AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(day.Slots))
	available := 0
	for _, v := range day.Slots {
		if v.Available {
			available++
		}
		slots = append(slots, SlotResponse{
			Start:     v.Start,
			End:       v.End,
			Label:     v.Label,
			Available: v.Available,
			BookedBy:  v.BookedBy,
		})
	}
	return AvailabilityResponse{
		Venue:          VenueTag{ID: day.VenueID, Name: day.VenueName},
		Date:           booking.FormatDate(day.Date),
		Sport:          day.Sport,
		TotalSlots:     len(slots),
		AvailableSlots: available,
		BookedSlots:    len(slots) - available,
		Slots:          slots,
	}
}
