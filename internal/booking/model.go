package booking

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courtside/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrVenueNotFound     = apperror.New(http.StatusNotFound, "venue not found")
	ErrMissingFields     = apperror.New(http.StatusBadRequest, "missing required fields: venueId, sport, date, startTime, endTime, contactPhone")
	ErrInvalidTimeFormat = apperror.New(http.StatusBadRequest, "invalid time format, use HH:MM (24-hour)")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrDurationTooLong   = apperror.New(http.StatusBadRequest, "maximum booking duration is 12 hours")
	ErrInvalidDate       = apperror.New(http.StatusBadRequest, "invalid date, use YYYY-MM-DD")
	ErrPastDate          = apperror.New(http.StatusBadRequest, "cannot book for past dates")
	ErrSlotUnavailable   = apperror.New(http.StatusConflict, "selected time slot is not available")
	ErrAlreadyCancelled  = apperror.New(http.StatusBadRequest, "booking is already cancelled")
	ErrCancelCompleted   = apperror.New(http.StatusBadRequest, "cannot cancel completed booking")
	ErrCancelTooLate     = apperror.New(http.StatusBadRequest, "booking can only be cancelled at least 1 hour before start time")
)

// errSportNotOffered echoes the venue's valid sports so the client can correct.
func errSportNotOffered(sport string, offered []string) *apperror.AppError {
	return apperror.Newf(http.StatusBadRequest,
		"sport %q is not offered at this venue, available sports: %s",
		sport, strings.Join(offered, ", "))
}

// MaxDurationHours caps a single booking.
const MaxDurationHours = 12

// Status is the booking lifecycle state. "confirmed" means admitted, not
// paid; occupancy additionally requires PaymentCompleted.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// PaymentStatus is the payment lifecycle state.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Booking is a requester's claim on a contiguous run of slots for a
// venue/date/sport. Cancellation is a soft delete; rows are never removed.
type Booking struct {
	ID             string // UUID
	VenueID        string
	VenueName      string
	UserID         string
	UserName       string
	Sport          string
	Date           time.Time // UTC midnight of the booking day
	StartTime      string    // HH:MM
	EndTime        string    // HH:MM
	Duration       float64   // hours
	TotalPrice     float64
	Status         Status
	PaymentStatus  PaymentStatus
	ContactPhone   string
	Notes          string
	GatewayOrderID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Occupies reports whether the booking counts against slot availability:
// payment completed and not cancelled.
func (b *Booking) Occupies() bool {
	return b.PaymentStatus == PaymentCompleted && b.Status != StatusCancelled
}

// StartInstant is the absolute start of the booking, assembled from the UTC
// booking day and the HH:MM start time.
func (b *Booking) StartInstant() time.Time {
	t, err := time.Parse("15:04", b.StartTime)
	if err != nil {
		return b.Date
	}
	return b.Date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID   string
	VenueID  string
	Status   string
	Date     *time.Time
	Page     int
	PageSize int
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight instant.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d.UTC(), nil
}

// DayWindow returns the UTC calendar-day window covering d, used for all
// reservation lookups so client-timezone date boundaries cannot shift the day.
func DayWindow(d time.Time) (time.Time, time.Time) {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// FormatDate renders the booking day as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.UTC().Format("2006-01-02")
}

// AdmissionLockKey scopes the advisory lock taken during admission and
// payment confirmation to one venue/day/sport.
func AdmissionLockKey(venueID string, date time.Time, sport string) string {
	return fmt.Sprintf("%s|%s|%s", venueID, FormatDate(date), strings.ToLower(strings.TrimSpace(sport)))
}
