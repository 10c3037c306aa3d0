package booking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/courtside/venue-booking-backend/internal/realtime"
	"github.com/courtside/venue-booking-backend/internal/slot"
	"github.com/courtside/venue-booking-backend/internal/venue"
)

// SlotView is one grid slot annotated with its availability for a given
// venue, date and sport.
type SlotView struct {
	slot.Slot
	Available bool
	BookedBy  string // display name of the holder, empty when available
}

// DayAvailability is the full slot grid for one venue and day.
type DayAvailability struct {
	VenueID   string
	VenueName string
	Date      time.Time
	Sport     string
	Slots     []SlotView
}

// CreateRequest carries the client-supplied fields of a new booking.
type CreateRequest struct {
	UserID       string
	UserName     string
	VenueID      string
	Sport        string
	Date         string // YYYY-MM-DD
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	ContactPhone string
	Notes        string
}

type Service interface {
	// Availability computes the 13-slot grid for the venue and day. A slot is
	// taken when any paid, non-cancelled booking overlaps it.
	Availability(ctx context.Context, venueID string, date time.Time, sport string) (*DayAvailability, error)

	// AvailableSlots is the projection of Availability onto the still-free
	// slots, in grid order. Used for availability broadcasts.
	AvailableSlots(ctx context.Context, venueID string, date time.Time, sport string) ([]slot.Slot, error)

	// Create validates and admits a booking in pending-payment state.
	// Admission does not occupy the slot; only completed payment does.
	Create(ctx context.Context, req CreateRequest) (*Booking, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	GetOwnedPending(ctx context.Context, id, userID string) (*Booking, error)
	SetGatewayOrder(ctx context.Context, id, orderID string) error

	// Cancel soft-cancels the caller's booking. Allowed only more than one
	// hour before the start instant.
	Cancel(ctx context.Context, id, userID string) (*Booking, error)

	ListForUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error)
	ListForVenue(ctx context.Context, venueID string, filter Filter) ([]*Booking, int, error)

	// AnnounceConfirmed publishes a booking-confirmed event and the
	// recomputed availability for the booking's venue and day.
	AnnounceConfirmed(ctx context.Context, b *Booking)

	// ReclaimStalePending cancels bookings whose payment has been pending
	// longer than ttl, freeing their provisional claims.
	ReclaimStalePending(ctx context.Context, ttl time.Duration) (int, error)
}

// VenueDirectory is the slice of the venue service the booking service needs.
type VenueDirectory interface {
	GetByID(ctx context.Context, id string) (*venue.Venue, error)
}

type service struct {
	repo        Repository
	venues      VenueDirectory
	broadcaster realtime.Broadcaster
	now         func() time.Time
}

func NewService(repo Repository, venues VenueDirectory, broadcaster realtime.Broadcaster) Service {
	return &service{
		repo:        repo,
		venues:      venues,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

func (s *service) Availability(ctx context.Context, venueID string, date time.Time, sport string) (*DayAvailability, error) {
	v, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if sport != "" && !v.OffersSport(sport) {
		return nil, errSportNotOffered(sport, v.Sports)
	}

	dayStart, dayEnd := DayWindow(date)
	occupying, err := s.repo.ListOccupying(ctx, venueID, dayStart, dayEnd, sport)
	if err != nil {
		return nil, err
	}

	grid := slot.Daily()
	views := make([]SlotView, 0, len(grid))
	for _, sl := range grid {
		view := SlotView{Slot: sl, Available: true}
		for _, b := range occupying {
			if slot.Overlaps(sl.Start, sl.End, b.StartTime, b.EndTime) {
				view.Available = false
				view.BookedBy = b.UserName
				break
			}
		}
		views = append(views, view)
	}

	return &DayAvailability{
		VenueID:   venueID,
		VenueName: v.Name,
		Date:      dayStart,
		Sport:     sport,
		Slots:     views,
	}, nil
}

func (s *service) AvailableSlots(ctx context.Context, venueID string, date time.Time, sport string) ([]slot.Slot, error) {
	day, err := s.Availability(ctx, venueID, date, sport)
	if err != nil {
		return nil, err
	}

	available := make([]slot.Slot, 0, len(day.Slots))
	for _, v := range day.Slots {
		if v.Available {
			available = append(available, v.Slot)
		}
	}
	return available, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if req.VenueID == "" || strings.TrimSpace(req.Sport) == "" || req.Date == "" ||
		req.StartTime == "" || req.EndTime == "" || strings.TrimSpace(req.ContactPhone) == "" {
		return nil, ErrMissingFields
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	v, err := s.venues.GetByID(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venue.ErrNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	sport := strings.TrimSpace(req.Sport)
	if !v.OffersSport(sport) {
		return nil, errSportNotOffered(sport, v.Sports)
	}

	if !slot.IsValidTime(req.StartTime) || !slot.IsValidTime(req.EndTime) {
		return nil, ErrInvalidTimeFormat
	}
	if req.StartTime >= req.EndTime {
		return nil, ErrInvalidTimeRange
	}

	duration := slot.Duration(req.StartTime, req.EndTime)
	if duration > MaxDurationHours {
		return nil, ErrDurationTooLong
	}

	today, _ := DayWindow(s.now().UTC())
	if date.Before(today) {
		return nil, ErrPastDate
	}

	b := &Booking{
		VenueID:       req.VenueID,
		VenueName:     v.Name,
		UserID:        req.UserID,
		UserName:      req.UserName,
		Sport:         sport,
		Date:          date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Duration:      duration,
		TotalPrice:    v.HourlyRate() * duration,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPending,
		ContactPhone:  strings.TrimSpace(req.ContactPhone),
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	// Subscribers hear about the admission right away, even though the slot
	// is only occupied once payment completes.
	s.broadcaster.BookingConfirmed(b.VenueID, bookingEvent(b, "Slot booked successfully"))
	s.announceAvailability(ctx, b)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetOwnedPending(ctx context.Context, id, userID string) (*Booking, error) {
	return s.repo.GetOwnedPending(ctx, id, userID)
}

func (s *service) SetGatewayOrder(ctx context.Context, id, orderID string) error {
	return s.repo.SetGatewayOrder(ctx, id, orderID)
}

func (s *service) Cancel(ctx context.Context, id, userID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Owner-scoped: foreign bookings look like missing ones.
	if b.UserID != userID {
		return nil, ErrNotFound
	}

	switch b.Status {
	case StatusCancelled:
		return nil, ErrAlreadyCancelled
	case StatusCompleted:
		return nil, ErrCancelCompleted
	}

	if b.StartInstant().Sub(s.now().UTC()) <= time.Hour {
		return nil, ErrCancelTooLate
	}

	wasOccupying := b.Occupies()

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled

	if wasOccupying {
		s.broadcaster.BookingCancelled(b.VenueID, bookingEvent(b, "Booking cancelled"))
		s.announceAvailability(ctx, b)
	}
	return b, nil
}

func (s *service) ListForUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error) {
	filter.UserID = userID
	return s.repo.List(ctx, filter)
}

func (s *service) ListForVenue(ctx context.Context, venueID string, filter Filter) ([]*Booking, int, error) {
	filter.VenueID = venueID
	return s.repo.List(ctx, filter)
}

func (s *service) AnnounceConfirmed(ctx context.Context, b *Booking) {
	s.broadcaster.BookingConfirmed(b.VenueID, bookingEvent(b, "Slot booked successfully"))
	s.broadcaster.NotifyUser(b.UserID, map[string]any{
		"booking_id": b.ID,
		"venue":      b.VenueName,
		"date":       FormatDate(b.Date),
		"message":    "Your booking is confirmed",
	})
	s.announceAvailability(ctx, b)
}

func (s *service) ReclaimStalePending(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-ttl)
	return s.repo.CancelStalePending(ctx, cutoff)
}

// announceAvailability pushes the recomputed free-slot set to the venue room.
// Failures only cost the push; subscribers can re-query.
func (s *service) announceAvailability(ctx context.Context, b *Booking) {
	available, err := s.AvailableSlots(ctx, b.VenueID, b.Date, b.Sport)
	if err != nil {
		log.Printf("availability broadcast skipped for venue %s: %v", b.VenueID, err)
		return
	}
	s.broadcaster.SlotAvailabilityUpdated(b.VenueID, FormatDate(b.Date), available)
}

func bookingEvent(b *Booking, message string) realtime.BookingEvent {
	return realtime.BookingEvent{
		BookingID: b.ID,
		VenueID:   b.VenueID,
		Date:      FormatDate(b.Date),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		User:      realtime.UserRef{ID: b.UserID, Name: b.UserName},
		Message:   message,
	}
}
