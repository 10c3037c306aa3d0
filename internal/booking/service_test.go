package booking

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/venue-booking-backend/internal/realtime"
	"github.com/courtside/venue-booking-backend/internal/slot"
	"github.com/courtside/venue-booking-backend/internal/venue"
)

type fakeRepo struct {
	bookings map[string]*Booking
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[string]*Booking{}}
}

func (r *fakeRepo) Create(_ context.Context, b *Booking) error {
	for _, other := range r.bookings {
		if other.VenueID == b.VenueID && other.Occupies() &&
			FormatDate(other.Date) == FormatDate(b.Date) &&
			slot.Overlaps(b.StartTime, b.EndTime, other.StartTime, other.EndTime) {
			return ErrSlotUnavailable
		}
	}
	r.nextID++
	b.ID = fmt.Sprintf("booking-%d", r.nextID)
	b.CreatedAt = time.Now()
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) GetOwnedPending(_ context.Context, id, userID string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok || b.UserID != userID || b.PaymentStatus != PaymentPending {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.VenueID != "" && b.VenueID != filter.VenueID {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListOccupying(_ context.Context, venueID string, dayStart, _ time.Time, sport string) ([]*Booking, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if b.VenueID != venueID || !b.Occupies() {
			continue
		}
		if FormatDate(b.Date) != FormatDate(dayStart) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRepo) HasPaidOverlap(_ context.Context, venueID string, dayStart, _ time.Time, _, startTime, endTime string) (bool, error) {
	for _, b := range r.bookings {
		if b.VenueID == venueID && b.Occupies() &&
			FormatDate(b.Date) == FormatDate(dayStart) &&
			slot.Overlaps(startTime, endTime, b.StartTime, b.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeRepo) SetGatewayOrder(_ context.Context, id, orderID string) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.GatewayOrderID = orderID
	return nil
}

func (r *fakeRepo) CancelStalePending(_ context.Context, cutoff time.Time) (int, error) {
	n := 0
	for _, b := range r.bookings {
		if b.PaymentStatus == PaymentPending && b.Status == StatusConfirmed && b.CreatedAt.Before(cutoff) {
			b.Status = StatusCancelled
			b.PaymentStatus = PaymentFailed
			n++
		}
	}
	return n, nil
}

type fakeVenues struct {
	venues map[string]*venue.Venue
}

func (f *fakeVenues) GetByID(_ context.Context, id string) (*venue.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return nil, venue.ErrNotFound
	}
	return v, nil
}

type fakeBroadcaster struct {
	confirmed    []realtime.BookingEvent
	cancelled    []realtime.BookingEvent
	availability [][]slot.Slot
}

func (f *fakeBroadcaster) BookingConfirmed(_ string, ev realtime.BookingEvent) {
	f.confirmed = append(f.confirmed, ev)
}

func (f *fakeBroadcaster) BookingCancelled(_ string, ev realtime.BookingEvent) {
	f.cancelled = append(f.cancelled, ev)
}

func (f *fakeBroadcaster) SlotAvailabilityUpdated(_, _ string, available []slot.Slot) {
	f.availability = append(f.availability, available)
}

func (f *fakeBroadcaster) NotifyUser(string, map[string]any) {}
func (f *fakeBroadcaster) Announce(map[string]any)          {}

func testVenue() *venue.Venue {
	return &venue.Venue{
		ID:         "venue-1",
		Name:       "Arena One",
		Sports:     []string{"Badminton", "Tennis"},
		PriceRange: venue.PriceRange{Min: 400, Max: 600},
	}
}

func newTestService(t *testing.T) (*service, *fakeRepo, *fakeBroadcaster) {
	t.Helper()
	repo := newFakeRepo()
	broadcaster := &fakeBroadcaster{}
	venues := &fakeVenues{venues: map[string]*venue.Venue{"venue-1": testVenue()}}
	svc := NewService(repo, venues, broadcaster).(*service)
	// Fixed clock well before the test booking day.
	svc.now = func() time.Time {
		return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	}
	return svc, repo, broadcaster
}

func validRequest() CreateRequest {
	return CreateRequest{
		UserID:       "user-1",
		UserName:     "Asha",
		VenueID:      "venue-1",
		Sport:        "badminton",
		Date:         "2025-06-10",
		StartTime:    "10:00",
		EndTime:      "12:00",
		ContactPhone: "9876543210",
	}
}

func TestCreateComputesPriceFromVenueRate(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// Two hours at the average of the 400-600 range.
	assert.Equal(t, 2.0, b.Duration)
	assert.Equal(t, 1000.0, b.TotalPrice)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.NotEmpty(t, b.ID)
}

func TestCreateMatchesSportCaseInsensitively(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validRequest()
	req.Sport = "BADMINTON"
	b, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "BADMINTON", b.Sport)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateRequest)
		wantErr error
	}{
		{"missing phone", func(r *CreateRequest) { r.ContactPhone = " " }, ErrMissingFields},
		{"missing sport", func(r *CreateRequest) { r.Sport = "" }, ErrMissingFields},
		{"bad date", func(r *CreateRequest) { r.Date = "10-06-2025" }, ErrInvalidDate},
		{"bad time format", func(r *CreateRequest) { r.StartTime = "10am" }, ErrInvalidTimeFormat},
		{"end before start", func(r *CreateRequest) { r.StartTime = "12:00"; r.EndTime = "10:00" }, ErrInvalidTimeRange},
		{"zero length", func(r *CreateRequest) { r.EndTime = r.StartTime }, ErrInvalidTimeRange},
		{"too long", func(r *CreateRequest) { r.StartTime = "08:00"; r.EndTime = "21:30" }, ErrDurationTooLong},
		{"past date", func(r *CreateRequest) { r.Date = "2025-05-31" }, ErrPastDate},
		{"unknown venue", func(r *CreateRequest) { r.VenueID = "venue-404" }, ErrVenueNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateAnnouncesAdmission(t *testing.T) {
	svc, _, broadcaster := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, broadcaster.confirmed, 1)
	assert.Equal(t, b.ID, broadcaster.confirmed[0].BookingID)

	// The availability push is recomputed but unchanged: a pending claim
	// does not occupy, so the full grid is still free.
	require.Len(t, broadcaster.availability, 1)
	assert.Len(t, broadcaster.availability[0], 13)
}

func TestCreateSameDayAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validRequest()
	req.Date = "2025-06-01"
	_, err := svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateRejectsSportNotOffered(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validRequest()
	req.Sport = "cricket"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Badminton, Tennis")
}

func TestCreateRejectsOverlapWithPaidBooking(t *testing.T) {
	svc, repo, _ := newTestService(t)

	first, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	repo.bookings[first.ID].PaymentStatus = PaymentCompleted

	req := validRequest()
	req.UserID = "user-2"
	req.StartTime = "11:00"
	req.EndTime = "13:00"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateAllowsConcurrentPendingClaims(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// A second pending claim on the same slot is admitted; the conflict is
	// resolved at payment time, first payment wins.
	req := validRequest()
	req.UserID = "user-2"
	_, err = svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateAllowsTouchingIntervals(t *testing.T) {
	svc, repo, _ := newTestService(t)

	first, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	repo.bookings[first.ID].PaymentStatus = PaymentCompleted

	req := validRequest()
	req.UserID = "user-2"
	req.StartTime = "12:00"
	req.EndTime = "13:00"
	_, err = svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestPaidBookingsNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	randInterval := func() (string, string) {
		start := 9 + rng.Intn(12)
		// Stay within the grid and under the 12-hour cap.
		limit := 22 - start
		if limit > 12 {
			limit = 12
		}
		end := start + 1 + rng.Intn(limit)
		return fmt.Sprintf("%02d:00", start), fmt.Sprintf("%02d:00", end)
	}

	for i := 0; i < 200; i++ {
		svc, repo, _ := newTestService(t)

		first := validRequest()
		first.StartTime, first.EndTime = randInterval()
		b, err := svc.Create(context.Background(), first)
		require.NoError(t, err)
		repo.bookings[b.ID].PaymentStatus = PaymentCompleted

		second := validRequest()
		second.UserID = "user-2"
		second.StartTime, second.EndTime = randInterval()

		_, err = svc.Create(context.Background(), second)
		if slot.Overlaps(first.StartTime, first.EndTime, second.StartTime, second.EndTime) {
			assert.ErrorIs(t, err, ErrSlotUnavailable,
				"%s-%s vs %s-%s", first.StartTime, first.EndTime, second.StartTime, second.EndTime)
		} else {
			assert.NoError(t, err,
				"%s-%s vs %s-%s", first.StartTime, first.EndTime, second.StartTime, second.EndTime)
		}
	}
}

func TestAvailabilityMarksPaidSlotsOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)

	pending, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	date, _ := ParseDate("2025-06-10")
	day, err := svc.Availability(context.Background(), "venue-1", date, "badminton")
	require.NoError(t, err)
	require.Len(t, day.Slots, 13)

	// Pending payment does not occupy.
	for _, v := range day.Slots {
		assert.True(t, v.Available, v.Label)
	}

	repo.bookings[pending.ID].PaymentStatus = PaymentCompleted

	day, err = svc.Availability(context.Background(), "venue-1", date, "badminton")
	require.NoError(t, err)

	for _, v := range day.Slots {
		switch v.Start {
		case "10:00", "11:00":
			assert.False(t, v.Available, v.Label)
			assert.Equal(t, "Asha", v.BookedBy)
		default:
			assert.True(t, v.Available, v.Label)
			assert.Empty(t, v.BookedBy)
		}
	}
}

func TestAvailabilityRejectsUnknownSport(t *testing.T) {
	svc, _, _ := newTestService(t)

	date, _ := ParseDate("2025-06-10")
	_, err := svc.Availability(context.Background(), "venue-1", date, "cricket")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Badminton, Tennis")
}

func TestAvailabilityUnknownVenue(t *testing.T) {
	svc, _, _ := newTestService(t)

	date, _ := ParseDate("2025-06-10")
	_, err := svc.Availability(context.Background(), "venue-404", date, "badminton")
	assert.ErrorIs(t, err, venue.ErrNotFound)
}

func TestCancelRestoresAvailability(t *testing.T) {
	svc, repo, broadcaster := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	repo.bookings[b.ID].PaymentStatus = PaymentCompleted
	*broadcaster = fakeBroadcaster{}

	cancelled, err := svc.Cancel(context.Background(), b.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	require.Len(t, broadcaster.cancelled, 1)
	assert.Equal(t, b.ID, broadcaster.cancelled[0].BookingID)
	require.Len(t, broadcaster.availability, 1)
	assert.Len(t, broadcaster.availability[0], 13)

	date, _ := ParseDate("2025-06-10")
	day, err := svc.Availability(context.Background(), "venue-1", date, "badminton")
	require.NoError(t, err)
	for _, v := range day.Slots {
		assert.True(t, v.Available, v.Label)
	}
}

func TestCancelPendingBookingIsSilent(t *testing.T) {
	svc, _, broadcaster := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	*broadcaster = fakeBroadcaster{}

	_, err = svc.Cancel(context.Background(), b.ID, "user-1")
	require.NoError(t, err)

	// An unpaid claim never occupied a slot, so nothing is announced.
	assert.Empty(t, broadcaster.cancelled)
	assert.Empty(t, broadcaster.availability)
}

func TestCancelTooCloseToStart(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// 30 minutes before the 10:00 start.
	svc.now = func() time.Time {
		return time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	}

	_, err = svc.Cancel(context.Background(), b.ID, "user-1")
	assert.ErrorIs(t, err, ErrCancelTooLate)
}

func TestCancelTwoHoursBeforeStart(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	svc.now = func() time.Time {
		return time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	}

	_, err = svc.Cancel(context.Background(), b.ID, "user-1")
	assert.NoError(t, err)
}

func TestCancelOwnerScoped(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), b.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), b.ID, "user-1")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), b.ID, "user-1")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestAnnounceConfirmedBroadcasts(t *testing.T) {
	svc, repo, broadcaster := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	repo.bookings[b.ID].PaymentStatus = PaymentCompleted
	*broadcaster = fakeBroadcaster{}

	svc.AnnounceConfirmed(context.Background(), b)

	require.Len(t, broadcaster.confirmed, 1)
	assert.Equal(t, b.ID, broadcaster.confirmed[0].BookingID)
	require.Len(t, broadcaster.availability, 1)
	// The two booked hours are gone from the free set.
	assert.Len(t, broadcaster.availability[0], 11)
}

func TestReclaimStalePending(t *testing.T) {
	svc, repo, _ := newTestService(t)

	stale, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	// Created an hour before the service clock, past the 30-minute TTL.
	repo.bookings[stale.ID].CreatedAt = time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)

	req := validRequest()
	req.StartTime = "14:00"
	req.EndTime = "15:00"
	fresh, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	n, err := svc.ReclaimStalePending(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, StatusCancelled, repo.bookings[stale.ID].Status)
	assert.Equal(t, PaymentFailed, repo.bookings[stale.ID].PaymentStatus)
	assert.Equal(t, StatusConfirmed, repo.bookings[fresh.ID].Status)
}
