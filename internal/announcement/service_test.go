package announcement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/venue-booking-backend/internal/realtime"
	"github.com/courtside/venue-booking-backend/internal/slot"
)

type fakeRepo struct {
	created []*Announcement
}

func (r *fakeRepo) Create(_ context.Context, a *Announcement) error {
	a.ID = "ann-1"
	a.CreatedAt = time.Now()
	r.created = append(r.created, a)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Announcement, error) {
	for _, a := range r.created {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) List(_ context.Context, _, _ int) ([]*Announcement, int, error) {
	return r.created, len(r.created), nil
}

type fakeBroadcaster struct {
	announced []map[string]any
}

func (f *fakeBroadcaster) BookingConfirmed(string, realtime.BookingEvent)      {}
func (f *fakeBroadcaster) BookingCancelled(string, realtime.BookingEvent)      {}
func (f *fakeBroadcaster) SlotAvailabilityUpdated(string, string, []slot.Slot) {}
func (f *fakeBroadcaster) NotifyUser(string, map[string]any)                   {}

func (f *fakeBroadcaster) Announce(data map[string]any) {
	f.announced = append(f.announced, data)
}

func TestCreateStoresAndBroadcasts(t *testing.T) {
	repo := &fakeRepo{}
	broadcaster := &fakeBroadcaster{}
	svc := NewService(repo, broadcaster)

	a, err := svc.Create(context.Background(), " Scheduled maintenance ", " Courts closed Sunday 6-8 AM. ")
	require.NoError(t, err)

	assert.Equal(t, "Scheduled maintenance", a.Title)
	assert.Equal(t, "Courts closed Sunday 6-8 AM.", a.Content)

	require.Len(t, broadcaster.announced, 1)
	assert.Equal(t, a.ID, broadcaster.announced[0]["id"])
	assert.Equal(t, a.Title, broadcaster.announced[0]["title"])
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeBroadcaster{})

	_, err := svc.Create(context.Background(), "  ", "content")
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Create(context.Background(), "title", "  ")
	assert.ErrorIs(t, err, ErrContentRequired)
}
