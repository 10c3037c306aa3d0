package realtime

import (
	"encoding/json"
	"time"

	"github.com/courtside/venue-booking-backend/internal/slot"
)

// Server-to-client event types.
const (
	EventBookingConfirmed        = "booking_confirmed"
	EventBookingCancelled        = "booking_cancelled"
	EventSlotAvailabilityUpdated = "slot_availability_updated"
	EventSlotBeingSelected       = "slot_being_selected"
	EventSlotBeingDeselected     = "slot_being_deselected"
	EventBookingInProgress       = "booking_in_progress"
	EventUserTyping              = "user_typing_notification"
	EventUserNotification        = "user_notification"
	EventSystemAnnouncement      = "system_announcement"
	EventPong                    = "pong"
)

// Client-to-server message types.
const (
	MsgJoinVenue        = "join_venue"
	MsgLeaveVenue       = "leave_venue"
	MsgSlotSelecting    = "slot_selecting"
	MsgSlotDeselecting  = "slot_deselecting"
	MsgBookingInitiated = "booking_initiated"
	MsgUserTyping       = "user_typing"
	MsgPing             = "ping"
)

// Envelope is the wire format for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UserRef identifies the user behind an event. Only id and display name are
// ever exposed to other viewers.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BookingEvent is the payload of booking_confirmed and booking_cancelled.
type BookingEvent struct {
	BookingID string  `json:"booking_id"`
	VenueID   string  `json:"venue_id"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	User      UserRef `json:"user"`
	Message   string  `json:"message"`
}

// AvailabilityEvent carries the recomputed set of still-available slots for a
// venue and date, so subscribers can refresh without another round trip.
type AvailabilityEvent struct {
	VenueID        string      `json:"venue_id"`
	Date           string      `json:"date"`
	AvailableSlots []slot.Slot `json:"available_slots"`
	Timestamp      time.Time   `json:"timestamp"`
}

// slotHint is the relayed payload of the ephemeral selection events. It is
// pure UI hinting and carries no authority over reservation state.
type slotHint struct {
	VenueID   string          `json:"venue_id"`
	Date      string          `json:"date,omitempty"`
	TimeSlots json.RawMessage `json:"time_slots,omitempty"`
	User      UserRef         `json:"user"`
	Message   string          `json:"message,omitempty"`
}

func marshalEvent(eventType string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	msg, err := json.Marshal(Envelope{Type: eventType, Data: raw})
	if err != nil {
		return nil
	}
	return msg
}
