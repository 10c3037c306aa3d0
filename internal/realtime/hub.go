package realtime

import (
	"sync"
	"time"

	"github.com/courtside/venue-booking-backend/internal/slot"
)

// Broadcaster is the publishing capability handed to domain services.
// Delivery is fire-and-forget, at-most-once: implementations never block and
// never report errors, because every event can be re-derived by re-querying
// availability.
type Broadcaster interface {
	BookingConfirmed(venueID string, ev BookingEvent)
	BookingCancelled(venueID string, ev BookingEvent)
	SlotAvailabilityUpdated(venueID, date string, available []slot.Slot)
	NotifyUser(userID string, data map[string]any)
	Announce(data map[string]any)
}

// Hub tracks connected clients and their venue-room subscriptions.
// A client belongs to at most one venue room at a time; joining a new venue
// implicitly leaves the previous one.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{} // venueID -> subscribers
	users   map[string]map[*Client]struct{} // userID -> connections
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		users:   make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*Client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	h.leaveRoomLocked(c)

	if conns := h.users[c.userID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, c.userID)
		}
	}
	close(c.send)
}

// joinVenue subscribes the client to a venue room, leaving any previous room.
// Joining the room the client is already in is a no-op.
func (h *Hub) joinVenue(c *Client, venueID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.venueID == venueID {
		return
	}
	h.leaveRoomLocked(c)

	if h.rooms[venueID] == nil {
		h.rooms[venueID] = make(map[*Client]struct{})
	}
	h.rooms[venueID][c] = struct{}{}
	c.venueID = venueID
}

// leaveVenue unsubscribes the client if it is in the given room. Idempotent.
func (h *Hub) leaveVenue(c *Client, venueID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.venueID != venueID {
		return
	}
	h.leaveRoomLocked(c)
}

func (h *Hub) leaveRoomLocked(c *Client) {
	if c.venueID == "" {
		return
	}
	if room := h.rooms[c.venueID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.venueID)
		}
	}
	c.venueID = ""
}

// roomSize reports the number of subscribers of a venue room.
func (h *Hub) roomSize(venueID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[venueID])
}

// toRoom sends a message to every subscriber of the venue room, optionally
// skipping the originating client. Slow clients have messages dropped.
func (h *Hub) toRoom(venueID string, msg []byte, except *Client) {
	if msg == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[venueID] {
		if c == except {
			continue
		}
		c.trySend(msg)
	}
}

func (h *Hub) toUser(userID string, msg []byte) {
	if msg == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.users[userID] {
		c.trySend(msg)
	}
}

func (h *Hub) toAll(msg []byte) {
	if msg == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(msg)
	}
}

// BookingConfirmed implements Broadcaster.
func (h *Hub) BookingConfirmed(venueID string, ev BookingEvent) {
	h.toRoom(venueID, marshalEvent(EventBookingConfirmed, ev), nil)
}

// BookingCancelled implements Broadcaster.
func (h *Hub) BookingCancelled(venueID string, ev BookingEvent) {
	h.toRoom(venueID, marshalEvent(EventBookingCancelled, ev), nil)
}

// SlotAvailabilityUpdated implements Broadcaster.
func (h *Hub) SlotAvailabilityUpdated(venueID, date string, available []slot.Slot) {
	if available == nil {
		available = []slot.Slot{}
	}
	h.toRoom(venueID, marshalEvent(EventSlotAvailabilityUpdated, AvailabilityEvent{
		VenueID:        venueID,
		Date:           date,
		AvailableSlots: available,
		Timestamp:      time.Now().UTC(),
	}), nil)
}

// NotifyUser implements Broadcaster. The notification goes to every live
// connection of the user.
func (h *Hub) NotifyUser(userID string, data map[string]any) {
	h.toUser(userID, marshalEvent(EventUserNotification, data))
}

// Announce implements Broadcaster. The announcement goes to every connected
// client regardless of room.
func (h *Hub) Announce(data map[string]any) {
	h.toAll(marshalEvent(EventSystemAnnouncement, data))
}
