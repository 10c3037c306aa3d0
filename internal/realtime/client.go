package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one authenticated WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	userID   string
	userName string

	// venueID is the room the client is subscribed to, empty if none.
	// Guarded by hub.mu.
	venueID string
}

func newClient(hub *Hub, conn *websocket.Conn, userID, userName string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		userID:   userID,
		userName: userName,
	}
}

// trySend queues a message without blocking. Messages to slow clients are
// dropped; the client can always re-derive state from the availability query.
func (c *Client) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) user() UserRef {
	return UserRef{ID: c.userID, Name: c.userName}
}

// readPump consumes client messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error for user %s: %v", c.userID, err)
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage dispatches one client message. Relayed events are advisory UI
// hints only; they never mutate reservation state.
func (c *Client) handleMessage(msg Envelope) {
	switch msg.Type {
	case MsgJoinVenue:
		if venueID := venueIDFrom(msg.Data); venueID != "" {
			c.hub.joinVenue(c, venueID)
		}
	case MsgLeaveVenue:
		if venueID := venueIDFrom(msg.Data); venueID != "" {
			c.hub.leaveVenue(c, venueID)
		}
	case MsgSlotSelecting:
		c.relay(msg.Data, EventSlotBeingSelected, "")
	case MsgSlotDeselecting:
		c.relay(msg.Data, EventSlotBeingDeselected, "")
	case MsgBookingInitiated:
		c.relay(msg.Data, EventBookingInProgress, c.userName+" is booking these slots...")
	case MsgUserTyping:
		c.relay(msg.Data, EventUserTyping, "")
	case MsgPing:
		c.trySend(marshalEvent(EventPong, nil))
	}
}

// relay forwards an ephemeral client event to all other subscribers of the
// same venue room, stamped with the sender's identity.
func (c *Client) relay(data json.RawMessage, eventType, message string) {
	var body struct {
		VenueID   string          `json:"venue_id"`
		Date      string          `json:"date"`
		TimeSlots json.RawMessage `json:"time_slots"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.VenueID == "" {
		return
	}

	hint := slotHint{
		VenueID:   body.VenueID,
		Date:      body.Date,
		TimeSlots: body.TimeSlots,
		User:      c.user(),
		Message:   message,
	}
	c.hub.toRoom(body.VenueID, marshalEvent(eventType, hint), c)
}

// writePump flushes queued messages and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func venueIDFrom(data json.RawMessage) string {
	var body struct {
		VenueID string `json:"venue_id"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.VenueID
}
