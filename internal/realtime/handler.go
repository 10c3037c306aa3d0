package realtime

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/courtside/venue-booking-backend/internal/auth"
	"github.com/courtside/venue-booking-backend/internal/user"
)

// Handler upgrades authenticated HTTP requests to WebSocket connections.
type Handler struct {
	hub         *Hub
	jwtManager  *auth.JWTManager
	userService user.Service
	upgrader    websocket.Upgrader
}

func NewHandler(hub *Hub, jwtManager *auth.JWTManager, userService user.Service, checkOrigin func(r *http.Request) bool) *Handler {
	return &Handler{
		hub:         hub,
		jwtManager:  jwtManager,
		userService: userService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Serve authenticates the request, upgrades it and starts the client pumps.
// The token comes from the "token" query parameter or a Bearer header,
// since browsers cannot set custom headers on WebSocket requests.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication token required"})
		return
	}

	claims, err := h.jwtManager.ParseAndValidate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	// Token alone is not enough; the account must still exist and be active.
	u, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || !u.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn, u.ID, u.FullName)
	h.hub.register(client)

	go client.writePump()
	go client.readPump()
}
