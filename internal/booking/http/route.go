package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings", authMiddleware)

	bookings.POST("", h.Create)
	bookings.GET("", h.List)
	bookings.GET("/:id", h.Get)
	bookings.POST("/:id/cancel", h.Cancel)

	// Day views hang off the venue resource and are public.
	venues := g.Group("/venues")
	venues.GET("/:id/availability", h.Availability)
	venues.GET("/:id/bookings", h.VenueBookings)
}
