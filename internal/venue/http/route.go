package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/venues")

	// Browsing is public.
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	group.POST("", authMiddleware, h.Create)
}
