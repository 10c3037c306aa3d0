package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/announcements")

	group.GET("", h.List)
	group.GET("/:id", h.Get)

	group.POST("", authMiddleware, adminMiddleware, h.Create)
}
