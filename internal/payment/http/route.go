package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/payments", authMiddleware)

	group.POST("/orders", h.CreateOrder)
	group.POST("/verify", h.Verify)
	group.GET("", h.List)
}
