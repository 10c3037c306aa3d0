package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtside/venue-booking-backend/internal/announcement"
	"github.com/courtside/venue-booking-backend/internal/pkg/request"
	"github.com/courtside/venue-booking-backend/internal/pkg/response"
)

type Handler struct {
	announcementService announcement.Service
}

func NewHandler(announcementService announcement.Service) *Handler {
	return &Handler{announcementService: announcementService}
}

// Create publishes a platform-wide announcement.
func (h *Handler) Create(c *gin.Context) {
	var req CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	a, err := h.announcementService.Create(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewAnnouncementResponse(a))
}

// Get returns one announcement.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}

	a, err := h.announcementService.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAnnouncementResponse(a))
}

// List returns announcements, newest first.
func (h *Handler) List(c *gin.Context) {
	var req ListAnnouncementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	req.Normalize()

	announcements, total, err := h.announcementService.List(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]AnnouncementResponse, 0, len(announcements))
	for _, a := range announcements {
		items = append(items, NewAnnouncementResponse(a))
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}
