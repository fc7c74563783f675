package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/middleware"
	"unsritalk/internal/service"
)

type announcementRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

func (h HandlerSet) ListAnnouncements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"announcements": h.announcements.List()})
}

func (h HandlerSet) PublishAnnouncement(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	published, err := h.announcements.Publish(c.Request.Context(), actor, service.AnnouncementInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"announcement": published})
}
