package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/dashboard"
	"unsritalk/internal/middleware"
	"unsritalk/internal/models"
)

func (h HandlerSet) Menu(c *gin.Context) {
	d, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role": d.Role(),
		"menu": d.Menu(),
	})
}

func (h HandlerSet) Section(c *gin.Context) {
	d, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	section, err := d.Section(c.Param("key"), dashboard.Query{
		Category: models.ConsultationCategory(c.Query("category")),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}
