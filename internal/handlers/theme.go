package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/models"
)

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (h HandlerSet) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.store.Theme()})
}

func (h HandlerSet) SetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.store.SetTheme(c.Request.Context(), models.Theme(req.Theme)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": h.store.Theme()})
}
