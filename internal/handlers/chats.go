package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/chat"
	"unsritalk/internal/middleware"
	"unsritalk/internal/models"
)

type chatResponse struct {
	Chat    models.Chat  `json:"chat"`
	Summary chat.Summary `json:"summary"`
	Created *bool        `json:"created,omitempty"`
}

func (h HandlerSet) respondChat(c *gin.Context, status int, viewerID string, selected models.Chat) {
	c.JSON(status, chatResponse{
		Chat:    selected,
		Summary: chat.Summarize(selected, viewerID),
	})
}

func (h HandlerSet) respondOpened(c *gin.Context, viewerID string, selected models.Chat, created bool) {
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, chatResponse{
		Chat:    selected,
		Summary: chat.Summarize(selected, viewerID),
		Created: &created,
	})
}

func (h HandlerSet) GetChat(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	selected, err := h.chats.Chat(actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondChat(c, http.StatusOK, actor.User().ID, selected)
}

type messageRequest struct {
	Text string                 `json:"text"`
	File *models.FileDescriptor `json:"file"`
}

func (h HandlerSet) SendMessage(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.chats.SendMessage(c.Request.Context(), actor, c.Param("id"), chat.Content{
		Text: req.Text,
		File: req.File,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondChat(c, http.StatusCreated, actor.User().ID, updated)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h HandlerSet) RenameGroup(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.chats.RenameGroup(c.Request.Context(), actor, c.Param("id"), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondChat(c, http.StatusOK, actor.User().ID, updated)
}

type participantRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h HandlerSet) AddParticipant(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.chats.AddParticipant(c.Request.Context(), actor, c.Param("id"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondChat(c, http.StatusOK, actor.User().ID, updated)
}

type groupRequest struct {
	Name      string   `json:"name"`
	AvatarURL string   `json:"avatarUrl"`
	MemberIDs []string `json:"memberIds"`
}

func (h HandlerSet) CreateGroup(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	group, err := h.chats.CreateGroup(c.Request.Context(), actor, req.MemberIDs, req.Name, req.AvatarURL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondChat(c, http.StatusCreated, actor.User().ID, group)
}

type consultationRequest struct {
	Category     string `json:"category" binding:"required"`
	SpecialistID string `json:"specialistId" binding:"required"`
}

func (h HandlerSet) StartConsultation(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req consultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	selected, created, err := h.chats.StartConsultation(
		c.Request.Context(),
		actor,
		models.ConsultationCategory(req.Category),
		req.SpecialistID,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOpened(c, actor.User().ID, selected, created)
}

type connectionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h HandlerSet) ConnectAlumni(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	selected, created, err := h.chats.ConnectAlumni(c.Request.Context(), actor, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOpened(c, actor.User().ID, selected, created)
}
