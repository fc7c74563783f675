package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/media/sniffer"
	"unsritalk/internal/middleware"
	"unsritalk/internal/models"
)

// avatarDataURI reads the multipart "file" field into a data URI. It writes the error
// response itself and reports false on failure.
func (h HandlerSet) avatarDataURI(c *gin.Context) (string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return "", false
	}
	defer file.Close()

	uri, err := h.avatars.DataURI(file, sniffer.MimeTypeFromHTTP(http.Header(header.Header)))
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("avatar rejected")
		h.respondError(c, err)
		return "", false
	}
	return uri, true
}

func (h HandlerSet) UploadAvatar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	uri, ok := h.avatarDataURI(c)
	if !ok {
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user.ID, models.ProfilePatch{AvatarURL: &uri})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h HandlerSet) UploadGroupAvatar(c *gin.Context) {
	actor, ok := middleware.CurrentDashboard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	uri, ok := h.avatarDataURI(c)
	if !ok {
		return
	}

	updated, err := h.chats.SetGroupAvatar(c.Request.Context(), actor, c.Param("id"), uri)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondChat(c, http.StatusOK, actor.User().ID, updated)
}
