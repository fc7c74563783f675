package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/chat"
	"unsritalk/internal/dashboard"
	"unsritalk/internal/media/sniffer"
	"unsritalk/internal/media/svg"
	"unsritalk/internal/service"
	"unsritalk/internal/store"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrNotAuthenticated, http.StatusUnauthorized, "not_authenticated"},
	{service.ErrIdentifierTaken, http.StatusConflict, "identifier_taken"},
	{service.ErrIncompleteFields, http.StatusBadRequest, "incomplete_fields"},
	{service.ErrPasswordMismatch, http.StatusBadRequest, "password_mismatch"},
	{service.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{service.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
	{service.ErrReadOnly, http.StatusForbidden, "read_only"},
	{service.ErrChatNotFound, http.StatusNotFound, "chat_not_found"},
	{service.ErrUnknownUser, http.StatusNotFound, "user_not_found"},
	{service.ErrUnknownCategory, http.StatusBadRequest, "unknown_category"},
	{service.ErrNotSpecialist, http.StatusBadRequest, "not_a_specialist"},
	{service.ErrNotAlumni, http.StatusBadRequest, "not_an_alumnus"},
	{service.ErrEmptyFile, http.StatusBadRequest, "file_required"},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
	{service.ErrContentMismatch, http.StatusUnsupportedMediaType, "content_type_mismatch"},
	{sniffer.ErrUnknownType, http.StatusUnsupportedMediaType, "unsupported_media_type"},
	{svg.ErrNotSVG, http.StatusUnsupportedMediaType, "unsupported_media_type"},
	{chat.ErrEmptyMessage, http.StatusBadRequest, "empty_message"},
	{chat.ErrNotParticipant, http.StatusForbidden, "not_a_participant"},
	{chat.ErrGroupNeedsMembers, http.StatusBadRequest, "group_needs_members"},
	{chat.ErrGroupNeedsName, http.StatusBadRequest, "group_needs_name"},
	{chat.ErrNotGroup, http.StatusBadRequest, "not_a_group"},
	{chat.ErrSelfChat, http.StatusBadRequest, "self_chat"},
	{dashboard.ErrUnknownSection, http.StatusNotFound, "unknown_section"},
	{dashboard.ErrUnknownCategory, http.StatusBadRequest, "unknown_category"},
	{store.ErrInvalidTheme, http.StatusBadRequest, "invalid_theme"},
	{store.ErrNotLoaded, http.StatusServiceUnavailable, "not_ready"},
}

// respondError maps a service error to its status and code. Anything unmapped is a 500
// and gets logged.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.code})
			return
		}
	}

	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
}
