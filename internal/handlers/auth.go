package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/middleware"
	"unsritalk/internal/models"
	"unsritalk/internal/service"
)

type registerRequest struct {
	Name            string `json:"name"`
	NimNip          string `json:"nim_nip"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type registerResponse struct {
	Next    string       `json:"next"`
	Prefill string       `json:"prefill"`
	User    *models.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// RegisterUser never signs the caller in. Success and a taken identifier both send the
// client to the login form with the identifier filled in.
func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:         req.Name,
		Identifier:   req.NimNip,
		Credential:   req.Password,
		Confirmation: req.ConfirmPassword,
		Role:         models.Role(req.Role),
	})
	if errors.Is(err, service.ErrIdentifierTaken) {
		c.JSON(http.StatusConflict, registerResponse{
			Next:    result.Next,
			Prefill: result.Prefill,
			Error:   "identifier_taken",
		})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Next:    result.Next,
		Prefill: result.Prefill,
		User:    &result.User,
	})
}

type loginRequest struct {
	NimNip   string `json:"nim_nip"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Identifier: req.NimNip,
		Credential: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.selector.Reset()

	c.JSON(http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	h.selector.Reset()

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type profileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	AvatarURL       *string `json:"avatarUrl"`
	Password        *string `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
}

func (h HandlerSet) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user.ID, models.ProfilePatch{
		Name:                 req.Name,
		Email:                req.Email,
		AvatarURL:            req.AvatarURL,
		Password:             req.Password,
		PasswordConfirmation: req.ConfirmPassword,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}
