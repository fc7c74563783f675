package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/dashboard"
	"unsritalk/internal/models"
)

const (
	currentUserKey      = "current_user"
	currentDashboardKey = "current_dashboard"
)

// Authenticator resolves a bearer token to the signed-in user.
type Authenticator interface {
	Authenticate(token string) (models.User, error)
}

// Auth admits requests carrying the token of the active session and attaches the user and
// the dashboard selected for them.
func Auth(auth Authenticator, selector *dashboard.Selector) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		user, err := auth.Authenticate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		d, err := selector.Select(user)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unknown_role"})
			return
		}

		c.Set(currentUserKey, user)
		c.Set(currentDashboardKey, d)

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func CurrentDashboard(c *gin.Context) (dashboard.Dashboard, bool) {
	v, ok := c.Get(currentDashboardKey)
	if !ok {
		return nil, false
	}
	d, ok := v.(dashboard.Dashboard)
	return d, ok
}
