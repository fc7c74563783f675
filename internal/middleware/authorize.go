package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/dashboard"
	"unsritalk/internal/models"
)

// RequirePermissions admits users holding every listed elevated permission.
func RequirePermissions(permissions ...models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		for _, p := range permissions {
			if !user.HasPermission(p) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Next()
	}
}

// RequireCapability admits users whose dashboard grants allowed.
func RequireCapability(allowed func(dashboard.Dashboard) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, ok := CurrentDashboard(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !allowed(d) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
