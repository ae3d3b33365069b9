package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketpulse/auth"
	"marketpulse/logger"
)

// AdminAuth validates the session token (cookie or bearer header) and
// requires the admin role.
func AdminAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		subject, role, err := jwtManager.Parse(token)
		if err != nil {
			logger.Log.Warnf("token parse error: %v", err)
			auth.AbortWithUnauthorized(c, err)
			return
		}

		if role != auth.RoleAdmin {
			logger.Log.Warnf("access denied: subject %s has role %s, want admin", subject, role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden_insufficient_permissions"})
			return
		}

		c.Set("subject", subject)
		c.Set("role", role)

		c.Next()
	}
}
