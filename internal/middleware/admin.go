package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware gates admin routes on the role claim. The gateway keeps
// no user table; the upstream-issued token is the only role authority.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c) // Session stored by JWTAuthMiddleware
		// Check if the session exists in context
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		// Check if the role claim is admin
		if session.Role != "admin" {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
