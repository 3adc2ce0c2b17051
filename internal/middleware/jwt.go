package middleware

import (
	"fortune_gateway/internal/checkout" // Session type
	"fortune_gateway/internal/utils"    // JWT utility functions
	"net/http"                          // HTTP status codes
	"strings"                           // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionKey is the gin context key holding the request's checkout.Session.
const SessionKey = "session"

// JWTAuthMiddleware validates the bearer token and builds the explicit session
// object every workflow call receives. A missing or invalid credential is the
// AuthenticationRequired edge: the caller must re-authenticate before retrying.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		// The raw token is kept so backend calls can forward the credential.
		c.Set(SessionKey, checkout.Session{
			UserID: claims.UserID,
			Role:   claims.Role,
			Token:  tokenStr,
		})
		c.Next() // Proceed to the next handler
	}
}

// GetSession returns the session stored by JWTAuthMiddleware.
func GetSession(c *gin.Context) (checkout.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return checkout.Session{}, false
	}
	session, ok := v.(checkout.Session)
	return session, ok
}
