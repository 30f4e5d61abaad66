package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"bank_cards/internal/domain" // Identity and roles
	"bank_cards/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// identityKey is the gin context key the resolved caller is stored under.
const identityKey = "identity"

// IdentityMiddleware extracts and validates the bearer token and, on
// success, attaches the caller's identity to the request context.
//
// It fails open: a missing, malformed, expired or forged token never
// aborts the request by itself. The request continues unauthenticated and
// the route-level role check rejects it as anonymous. Validation failures
// are logged and otherwise swallowed.
func IdentityMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next() // No token: continue unauthenticated
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			// Invalid token: same outcome as no token
			logrus.WithFields(logrus.Fields{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			}).Debug("Bearer token rejected")
			c.Next()
			return
		}
		c.Set(identityKey, domain.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		c.Next()
	}
}

// GetIdentity returns the identity attached by IdentityMiddleware.
// The second return is false when the request is unauthenticated.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// RequireRole enforces the route-level role check: 401 when no identity
// is attached, 403 when the identity's role is not in the allowed set.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}
