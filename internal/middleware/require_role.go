package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bougzy/cojf/internal/guard"
	"github.com/bougzy/cojf/internal/session"
)

// RequireRole gates a route on the cached session profile: the request
// passes when the caller's user type or role is in allowed, or when the
// caller holds any admin role. Must run after AuthMiddleware.
func RequireRole(store session.Store, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, exists := c.Get("token")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		sess, err := session.Load(c.Request.Context(), store, token.(string))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session unavailable"})
			c.Abort()
			return
		}

		g := guard.New(sess, nil, "")
		decision := g.Decide(allowed)
		if !decision.Allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "reason": decision.Reason})
			c.Abort()
			return
		}

		c.Next()
	}
}
