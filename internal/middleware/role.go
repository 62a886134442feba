package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/aura-meet/backend/pkg/response"
)

// RequireRole must run after JWT. Callers whose token role is not listed get 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.Unauthorized(c, "missing host context")
			c.Abort()
			return
		}
		if !slices.Contains(roles, role) {
			response.Forbidden(c, "role "+role+" may not access this resource")
			c.Abort()
			return
		}
		c.Next()
	}
}
