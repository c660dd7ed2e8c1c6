package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/threadcraft/backend/internal/domain/identity"
)

// RequireRole restricts a route group to the given roles. Admins pass
// every gate. Must run after JWT authentication.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := identity.Role(GetJWTRole(c))
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			return
		}

		if role == identity.RoleAdmin {
			c.Next()
			return
		}

		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_FORBIDDEN",
					"message": "Insufficient permissions",
				},
			})
			return
		}

		c.Next()
	}
}

// RequireAdmin restricts a route group to administrators.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}
