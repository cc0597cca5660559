package middleware

import (
	"net/http"
	"slices"

	"ecommerce_api/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(AuthRoleKey)
		if userRole == "" {
			abort(c, http.StatusForbidden, "Role not found in token")
			return
		}

		if !slices.Contains(allowedRoles, userRole) {
			abort(c, http.StatusForbidden, "You do not have permission to access this resource")
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}
