package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the authenticated role is one of roles.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)

		if !ok || id.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if !slices.Contains(roles, id.Role) {
			abortWithError(c, http.StatusForbidden, "forbidden", "Role "+strings.Join(roles, " or ")+" required")
			return
		}

		c.Next()
	}
}
