package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/response"
	"portfolio-backend/pkg/jwt"
)

// AdminOnly requires the role set by Auth to be admin.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := c.GetString(ContextKeyRole); role != jwt.RoleAdmin {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "admin role required")
			return
		}
		c.Next()
	}
}

// AdminAuth is Auth followed by AdminOnly, for mounting on a route group.
func AdminAuth(tokens TokenValidator) []gin.HandlerFunc {
	return []gin.HandlerFunc{Auth(tokens), AdminOnly()}
}
