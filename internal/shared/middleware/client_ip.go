package middleware

import (
	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/utils"
)

const ContextKeyClientIP = "client_ip"

// ClientIP resolves the caller address once per request.
// Forwarding headers are honored only when trustProxy is set.
func ClientIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyClientIP, utils.ExtractClientIP(c.Request, trustProxy))
		c.Next()
	}
}

// GetClientIP returns the address stored by ClientIP, falling back to the
// socket address when the middleware did not run.
func GetClientIP(c *gin.Context) string {
	if ip := c.GetString(ContextKeyClientIP); ip != "" {
		return ip
	}
	return utils.ExtractClientIP(c.Request, false)
}
