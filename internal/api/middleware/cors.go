package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// The widget script runs on the customer's page, so every widget route must
// answer cross-origin. Only the headers the widget and admin clients actually
// send are allowed.
const allowedHeaders = "Content-Type, Authorization, X-API-Key"

// CORS answers preflights and stamps the allow headers for origins on the
// allow-list ("*" allows any embedding page).
func CORS(allowOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if granted := grantedOrigin(origin, allowOrigins); granted != "" {
			c.Header("Access-Control-Allow-Origin", granted)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Header("Access-Control-Allow-Headers", allowedHeaders)
			c.Header("Access-Control-Max-Age", "86400")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func grantedOrigin(origin string, allowOrigins []string) string {
	for _, o := range allowOrigins {
		if o == "*" {
			if origin == "" {
				return "*"
			}
			return origin
		}
		if strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
