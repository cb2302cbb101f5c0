package http

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds security headers to all responses.
// Page images and covers are served from this origin, so img-src stays 'self'.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing of served page images
		c.Header("X-Content-Type-Options", "nosniff")

		// Referrer policy - don't leak book identifiers to external sites
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// The viewer may be framed by a dashboard; the API never is
		if !strings.HasPrefix(c.Request.URL.Path, "/viewer") {
			c.Header("X-Frame-Options", "DENY")
		}

		c.Header("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: blob:; "+
				"connect-src 'self'; "+
				"form-action 'self'")

		// Permissions Policy - disable unnecessary browser features
		c.Header("Permissions-Policy",
			"camera=(), "+
				"geolocation=(), "+
				"microphone=(), "+
				"payment=(), "+
				"usb=()")

		c.Next()
	}
}
