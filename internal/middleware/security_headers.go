package middleware

import "github.com/gin-gonic/gin"

const hstsValue = "max-age=63072000; includeSubDomains"

// SecurityHeadersMiddleware hardens JSON API responses. Responses carry
// tokens and seller contact details, so they are never cached. HSTS is only
// sent when the API is served over TLS in production.
func SecurityHeadersMiddleware(production bool) gin.HandlerFunc {
	static := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	}

	return func(c *gin.Context) {
		headers := c.Writer.Header()
		for name, value := range static {
			headers.Set(name, value)
		}
		if production {
			headers.Set("Strict-Transport-Security", hstsValue)
		}

		c.Next()
	}
}
