package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-marketplace/pkg/utils"
)

// DefaultMaxRequestSize bounds JSON and form bodies; listings carry no
// uploads.
const DefaultMaxRequestSize = 1 << 20

// RequestSizeLimitMiddleware rejects bodies over maxSize. A declared
// Content-Length is checked up front; chunked bodies are cut off by
// http.MaxBytesReader and surface as a bind error in the handler.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}
	tooLarge := fmt.Sprintf("Request body exceeds %d bytes", maxSize)

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if c.Request.ContentLength > maxSize {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
