package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loomline/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request body size. Declared oversize bodies are rejected
// up front; chunked uploads are capped by MaxBytesReader so a handler read
// fails once the limit is crossed.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "request body exceeds the maximum allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
