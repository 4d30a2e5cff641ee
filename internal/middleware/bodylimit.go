package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies: JSON bodies at jsonBytes and multipart uploads at uploadBytes
func BodyLimit(jsonBytes, uploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := jsonBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadBytes
		}
		if c.Request.Body != nil && limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
