package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dtokit/src/app/http/response"
)

// BodyLimit caps request bodies at limit bytes. Requests that announce a
// larger Content-Length are refused up front with 413; chunked bodies are cut
// off while the handler reads them.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			response.PayloadTooLarge(c, limit, GetRequestID(c))
			return
		}
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
