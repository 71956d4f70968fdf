package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"dtokit/src/app/http/response"
	"dtokit/src/infra/logger"
)

// Recovery turns a panic in any later handler into a 500 envelope carrying
// the request ID. Register it first.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := GetRequestID(c)
			logger.WithRequestID(log, requestID).Error("panic recovered",
				"panic", rec,
				"route", c.FullPath(),
				"method", c.Request.Method,
				"stack", string(debug.Stack()),
			)
			response.InternalError(c, requestID)
		}()

		c.Next()
	}
}
