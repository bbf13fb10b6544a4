package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voyagekit/tripcraft-backend/internal/platform/ctxutil"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

// RequestLog writes one structured line per request after it finishes.
func RequestLog(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kvs := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			kvs = append(kvs, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if len(c.Errors) > 0 {
			kvs = append(kvs, "error", c.Errors.Last().Error())
			reqLog.Warn("request failed", kvs...)
			return
		}
		reqLog.Info("request", kvs...)
	}
}
