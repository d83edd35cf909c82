// middleware/logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/logger"
)

// RequestLog 记录每个请求的方法、路径、来源和耗时
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		logger.Info("[%s] %s %s %d %v",
			c.Request.Method, path, c.ClientIP(), c.Writer.Status(), latency)
	}
}
