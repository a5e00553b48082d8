package middleware

import (
	"strconv"
	"time"

	"github.com/fisker/officehub-backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 请求指标中间件
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		// 使用路由模板而不是实际路径，避免标签基数爆炸
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		metrics.APIRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		metrics.APIRequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(startTime).Seconds())
	}
}
