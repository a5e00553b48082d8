package middleware

import (
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/pkg/database"
	"github.com/fisker/officehub-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// OperationLogMiddleware 操作日志中间件
// 只记录写操作（非GET），异步落库，不影响请求处理
func OperationLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		timeCost := time.Since(startTime).Milliseconds()

		if c.Request.Method == "GET" {
			return
		}

		userCode := ""
		if code, exists := c.Get("user_code"); exists {
			userCode = fmt.Sprintf("%v", code)
		}

		operationLog := model.OperationLog{
			UserCode:  userCode,
			IP:        c.ClientIP(),
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			Status:    c.Writer.Status(),
			TimeCost:  timeCost,
			UserAgent: c.Request.UserAgent(),
		}

		go func() {
			if err := database.DB.Create(&operationLog).Error; err != nil {
				logger.Warnf("Failed to save operation log: %v", err)
			}
		}()
	}
}
