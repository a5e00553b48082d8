package middleware

import (
	"net/http"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/pkg/casbin"
	"github.com/fisker/officehub-backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// PermissionMiddleware Casbin路由权限中间件。
// 按 角色 + 路径 + 方法 做粗粒度门禁，拦掉明显越权的请求；
// 资源归属、审批链资格、环节顺序等细粒度判定在服务层由 authz 完成。
func PermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, model.Error(401, "未找到用户信息"))
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, model.Error(401, "角色格式错误"))
			c.Abort()
			return
		}

		path := c.Request.URL.Path
		method := c.Request.Method

		hasPermission, err := casbin.Enforce(roleStr, path, method)
		if err == nil && hasPermission {
			c.Next()
			return
		}

		metrics.PermissionDenials.WithLabelValues("route", "insufficient_role").Inc()
		c.JSON(http.StatusForbidden, model.Error(403, "权限不足"))
		c.Abort()
	}
}
