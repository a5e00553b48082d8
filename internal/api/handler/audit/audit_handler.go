package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
)

// AuditHandler 操作日志查询，仅管理员可用（路由层已挂 AdminMiddleware）
type AuditHandler struct {
	repo *repository.AuditRepository
}

func NewAuditHandler(repo *repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListOperationLogs 分页查询操作日志，支持按工号和路径过滤
func (h *AuditHandler) ListOperationLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	userCode := c.Query("user_code")
	path := c.Query("path")

	logs, total, err := h.repo.ListOperationLogs(userCode, path, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Error(500, err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(logs, total, page, pageSize)))
}
