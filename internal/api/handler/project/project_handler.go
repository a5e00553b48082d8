package project

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	projectService "github.com/fisker/officehub-backend/internal/service/project"
	"github.com/fisker/officehub-backend/internal/workflow"
)

type ProjectHandler struct {
	service *projectService.ProjectService
	users   *repository.UserRepository
}

func NewProjectHandler(service *projectService.ProjectService, users *repository.UserRepository) *ProjectHandler {
	return &ProjectHandler{service: service, users: users}
}

func (h *ProjectHandler) currentUser(c *gin.Context) (*model.User, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, model.Error(401, "未登录"))
		return nil, false
	}
	actor, err := h.users.FindByID(userID.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.Error(401, "用户不存在或已停用"))
		return nil, false
	}
	return actor, true
}

func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, projectService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "项目不存在"))
	case errors.Is(err, workflow.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// Create 提交项目立项申请
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	project, err := h.service.Create(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(project))
}

// Decide 立项审批（管理员功能）
func (h *ProjectHandler) Decide(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.ProjectDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	project, err := h.service.Decide(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(project))
}

// Cancel 取消项目（待审批时仅发起人可撤，立项后按生命周期规则）
func (h *ProjectHandler) Cancel(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	project, err := h.service.Cancel(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(project))
}

// UpdateStatus 推进项目生命周期状态
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.UpdateProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	project, err := h.service.UpdateStatus(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(project))
}

// Get 查询项目详情
func (h *ProjectHandler) Get(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	project, err := h.service.Get(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(project))
}

// History 查询项目的审批环节
func (h *ProjectHandler) History(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	stages, err := h.service.History(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(stages))
}

// List 查询项目列表（管理员看全部，普通用户看自己发起的）
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := model.ProjectStatus(c.Query("status"))

	projects, total, err := h.service.List(actor, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(projects, total, page, pageSize)))
}
