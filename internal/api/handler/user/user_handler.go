package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	userService "github.com/fisker/officehub-backend/internal/service/user"
)

type UserHandler struct {
	service *userService.UserService
	users   *repository.UserRepository
}

func NewUserHandler(service *userService.UserService, users *repository.UserRepository) *UserHandler {
	return &UserHandler{service: service, users: users}
}

// currentUser 从上下文取出当前登录用户的完整档案
func (h *UserHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
	case errors.Is(err, userService.ErrForbidden),
		errors.Is(err, userService.ErrRoleTooHigh):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "用户不存在"))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// Create 创建员工档案（管理员功能）
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	user, err := h.service.CreateUser(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}

// Get 按工号查询员工档案
func (h *UserHandler) Get(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	user, err := h.service.GetByCode(actor, c.Param("code"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}

// List 分页查询员工列表（管理员功能）
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	role := c.Query("role")
	department := c.Query("department")

	users, total, err := h.service.List(actor, page, pageSize, role, department)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(users, total, page, pageSize)))
}

// Update 更新员工档案（管理员功能）
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	user, err := h.service.UpdateUser(actor, c.Param("code"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}

// Deactivate 停用员工账号（管理员功能）
func (h *UserHandler) Deactivate(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(actor, c.Param("code")); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessWithMessage("员工已停用", nil))
}

// ApproverChain 查询员工的审批链
func (h *UserHandler) ApproverChain(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	chain, err := h.service.ApproverChain(actor, c.Param("code"))
	if err != nil {
		if chain != nil {
			// 链路断裂时仍返回已解析的部分，便于管理员排查
			c.JSON(http.StatusOK, model.SuccessWithMessage(err.Error(), gin.H{
				"chain":    chain,
				"complete": false,
			}))
			return
		}
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(gin.H{
		"chain":    chain,
		"complete": true,
	}))
}

// Subordinates 查询当前用户的全部下属（直接+间接）
func (h *UserHandler) Subordinates(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	subs, err := h.service.Subordinates(actor)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(subs))
}
